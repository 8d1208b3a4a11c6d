package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/model/apiModel"
	"github.com/akraev/folioterm/internal/service"
	"github.com/akraev/folioterm/internal/service/folioService"
	"github.com/shopspring/decimal"
)

type fakeSession struct {
	identity *model.Identity
	loading  bool
}

func (s *fakeSession) Restore(_ context.Context) { s.loading = false }
func (s *fakeSession) IsLoading() bool           { return s.loading }
func (s *fakeSession) IsAuthenticated() bool     { return s.identity != nil }
func (s *fakeSession) Identity() *model.Identity { return s.identity }

func (s *fakeSession) Login(_ context.Context, email, _ string) error {
	s.identity = &model.Identity{ID: 1, Email: email}
	return nil
}

func (s *fakeSession) Register(ctx context.Context, email, password, _ string) error {
	return s.Login(ctx, email, password)
}

func (s *fakeSession) Logout(_ context.Context) { s.identity = nil }

type fakeFolio struct {
	rows      []model.EnrichedHolding
	summary   model.PortfolioSummary
	exportErr error
}

func (f *fakeFolio) Portfolios(_ context.Context) ([]model.Portfolio, error) {
	return []model.Portfolio{{ID: 5, Name: "Main"}}, nil
}

func (f *fakeFolio) Holdings(_ context.Context, _ int64, _ model.SortField, _ model.SortDirection) ([]model.EnrichedHolding, model.PortfolioSummary, error) {
	return f.rows, f.summary, nil
}

func (f *fakeFolio) CreateHolding(_ context.Context, req apiModel.HoldingRequest) (model.Holding, error) {
	return model.Holding{ID: 100, PortfolioID: req.PortfolioID}, nil
}

func (f *fakeFolio) UpdateHolding(_ context.Context, holdingID int64, _ apiModel.HoldingRequest) (model.Holding, error) {
	return model.Holding{ID: holdingID}, nil
}

func (f *fakeFolio) DeleteHolding(_ context.Context, _, _ int64) error { return nil }

func (f *fakeFolio) CreateTransaction(_ context.Context, req apiModel.TransactionRequest) (model.Transaction, error) {
	return model.Transaction{ID: 200, PortfolioID: req.PortfolioID}, nil
}

func (f *fakeFolio) UpdateTransaction(_ context.Context, transactionID int64, req apiModel.TransactionRequest) (model.Transaction, error) {
	return model.Transaction{ID: transactionID, PortfolioID: req.PortfolioID}, nil
}

func (f *fakeFolio) DeleteTransaction(_ context.Context, _, _ int64) error { return nil }

func (f *fakeFolio) ExportHoldingsReport(_ context.Context) (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	return "holdings_2026-01-01.xlsx", nil
}

func runApp(t *testing.T, session *fakeSession, folio FolioService, input string) string {
	t.Helper()

	out := &bytes.Buffer{}
	ctrl := NewController(session, folio, out)
	app := NewApp(ctrl, session, strings.NewReader(input), out)

	if err := app.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestProtectedCommandRequiresLogin(t *testing.T) {
	out := runApp(t, &fakeSession{loading: true}, &fakeFolio{}, "holdings 5\nquit\n")

	if !strings.Contains(out, "please login first") {
		t.Fatalf("output missing login prompt:\n%s", out)
	}
}

func TestHoldingsTableRendering(t *testing.T) {
	price := decimal.NewFromInt(150)
	rows := []model.EnrichedHolding{{
		Holding: model.Holding{
			ID:          1,
			TotalShares: decimal.NewFromInt(10),
			Security:    model.Security{Symbol: "AAPL", CurrentPrice: &price},
		},
		CurrentPrice:          price,
		MarketValue:           decimal.NewFromInt(1500),
		BookValue:             decimal.NewFromInt(1000),
		UnrealizedGain:        decimal.NewFromInt(500),
		UnrealizedGainPercent: decimal.RequireFromString("0.5"),
	}}
	summary := folioService.Summarize(rows)

	session := &fakeSession{identity: &model.Identity{ID: 1, Email: "jane@example.com"}}
	out := runApp(t, session, &fakeFolio{rows: rows, summary: summary}, "holdings 5 gain desc\nquit\n")

	for _, want := range []string{"AAPL", "1500", "500", "50.00", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	session := &fakeSession{loading: true}
	out := runApp(t, session, &fakeFolio{}, "login jane@example.com secret\nwhoami\nlogout\nwhoami\nquit\n")

	for _, want := range []string{"logged in as jane@example.com", "jane@example.com (", "logged out", "not logged in"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUpdateCommands(t *testing.T) {
	session := &fakeSession{identity: &model.Identity{ID: 1, Email: "jane@example.com"}}
	input := "update-holding 5 1 11 20 120\nupdate-transaction 5 200 11 sell 3 180\nupdate-transaction 5 200 11 hold 3 180\nquit\n"
	out := runApp(t, session, &fakeFolio{}, input)

	for _, want := range []string{"holding updated", "transaction updated", "type must be buy or sell"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestReportWithNoPortfolios(t *testing.T) {
	session := &fakeSession{identity: &model.Identity{ID: 1, Email: "jane@example.com"}}
	out := runApp(t, session, &fakeFolio{exportErr: service.ErrNothingToReport}, "report\nquit\n")

	if !strings.Contains(out, "nothing to report yet") {
		t.Fatalf("output missing empty-report notice:\n%s", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	out := runApp(t, &fakeSession{}, &fakeFolio{}, "frobnicate\nquit\n")

	if !strings.Contains(out, `unknown command "frobnicate"`) {
		t.Fatalf("output missing unknown-command notice:\n%s", out)
	}
}
