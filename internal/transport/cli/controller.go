package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/akraev/folioterm/internal/externalApi"
	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/model/apiModel"
	"github.com/akraev/folioterm/internal/service"
	"github.com/akraev/folioterm/utils"
	"github.com/shopspring/decimal"
)

const internalErrMsg = "something went wrong, try again"

type SessionService interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, fullName string) error
	Logout(ctx context.Context)
	Identity() *model.Identity
	IsAuthenticated() bool
}

type FolioService interface {
	Portfolios(ctx context.Context) ([]model.Portfolio, error)
	Holdings(ctx context.Context, portfolioID int64, field model.SortField, direction model.SortDirection) ([]model.EnrichedHolding, model.PortfolioSummary, error)
	CreateHolding(ctx context.Context, req apiModel.HoldingRequest) (model.Holding, error)
	UpdateHolding(ctx context.Context, holdingID int64, req apiModel.HoldingRequest) (model.Holding, error)
	DeleteHolding(ctx context.Context, portfolioID, holdingID int64) error
	CreateTransaction(ctx context.Context, req apiModel.TransactionRequest) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID int64, req apiModel.TransactionRequest) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, portfolioID, transactionID int64) error
	ExportHoldingsReport(ctx context.Context) (string, error)
}

// Controller renders command results and the transient failure notifications.
// All user-visible text goes through out, never through the logger.
type Controller struct {
	session SessionService
	folio   FolioService
	out     io.Writer
}

func NewController(session SessionService, folio FolioService, out io.Writer) *Controller {
	return &Controller{session: session, folio: folio, out: out}
}

func (ctrl *Controller) Login(ctx context.Context, email, password string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := ctrl.session.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			fmt.Fprintln(ctrl.out, "invalid email or password")
			return
		}
		slog.Error("got error from session.Login", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, internalErrMsg)
		return
	}

	fmt.Fprintf(ctrl.out, "logged in as %s\n", email)
}

func (ctrl *Controller) Register(ctx context.Context, email, password, fullName string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	err := ctrl.session.Register(ctx, email, password, fullName)
	if err != nil {
		slog.Error("got error from session.Register", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, internalErrMsg))
		return
	}

	fmt.Fprintf(ctrl.out, "registered and logged in as %s\n", email)
}

func (ctrl *Controller) Logout(ctx context.Context) {
	ctrl.session.Logout(ctx)
	fmt.Fprintln(ctrl.out, "logged out")
}

func (ctrl *Controller) WhoAmI(_ context.Context) {
	identity := ctrl.session.Identity()
	if identity == nil {
		fmt.Fprintln(ctrl.out, "not logged in")
		return
	}
	fmt.Fprintf(ctrl.out, "%s (%s)\n", identity.Email, identity.FullName)
}

func (ctrl *Controller) Portfolios(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	portfolios, err := ctrl.folio.Portfolios(ctx)
	if err != nil {
		slog.Error("got error from folio.Portfolios", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, internalErrMsg))
		return
	}

	if len(portfolios) == 0 {
		fmt.Fprintln(ctrl.out, "no portfolios yet")
		return
	}

	w := tabwriter.NewWriter(ctrl.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range portfolios {
		fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Name)
	}
	w.Flush()
}

func (ctrl *Controller) Holdings(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) < 1 {
		fmt.Fprintln(ctrl.out, "usage: holdings <portfolioID> [symbol|shares|price|cost|value|gain|gainPercent] [asc|desc]")
		return
	}

	portfolioID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(ctrl.out, "portfolioID must be a number")
		return
	}

	field := model.SortBySymbol
	if len(args) > 1 {
		field, err = model.ParseSortField(args[1])
		if err != nil {
			fmt.Fprintln(ctrl.out, err.Error())
			return
		}
	}

	direction := model.SortAsc
	if len(args) > 2 {
		direction, err = model.ParseSortDirection(args[2])
		if err != nil {
			fmt.Fprintln(ctrl.out, err.Error())
			return
		}
	}

	rows, summary, err := ctrl.folio.Holdings(ctx, portfolioID, field, direction)
	if err != nil {
		slog.Error("got error from folio.Holdings", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, internalErrMsg))
		return
	}

	w := tabwriter.NewWriter(ctrl.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tSHARES\tPRICE\tVALUE\tGAIN\tGAIN%")
	for _, h := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Security.Symbol,
			h.TotalShares.String(),
			h.CurrentPrice.String(),
			h.MarketValue.String(),
			h.UnrealizedGain.String(),
			h.UnrealizedGainPercent.Mul(decimal.NewFromInt(100)).StringFixed(2),
		)
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t%s\t%s\n",
		summary.TotalValue.String(),
		summary.TotalGain.String(),
		summary.TotalGainPercent.Mul(decimal.NewFromInt(100)).StringFixed(2),
	)
	w.Flush()
}

// Buy and Sell record transactions; the holdings and portfolio caches are
// refreshed on the next read after a successful mutation.
func (ctrl *Controller) Buy(ctx context.Context, args []string) {
	ctrl.recordTransaction(ctx, "buy", args)
}

func (ctrl *Controller) Sell(ctx context.Context, args []string) {
	ctrl.recordTransaction(ctx, "sell", args)
}

func (ctrl *Controller) recordTransaction(ctx context.Context, txType string, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) != 4 {
		fmt.Fprintf(ctrl.out, "usage: %s <portfolioID> <securityID> <shares> <price>\n", txType)
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	securityID, err2 := strconv.ParseInt(args[1], 10, 64)
	shares, err3 := decimal.NewFromString(args[2])
	price, err4 := decimal.NewFromString(args[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers, shares and price decimals")
		return
	}

	_, err := ctrl.folio.CreateTransaction(ctx, apiModel.TransactionRequest{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		Type:        txType,
		Shares:      shares,
		Price:       price,
		ExecutedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("got error from folio.CreateTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "transaction failed"))
		return
	}

	fmt.Fprintln(ctrl.out, "transaction recorded")
}

func (ctrl *Controller) AddHolding(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) < 3 {
		fmt.Fprintln(ctrl.out, "usage: add-holding <portfolioID> <securityID> <shares> [avgCost]")
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	securityID, err2 := strconv.ParseInt(args[1], 10, 64)
	shares, err3 := decimal.NewFromString(args[2])
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers, shares a decimal")
		return
	}

	req := apiModel.HoldingRequest{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		TotalShares: shares,
	}

	if len(args) > 3 {
		avgCost, err := decimal.NewFromString(args[3])
		if err != nil {
			fmt.Fprintln(ctrl.out, "avgCost must be a decimal")
			return
		}
		req.AverageCost = &avgCost
	}

	holding, err := ctrl.folio.CreateHolding(ctx, req)
	if err != nil {
		slog.Error("got error from folio.CreateHolding", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "could not create holding"))
		return
	}

	fmt.Fprintf(ctrl.out, "holding %d created\n", holding.ID)
}

func (ctrl *Controller) UpdateHolding(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) < 4 {
		fmt.Fprintln(ctrl.out, "usage: update-holding <portfolioID> <holdingID> <securityID> <shares> [avgCost]")
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	holdingID, err2 := strconv.ParseInt(args[1], 10, 64)
	securityID, err3 := strconv.ParseInt(args[2], 10, 64)
	shares, err4 := decimal.NewFromString(args[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers, shares a decimal")
		return
	}

	req := apiModel.HoldingRequest{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		TotalShares: shares,
	}

	if len(args) > 4 {
		avgCost, err := decimal.NewFromString(args[4])
		if err != nil {
			fmt.Fprintln(ctrl.out, "avgCost must be a decimal")
			return
		}
		req.AverageCost = &avgCost
	}

	if _, err := ctrl.folio.UpdateHolding(ctx, holdingID, req); err != nil {
		slog.Error("got error from folio.UpdateHolding", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "could not update holding"))
		return
	}

	fmt.Fprintln(ctrl.out, "holding updated")
}

func (ctrl *Controller) UpdateTransaction(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) != 6 {
		fmt.Fprintln(ctrl.out, "usage: update-transaction <portfolioID> <transactionID> <securityID> <buy|sell> <shares> <price>")
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	transactionID, err2 := strconv.ParseInt(args[1], 10, 64)
	securityID, err3 := strconv.ParseInt(args[2], 10, 64)
	txType := args[3]
	shares, err4 := decimal.NewFromString(args[4])
	price, err5 := decimal.NewFromString(args[5])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers, shares and price decimals")
		return
	}
	if txType != "buy" && txType != "sell" {
		fmt.Fprintln(ctrl.out, "type must be buy or sell")
		return
	}

	_, err := ctrl.folio.UpdateTransaction(ctx, transactionID, apiModel.TransactionRequest{
		PortfolioID: portfolioID,
		SecurityID:  securityID,
		Type:        txType,
		Shares:      shares,
		Price:       price,
		ExecutedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("got error from folio.UpdateTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "could not update transaction"))
		return
	}

	fmt.Fprintln(ctrl.out, "transaction updated")
}

func (ctrl *Controller) RemoveHolding(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) != 2 {
		fmt.Fprintln(ctrl.out, "usage: rm-holding <portfolioID> <holdingID>")
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	holdingID, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers")
		return
	}

	if err := ctrl.folio.DeleteHolding(ctx, portfolioID, holdingID); err != nil {
		slog.Error("got error from folio.DeleteHolding", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "could not delete holding"))
		return
	}

	fmt.Fprintln(ctrl.out, "holding deleted")
}

func (ctrl *Controller) RemoveTransaction(ctx context.Context, args []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if len(args) != 2 {
		fmt.Fprintln(ctrl.out, "usage: rm-transaction <portfolioID> <transactionID>")
		return
	}

	portfolioID, err1 := strconv.ParseInt(args[0], 10, 64)
	transactionID, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(ctrl.out, "ids must be numbers")
		return
	}

	if err := ctrl.folio.DeleteTransaction(ctx, portfolioID, transactionID); err != nil {
		slog.Error("got error from folio.DeleteTransaction", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "could not delete transaction"))
		return
	}

	fmt.Fprintln(ctrl.out, "transaction deleted")
}

func (ctrl *Controller) Report(ctx context.Context) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	link, err := ctrl.folio.ExportHoldingsReport(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNothingToReport) {
			fmt.Fprintln(ctrl.out, "nothing to report yet")
			return
		}
		slog.Error("got error from folio.ExportHoldingsReport", slog.String("rqID", rqID), slog.String("err", err.Error()))
		fmt.Fprintln(ctrl.out, serverMessageOr(err, "report export failed"))
		return
	}

	fmt.Fprintf(ctrl.out, "report ready: %s\n", link)
}

// serverMessageOr prefers the backend's own error message for notifications,
// falling back to a generic one.
func serverMessageOr(err error, fallback string) string {
	var apiErr *externalApi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, service.ErrNotAuthenticated) {
		return "please login first"
	}
	return fallback
}
