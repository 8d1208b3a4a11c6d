package folioService

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/akraev/folioterm/internal/model"
	"github.com/akraev/folioterm/internal/model/apiModel"
	"github.com/akraev/folioterm/internal/service"
	"github.com/akraev/folioterm/utils"
	"golang.org/x/sync/singleflight"
)

type TrackerApi interface {
	ListPortfolios(ctx context.Context, userID int64) ([]model.Portfolio, error)
	ListHoldings(ctx context.Context, portfolioID, userID int64) ([]model.Holding, error)
	CreateHolding(ctx context.Context, req apiModel.HoldingRequest) (model.Holding, error)
	UpdateHolding(ctx context.Context, holdingID int64, req apiModel.HoldingRequest) (model.Holding, error)
	DeleteHolding(ctx context.Context, holdingID int64) error
	CreateTransaction(ctx context.Context, req apiModel.TransactionRequest) (model.Transaction, error)
	UpdateTransaction(ctx context.Context, transactionID int64, req apiModel.TransactionRequest) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID int64) error
}

type Cache interface {
	GetPortfolios(userID int64) ([]model.Portfolio, bool)
	SetPortfolios(userID int64, portfolios []model.Portfolio)
	InvalidatePortfolios(userID int64)
	GetHoldings(portfolioID int64) ([]model.Holding, int64, bool)
	SetHoldings(portfolioID int64, holdings []model.Holding) int64
	InvalidateHoldings(portfolioID int64)
	KnownPortfolioIDs() []int64
}

type SessionSource interface {
	Identity() *model.Identity
}

// FolioService answers portfolio and holdings queries through the query
// cache and runs mutations against the backend. Reads of the same cache key
// share one in-flight request; mutations invalidate the dependent keys only
// after the backend accepts them.
type FolioService struct {
	api             TrackerApi
	cache           Cache
	session         SessionSource
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage // nil when no cloud storage is configured
	group           singleflight.Group

	memoMu sync.Mutex
	memo   deriveMemo
}

// deriveMemo remembers the last derivation so repeated renders of an
// unchanged table skip recomputation. Correctness never depends on it.
type deriveMemo struct {
	valid       bool
	portfolioID int64
	gen         int64
	field       model.SortField
	direction   model.SortDirection
	rows        []model.EnrichedHolding
}

func New(api TrackerApi, cache Cache, session SessionSource, reportGenerator ReportGenerator, cloudStorage CloudStorage) *FolioService {
	return &FolioService{
		api:             api,
		cache:           cache,
		session:         session,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

func (s *FolioService) Portfolios(ctx context.Context) ([]model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.Portfolios"

	identity := s.session.Identity()
	if identity == nil {
		return nil, service.ErrNotAuthenticated
	}

	if portfolios, ok := s.cache.GetPortfolios(identity.ID); ok {
		return portfolios, nil
	}

	slog.Debug("portfolios cache miss", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("userID", identity.ID))

	res, err, _ := s.group.Do("portfolios:"+strconv.FormatInt(identity.ID, 10), func() (any, error) {
		portfolios, err := s.api.ListPortfolios(ctx, identity.ID)
		if err != nil {
			return nil, err
		}
		s.cache.SetPortfolios(identity.ID, portfolios)
		return portfolios, nil
	})
	if err != nil {
		slog.Error("got error from api.ListPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return res.([]model.Portfolio), nil
}

// Holdings returns the enriched, ordered rows of a portfolio together with
// its summary. The summary is computed over the same enriched set and does
// not depend on the requested order.
func (s *FolioService) Holdings(ctx context.Context, portfolioID int64, field model.SortField, direction model.SortDirection) ([]model.EnrichedHolding, model.PortfolioSummary, error) {
	holdings, gen, err := s.getHoldings(ctx, portfolioID)
	if err != nil {
		return nil, model.PortfolioSummary{}, err
	}

	rows := s.deriveMemoized(portfolioID, gen, holdings, field, direction)

	return rows, Summarize(rows), nil
}

func (s *FolioService) CreateHolding(ctx context.Context, req apiModel.HoldingRequest) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.CreateHolding"

	slog.Debug("CreateHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", req.PortfolioID))

	holding, err := s.api.CreateHolding(ctx, req)
	if err != nil {
		slog.Error("got error from api.CreateHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	s.invalidateAfterMutation(req.PortfolioID)

	return holding, nil
}

func (s *FolioService) UpdateHolding(ctx context.Context, holdingID int64, req apiModel.HoldingRequest) (model.Holding, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.UpdateHolding"

	slog.Debug("UpdateHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("holdingID", holdingID))

	holding, err := s.api.UpdateHolding(ctx, holdingID, req)
	if err != nil {
		slog.Error("got error from api.UpdateHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Holding{}, err
	}

	s.invalidateAfterMutation(req.PortfolioID)

	return holding, nil
}

func (s *FolioService) DeleteHolding(ctx context.Context, portfolioID, holdingID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.DeleteHolding"

	slog.Debug("DeleteHolding start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("holdingID", holdingID))

	if err := s.api.DeleteHolding(ctx, holdingID); err != nil {
		slog.Error("got error from api.DeleteHolding", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.invalidateAfterMutation(portfolioID)

	return nil
}

func (s *FolioService) CreateTransaction(ctx context.Context, req apiModel.TransactionRequest) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.CreateTransaction"

	slog.Debug("CreateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", req.PortfolioID))

	transaction, err := s.api.CreateTransaction(ctx, req)
	if err != nil {
		slog.Error("got error from api.CreateTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	s.invalidateAfterMutation(req.PortfolioID)

	return transaction, nil
}

func (s *FolioService) UpdateTransaction(ctx context.Context, transactionID int64, req apiModel.TransactionRequest) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.UpdateTransaction"

	slog.Debug("UpdateTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))

	transaction, err := s.api.UpdateTransaction(ctx, transactionID, req)
	if err != nil {
		slog.Error("got error from api.UpdateTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	s.invalidateAfterMutation(req.PortfolioID)

	return transaction, nil
}

func (s *FolioService) DeleteTransaction(ctx context.Context, portfolioID, transactionID int64) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))

	if err := s.api.DeleteTransaction(ctx, transactionID); err != nil {
		slog.Error("got error from api.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.invalidateAfterMutation(portfolioID)

	return nil
}

// RefreshHoldingsCache re-fetches holdings for every portfolio the cache has
// seen. Runs as a background job so the staleness window rarely hits a cold
// cache. A failed fetch leaves the cached entry untouched.
func (s *FolioService) RefreshHoldingsCache(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.RefreshHoldingsCache"

	identity := s.session.Identity()
	if identity == nil {
		slog.Debug("skip refresh, not authenticated", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	for _, portfolioID := range s.cache.KnownPortfolioIDs() {
		holdings, err := s.api.ListHoldings(ctx, portfolioID, identity.ID)
		if err != nil {
			slog.Warn("holdings refresh failed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID), slog.String("err", err.Error()))
			continue
		}
		s.cache.SetHoldings(portfolioID, holdings)
	}

	return nil
}

func (s *FolioService) getHoldings(ctx context.Context, portfolioID int64) ([]model.Holding, int64, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "FolioService.getHoldings"

	identity := s.session.Identity()
	if identity == nil {
		return nil, 0, service.ErrNotAuthenticated
	}

	if holdings, gen, ok := s.cache.GetHoldings(portfolioID); ok {
		return holdings, gen, nil
	}

	slog.Debug("holdings cache miss", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))

	res, err, _ := s.group.Do("holdings:"+strconv.FormatInt(portfolioID, 10), func() (any, error) {
		holdings, err := s.api.ListHoldings(ctx, portfolioID, identity.ID)
		if err != nil {
			return nil, err
		}
		gen := s.cache.SetHoldings(portfolioID, holdings)
		return holdingsWithGen{holdings: holdings, gen: gen}, nil
	})
	if err != nil {
		slog.Error("got error from api.ListHoldings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, 0, err
	}

	hg := res.(holdingsWithGen)
	return hg.holdings, hg.gen, nil
}

type holdingsWithGen struct {
	holdings []model.Holding
	gen      int64
}

func (s *FolioService) deriveMemoized(portfolioID, gen int64, holdings []model.Holding, field model.SortField, direction model.SortDirection) []model.EnrichedHolding {
	s.memoMu.Lock()
	defer s.memoMu.Unlock()

	m := s.memo
	if m.valid && m.portfolioID == portfolioID && m.gen == gen && m.field == field && m.direction == direction {
		return m.rows
	}

	rows := DeriveAndSort(holdings, field, direction)
	s.memo = deriveMemo{
		valid:       true,
		portfolioID: portfolioID,
		gen:         gen,
		field:       field,
		direction:   direction,
		rows:        rows,
	}

	return rows
}

func (s *FolioService) invalidateAfterMutation(portfolioID int64) {
	s.cache.InvalidateHoldings(portfolioID)
	if identity := s.session.Identity(); identity != nil {
		s.cache.InvalidatePortfolios(identity.ID)
	}
}
