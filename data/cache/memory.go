package cache

import (
	"sync"
	"time"

	"github.com/akraev/folioterm/internal/model"
)

// MemoryCache is the in-process query cache for backend reads: the portfolio
// list per user and the holdings list per portfolio, each behind its own
// staleness window. Entries carry a generation counter that changes on every
// write, so derived results can be memoized against it.
type MemoryCache struct {
	portfolios    map[int64]portfoliosEntry
	holdings      map[int64]holdingsEntry
	portfoliosMu  sync.RWMutex
	holdingsMu    sync.RWMutex
	portfoliosTTL time.Duration
	holdingsTTL   time.Duration
	nextGen       int64
}

type portfoliosEntry struct {
	portfolios []model.Portfolio
	fetchedAt  time.Time
}

type holdingsEntry struct {
	holdings  []model.Holding
	gen       int64
	fetchedAt time.Time
}

func NewMemoryCache(portfoliosTTL, holdingsTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		portfolios:    make(map[int64]portfoliosEntry),
		holdings:      make(map[int64]holdingsEntry),
		portfoliosTTL: portfoliosTTL,
		holdingsTTL:   holdingsTTL,
	}
}

// GetPortfolios returns the cached portfolio list for a user if still fresh.
func (c *MemoryCache) GetPortfolios(userID int64) ([]model.Portfolio, bool) {
	c.portfoliosMu.RLock()
	defer c.portfoliosMu.RUnlock()

	entry, exists := c.portfolios[userID]
	if !exists || time.Since(entry.fetchedAt) > c.portfoliosTTL {
		return nil, false
	}
	return entry.portfolios, true
}

func (c *MemoryCache) SetPortfolios(userID int64, portfolios []model.Portfolio) {
	c.portfoliosMu.Lock()
	defer c.portfoliosMu.Unlock()

	c.portfolios[userID] = portfoliosEntry{portfolios: portfolios, fetchedAt: time.Now()}
}

func (c *MemoryCache) InvalidatePortfolios(userID int64) {
	c.portfoliosMu.Lock()
	defer c.portfoliosMu.Unlock()

	delete(c.portfolios, userID)
}

// GetHoldings returns the cached holdings of a portfolio and their generation
// if still fresh.
func (c *MemoryCache) GetHoldings(portfolioID int64) ([]model.Holding, int64, bool) {
	c.holdingsMu.RLock()
	defer c.holdingsMu.RUnlock()

	entry, exists := c.holdings[portfolioID]
	if !exists || time.Since(entry.fetchedAt) > c.holdingsTTL {
		return nil, 0, false
	}
	return entry.holdings, entry.gen, true
}

// SetHoldings stores a freshly fetched holdings list and returns its generation.
func (c *MemoryCache) SetHoldings(portfolioID int64, holdings []model.Holding) int64 {
	c.holdingsMu.Lock()
	defer c.holdingsMu.Unlock()

	c.nextGen++
	c.holdings[portfolioID] = holdingsEntry{holdings: holdings, gen: c.nextGen, fetchedAt: time.Now()}
	return c.nextGen
}

func (c *MemoryCache) InvalidateHoldings(portfolioID int64) {
	c.holdingsMu.Lock()
	defer c.holdingsMu.Unlock()

	delete(c.holdings, portfolioID)
}

// KnownPortfolioIDs lists portfolios with a cached holdings entry, fresh or
// not. The background refresh job uses it to decide what to re-fetch.
func (c *MemoryCache) KnownPortfolioIDs() []int64 {
	c.holdingsMu.RLock()
	defer c.holdingsMu.RUnlock()

	ids := make([]int64, 0, len(c.holdings))
	for id := range c.holdings {
		ids = append(ids, id)
	}
	return ids
}

func (c *MemoryCache) Clear() {
	c.portfoliosMu.Lock()
	c.portfolios = make(map[int64]portfoliosEntry)
	c.portfoliosMu.Unlock()

	c.holdingsMu.Lock()
	c.holdings = make(map[int64]holdingsEntry)
	c.holdingsMu.Unlock()
}
