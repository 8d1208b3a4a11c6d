package cache

import (
	"testing"
	"time"

	"github.com/akraev/folioterm/internal/model"
	"github.com/shopspring/decimal"
)

func sampleHoldings() []model.Holding {
	return []model.Holding{{
		ID:          1,
		PortfolioID: 5,
		SecurityID:  11,
		TotalShares: decimal.NewFromInt(10),
		Security:    model.Security{ID: 11, Symbol: "AAPL"},
	}}
}

func TestHoldingsGenerationsIncrease(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	gen1 := c.SetHoldings(5, sampleHoldings())
	gen2 := c.SetHoldings(5, sampleHoldings())
	gen3 := c.SetHoldings(6, sampleHoldings())

	if gen2 <= gen1 || gen3 <= gen2 {
		t.Fatalf("generations not increasing: %d %d %d", gen1, gen2, gen3)
	}

	holdings, gen, ok := c.GetHoldings(5)
	if !ok || gen != gen2 || len(holdings) != 1 {
		t.Fatalf("GetHoldings() = %v gen=%d ok=%v", holdings, gen, ok)
	}
}

func TestHoldingsExpireAfterTTL(t *testing.T) {
	c := NewMemoryCache(time.Minute, 30*time.Millisecond)

	c.SetHoldings(5, sampleHoldings())

	if _, _, ok := c.GetHoldings(5); !ok {
		t.Fatal("entry missing right after Set")
	}

	time.Sleep(50 * time.Millisecond)

	if _, _, ok := c.GetHoldings(5); ok {
		t.Fatal("entry still served after staleness window")
	}

	// stale entries still count as known portfolios for the refresh job
	ids := c.KnownPortfolioIDs()
	if len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("KnownPortfolioIDs() = %v, want [5]", ids)
	}
}

func TestInvalidateHoldings(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	c.SetHoldings(5, sampleHoldings())
	c.SetHoldings(6, sampleHoldings())
	c.InvalidateHoldings(5)

	if _, _, ok := c.GetHoldings(5); ok {
		t.Fatal("invalidated entry still served")
	}
	if _, _, ok := c.GetHoldings(6); !ok {
		t.Fatal("unrelated entry dropped")
	}
}

func TestPortfoliosCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.GetPortfolios(1); ok {
		t.Fatal("hit on empty cache")
	}

	c.SetPortfolios(1, []model.Portfolio{{ID: 5, UserID: 1, Name: "Main"}})

	portfolios, ok := c.GetPortfolios(1)
	if !ok || len(portfolios) != 1 || portfolios[0].Name != "Main" {
		t.Fatalf("GetPortfolios() = %v ok=%v", portfolios, ok)
	}

	c.InvalidatePortfolios(1)
	if _, ok := c.GetPortfolios(1); ok {
		t.Fatal("invalidated portfolios still served")
	}

	c.SetPortfolios(1, []model.Portfolio{{ID: 5}})
	c.Clear()
	if _, ok := c.GetPortfolios(1); ok {
		t.Fatal("Clear() left portfolios behind")
	}
}
