package folioService

import (
	"sort"

	"github.com/akraev/folioterm/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Enrich computes the display fields of a single holding. A missing price or
// average cost counts as zero, so UnrealizedGain always equals
// MarketValue - BookValue exactly and the gain percent is 0 when there is no
// book value (never a division by zero).
func Enrich(h model.Holding) model.EnrichedHolding {
	price := decimal.Zero
	if h.Security.CurrentPrice != nil {
		price = *h.Security.CurrentPrice
	}

	cost := decimal.Zero
	if h.AverageCost != nil {
		cost = *h.AverageCost
	}

	marketValue := h.TotalShares.Mul(price)
	bookValue := h.TotalShares.Mul(cost)
	gain := marketValue.Sub(bookValue)

	gainPercent := decimal.Zero
	if bookValue.IsPositive() {
		gainPercent = gain.Div(bookValue)
	}

	return model.EnrichedHolding{
		Holding:               h,
		CurrentPrice:          price,
		MarketValue:           marketValue,
		BookValue:             bookValue,
		UnrealizedGain:        gain,
		UnrealizedGainPercent: gainPercent,
	}
}

// DeriveAndSort maps raw holdings to enriched ones and orders them by the
// requested field. Pure: the input slice is never touched and identical
// inputs produce identical output. Descending order is the negation of the
// same comparator, and the sort is stable, so equal keys keep their original
// relative order.
func DeriveAndSort(holdings []model.Holding, field model.SortField, direction model.SortDirection) []model.EnrichedHolding {
	enriched := make([]model.EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		enriched = append(enriched, Enrich(h))
	}

	// collate.Collator keeps internal buffers, so one per invocation.
	col := collate.New(language.English)

	sort.SliceStable(enriched, func(i, j int) bool {
		c := compareBy(col, enriched[i], enriched[j], field)
		if direction == model.SortDesc {
			return c > 0
		}
		return c < 0
	})

	return enriched
}

func compareBy(col *collate.Collator, a, b model.EnrichedHolding, field model.SortField) int {
	switch field {
	case model.SortBySymbol:
		return col.CompareString(a.Security.Symbol, b.Security.Symbol)
	case model.SortByShares:
		return a.TotalShares.Cmp(b.TotalShares)
	case model.SortByPrice:
		return a.CurrentPrice.Cmp(b.CurrentPrice)
	case model.SortByCost:
		return averageCostOrZero(a).Cmp(averageCostOrZero(b))
	case model.SortByValue:
		return a.MarketValue.Cmp(b.MarketValue)
	case model.SortByGain:
		return a.UnrealizedGain.Cmp(b.UnrealizedGain)
	case model.SortByGainPercent:
		return a.UnrealizedGainPercent.Cmp(b.UnrealizedGainPercent)
	}
	return 0
}

func averageCostOrZero(h model.EnrichedHolding) decimal.Decimal {
	if h.AverageCost == nil {
		return decimal.Zero
	}
	return *h.AverageCost
}

// Summarize reduces enriched holdings to portfolio totals. The reduction is
// order-independent and an empty list yields an all-zero summary.
func Summarize(enriched []model.EnrichedHolding) model.PortfolioSummary {
	totalValue := decimal.Zero
	totalCost := decimal.Zero
	for _, h := range enriched {
		totalValue = totalValue.Add(h.MarketValue)
		totalCost = totalCost.Add(h.BookValue)
	}

	totalGain := totalValue.Sub(totalCost)

	totalGainPercent := decimal.Zero
	if totalCost.IsPositive() {
		totalGainPercent = totalGain.Div(totalCost)
	}

	return model.PortfolioSummary{
		TotalValue:       totalValue,
		TotalCost:        totalCost,
		TotalGain:        totalGain,
		TotalGainPercent: totalGainPercent,
	}
}
