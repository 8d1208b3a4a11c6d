package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Portfolio struct {
	ID     int64
	UserID int64
	Name   string
}

type Security struct {
	ID           int64
	Symbol       string
	Name         string
	CurrentPrice *decimal.Decimal
}

// Holding is a position in a security as owned by the backend. AverageCost and
// the embedded security price may be absent for freshly created positions.
type Holding struct {
	ID          int64
	PortfolioID int64
	SecurityID  int64
	TotalShares decimal.Decimal
	AverageCost *decimal.Decimal
	Security    Security
}

type Transaction struct {
	ID          int64
	PortfolioID int64
	SecurityID  int64
	Type        string
	Shares      decimal.Decimal
	Price       decimal.Decimal
	ExecutedAt  time.Time
}

// EnrichedHolding is a Holding plus the display fields derived from it.
// Recomputed from the raw holding on every input change, never persisted.
type EnrichedHolding struct {
	Holding
	CurrentPrice          decimal.Decimal
	MarketValue           decimal.Decimal
	BookValue             decimal.Decimal
	UnrealizedGain        decimal.Decimal
	UnrealizedGainPercent decimal.Decimal
}

type PortfolioSummary struct {
	TotalValue       decimal.Decimal
	TotalCost        decimal.Decimal
	TotalGain        decimal.Decimal
	TotalGainPercent decimal.Decimal
}
