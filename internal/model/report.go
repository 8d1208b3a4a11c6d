package model

// PortfolioReport is the input of the report generator: one portfolio with
// its enriched holdings and totals.
type PortfolioReport struct {
	Portfolio Portfolio
	Holdings  []EnrichedHolding
	Summary   PortfolioSummary
}
