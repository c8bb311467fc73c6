package entities

// PortfolioSummary holds the headline numbers of a balance list
type PortfolioSummary struct {
	TotalValueUSD  float64 `json:"total_value_usd"`
	TokenCount     int     `json:"token_count"`
	HighValueCount int     `json:"high_value_count"`
}

// AllocationSlice is one token's share of the portfolio value
type AllocationSlice struct {
	Symbol     string  `json:"symbol"`
	ValueUSD   float64 `json:"value_usd"`
	Percentage float64 `json:"percentage"`
}
