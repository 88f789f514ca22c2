package entity

import "time"

// UnknownTokenSymbol is shown for mints missing from the token list.
const UnknownTokenSymbol = "Unknown Token"

// TokenHolding is a non-zero SPL token balance joined with its metadata.
type TokenHolding struct {
	Mint     string `json:"mint"`
	Amount   string `json:"amount"`
	Decimals int    `json:"decimals"`
	Symbol   string `json:"symbol"`
	ChainID  *int   `json:"chainId,omitempty"` // nil when the mint is not in the token list
}

// PortfolioSnapshot is the view model produced by one aggregation run.
// It is replaced wholesale on every fetch and never mutated in place.
type PortfolioSnapshot struct {
	NativeBalance float64        `json:"nativeBalance"`
	Holdings      []TokenHolding `json:"holdings"`
	// AggregateValue is the plain sum of holding amounts, not a priced valuation.
	AggregateValue float64   `json:"aggregateValue"`
	Cluster        string    `json:"cluster"`
	FetchedAt      time.Time `json:"fetchedAt"`
}

// DashboardState is what the presentation layer renders.
type DashboardState struct {
	Account    *Account           `json:"account,omitempty"`
	Cluster    Cluster            `json:"cluster"`
	Snapshot   *PortfolioSnapshot `json:"snapshot,omitempty"`
	IsLoading  bool               `json:"isLoading"`
	Error      string             `json:"error,omitempty"`
	Generation uint64             `json:"generation"`
}
