package entity

// TokenMetadataEntry is one row of the external token list, keyed by mint address.
type TokenMetadataEntry struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	ChainID  *int   `json:"chainId,omitempty"` // nil when the list entry has none
	Name     string `json:"name,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// TokenList is the document served by the token list endpoint.
type TokenList struct {
	Name   string               `json:"name"`
	Tokens []TokenMetadataEntry `json:"tokens"`
}

// ParsedTokenAccount is the subset of a jsonParsed SPL token account the aggregator needs.
type ParsedTokenAccount struct {
	Pubkey         string
	Mint           string
	Owner          string
	UIAmountString string
	Decimals       int
}
