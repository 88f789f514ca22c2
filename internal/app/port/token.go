package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// TokenListFetcher downloads the external token list.
type TokenListFetcher interface {
	FetchTokenList(ctx context.Context) (*entity.TokenList, error)
}

// MetadataStore is a persisted key-value store holding serialized token metadata.
type MetadataStore interface {
	// Get returns the stored value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

// TokenMetadataService resolves mint addresses to token list entries.
type TokenMetadataService interface {
	// Load populates the mapping once: memory, then the persisted copy, then the network.
	Load(ctx context.Context) error
	Resolve(ctx context.Context, mint string) (entity.TokenMetadataEntry, bool, error)
	Len() int
}
