package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// LedgerClient defines the read-only RPC surface the aggregator needs from a Solana node.
type LedgerClient interface {
	// GetBalance returns the native balance of an address in lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetParsedTokenAccountsByOwner enumerates token accounts owned by an address
	// under the given token program, using the jsonParsed encoding.
	GetParsedTokenAccountsByOwner(ctx context.Context, owner string, programID string) ([]entity.ParsedTokenAccount, error)

	// Endpoint returns the RPC URL this client talks to.
	Endpoint() string
}

// ClusterProvider defines the interface for providing cluster definitions.
type ClusterProvider interface {
	GetAllClusters() []entity.Cluster

	// GetClusterByIdentifier returns the cluster and true if found, otherwise false.
	GetClusterByIdentifier(identifier string) (entity.Cluster, bool)

	DefaultCluster() entity.Cluster
}

// LedgerClientProvider hands out ledger clients, one per RPC endpoint.
type LedgerClientProvider interface {
	GetClient(endpoint string) (LedgerClient, error)
}
