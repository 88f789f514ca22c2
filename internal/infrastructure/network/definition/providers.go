package networkdefinition

import (
	"sort"
	"strings"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
)

// Predefined cluster definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Devnet = entity.Cluster{
		Identifier: "devnet",
		Label:      "Devnet",
		RPCURL:     "https://api.devnet.solana.com",
		ChainID:    103,
	}
	Testnet = entity.Cluster{
		Identifier: "testnet",
		Label:      "Testnet",
		RPCURL:     "https://api.testnet.solana.com",
		ChainID:    102,
	}
	MainnetBeta = entity.Cluster{
		Identifier: "mainnet-beta",
		Label:      "Mainnet Beta",
		RPCURL:     "https://api.mainnet-beta.solana.com",
		ChainID:    101,
	}
)

var allPredefinedClusters = []entity.Cluster{Devnet, Testnet, MainnetBeta} //nolint:gochecknoglobals

// ClusterDefinitionProvider provides cluster definitions.
type ClusterDefinitionProvider struct {
	logger         port.Logger
	clusters       map[string]entity.Cluster
	defaultCluster entity.Cluster
}

// NewClusterDefinitionProvider creates a provider over the predefined clusters.
// An unknown defaultIdentifier falls back to devnet.
func NewClusterDefinitionProvider(logger port.Logger, defaultIdentifier string) *ClusterDefinitionProvider {
	p := &ClusterDefinitionProvider{
		logger:   logger,
		clusters: make(map[string]entity.Cluster, len(allPredefinedClusters)),
	}
	for _, c := range allPredefinedClusters {
		p.clusters[c.Identifier] = c
	}

	def, ok := p.GetClusterByIdentifier(defaultIdentifier)
	if !ok {
		logger.Warn("Unknown default cluster, falling back to devnet", "identifier", defaultIdentifier)
		def = Devnet
	}
	p.defaultCluster = def
	logger.Info("ClusterDefinitionProvider initialized", "clusters", len(p.clusters), "default", def.Identifier)
	return p
}

// GetAllClusters returns all cluster definitions ordered by identifier.
func (p *ClusterDefinitionProvider) GetAllClusters() []entity.Cluster {
	out := make([]entity.Cluster, 0, len(p.clusters))
	for _, c := range p.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// GetClusterByIdentifier looks a cluster up by identifier, case-insensitively.
func (p *ClusterDefinitionProvider) GetClusterByIdentifier(identifier string) (entity.Cluster, bool) {
	c, ok := p.clusters[strings.ToLower(strings.TrimSpace(identifier))]
	return c, ok
}

// DefaultCluster returns the cluster selected at startup.
func (p *ClusterDefinitionProvider) DefaultCluster() entity.Cluster {
	return p.defaultCluster
}

var _ port.ClusterProvider = (*ClusterDefinitionProvider)(nil)
