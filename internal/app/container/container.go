// Package container wires the services shared by the dashboard server and the CLI.
package container

import (
	"context"
	"fmt"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/app/service"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/infrastructure/metadatastore"
	clientprovider "portfolio_dashboard/internal/infrastructure/network/client"
	networkdefinition "portfolio_dashboard/internal/infrastructure/network/definition"
	"portfolio_dashboard/internal/infrastructure/tokenloader"
	"portfolio_dashboard/internal/pkg/logger"

	"go.uber.org/zap"
)

// Container holds the wired application services.
type Container struct {
	Clusters  port.ClusterProvider
	Metadata  port.TokenMetadataService
	Portfolio *service.PortfolioServiceImpl

	closeStore func() error
}

// FetchTimeout is the bound applied to one portfolio aggregation.
func FetchTimeout(cfg *configloader.Config) time.Duration {
	return time.Duration(cfg.Portfolio.FetchTimeoutMs) * time.Millisecond
}

// Build creates every service from cfg. The caller must call Close.
func Build(ctx context.Context, cfg *configloader.Config, zapLogger *zap.Logger) (*Container, error) {
	appLogger := logger.NewSlogAdapter()

	clusters := networkdefinition.NewClusterDefinitionProvider(appLogger, cfg.Portfolio.DefaultCluster)
	clients := clientprovider.NewSolanaClientProvider(cfg, zapLogger)

	store, closeStore, err := metadatastore.New(ctx, cfg.MetadataStore, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata store: %w", err)
	}

	tokenListTimeout := time.Duration(cfg.TokenList.RequestTimeoutMillis) * time.Millisecond
	fetcher := tokenloader.NewTokenListLoader(cfg.TokenList.URL, tokenListTimeout, zapLogger)
	metadata := service.NewTokenMetadataService(fetcher, store, cfg.MetadataStore.Key, tokenListTimeout, appLogger)

	portfolio := service.NewPortfolioService(clients, metadata, appLogger, service.PortfolioOptions{
		RPCEndpoint:    cfg.Portfolio.RPCEndpoint,
		FollowCluster:  cfg.Portfolio.FollowCluster,
		TokenProgramID: clientprovider.TokenProgramID,
	})

	return &Container{
		Clusters:   clusters,
		Metadata:   metadata,
		Portfolio:  portfolio,
		closeStore: closeStore,
	}, nil
}

// NewDashboard creates the session-bound dashboard over the container's services.
func (c *Container) NewDashboard(cfg *configloader.Config) *service.DashboardServiceImpl {
	return service.NewDashboardService(c.Portfolio, c.Clusters, logger.NewSlogAdapter(), FetchTimeout(cfg))
}

// Close releases the metadata store.
func (c *Container) Close() error {
	if c.closeStore == nil {
		return nil
	}
	return c.closeStore()
}
