package port

import (
	"context"

	"portfolio_dashboard/internal/domain/entity"
)

// PortfolioService defines the interface for aggregating one wallet's portfolio.
type PortfolioService interface {
	// FetchPortfolio reads the native balance and token accounts of account and
	// joins them with token metadata. A nil account yields entity.ErrNoAccount
	// without touching the network.
	FetchPortfolio(ctx context.Context, account *entity.Account, cluster entity.Cluster) (*entity.PortfolioSnapshot, error)
}

// DashboardService holds the connected session and the published snapshot.
type DashboardService interface {
	// ConnectAccount and SelectCluster start a background fetch when the session changes.
	ConnectAccount(address string) error
	DisconnectAccount()
	SelectCluster(identifier string) error

	// Refresh runs a fetch for the connected account and waits for it.
	// Cancelling ctx stops the wait, not the fetch.
	// It fails with entity.ErrRefreshInFlight while another fetch is running.
	Refresh(ctx context.Context) error
	State() entity.DashboardState

	// Wait blocks until background fetches have finished.
	Wait()
}
