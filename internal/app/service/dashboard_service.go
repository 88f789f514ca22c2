package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"
	"portfolio_dashboard/internal/pkg/utils"
)

// DashboardServiceImpl implements port.DashboardService.
//
// Every fetch is stamped with a generation number taken under mu. A result is
// published only if its generation is still the latest, so an older fetch
// finishing late can never overwrite a newer one.
type DashboardServiceImpl struct {
	portfolio    port.PortfolioService
	clusters     port.ClusterProvider
	logger       port.Logger
	fetchTimeout time.Duration

	mu    sync.RWMutex
	state entity.DashboardState

	background sync.WaitGroup
	baseCtx    context.Context
	cancel     context.CancelFunc
}

// NewDashboardService creates the dashboard with no account and the default cluster.
func NewDashboardService(
	ps port.PortfolioService,
	cp port.ClusterProvider,
	l port.Logger,
	fetchTimeout time.Duration,
) *DashboardServiceImpl {
	ctx, cancel := context.WithCancel(context.Background())
	return &DashboardServiceImpl{
		portfolio:    ps,
		clusters:     cp,
		logger:       l.With("component", "DashboardService"),
		fetchTimeout: fetchTimeout,
		state:        entity.DashboardState{Cluster: cp.DefaultCluster()},
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

// ConnectAccount implements port.DashboardService.
func (s *DashboardServiceImpl) ConnectAccount(address string) error {
	address = strings.TrimSpace(address)
	if err := utils.ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state.Account != nil && s.state.Account.Address == address {
		s.mu.Unlock()
		return nil
	}
	s.state.Account = &entity.Account{Address: address}
	gen, account, cluster := s.beginFetchLocked()
	s.mu.Unlock()

	s.logger.Info("Account connected", "address", address)
	s.fetchInBackground(gen, account, cluster)
	return nil
}

// DisconnectAccount implements port.DashboardService. In-flight results are discarded;
// the last snapshot is kept.
func (s *DashboardServiceImpl) DisconnectAccount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Account == nil {
		return
	}
	s.logger.Info("Account disconnected", "address", s.state.Account.Address)
	s.state.Account = nil
	s.state.Generation++
	s.state.IsLoading = false
}

// SelectCluster implements port.DashboardService.
func (s *DashboardServiceImpl) SelectCluster(identifier string) error {
	cluster, ok := s.clusters.GetClusterByIdentifier(identifier)
	if !ok {
		return entity.ErrUnknownCluster
	}

	s.mu.Lock()
	if s.state.Cluster.Identifier == cluster.Identifier {
		s.mu.Unlock()
		return nil
	}
	s.state.Cluster = cluster
	if s.state.Account == nil {
		s.mu.Unlock()
		s.logger.Info("Cluster selected", "cluster", cluster.Identifier)
		return nil
	}
	gen, account, c := s.beginFetchLocked()
	s.mu.Unlock()

	s.logger.Info("Cluster selected", "cluster", cluster.Identifier)
	s.fetchInBackground(gen, account, c)
	return nil
}

// Refresh implements port.DashboardService.
func (s *DashboardServiceImpl) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.state.Account == nil {
		s.mu.Unlock()
		return entity.ErrNoAccount
	}
	if s.state.IsLoading {
		s.mu.Unlock()
		return entity.ErrRefreshInFlight
	}
	gen, account, cluster := s.beginFetchLocked()
	s.mu.Unlock()

	// the fetch belongs to the service; ctx only bounds how long the caller waits
	done := s.fetchInBackground(gen, account, cluster)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State implements port.DashboardService.
func (s *DashboardServiceImpl) State() entity.DashboardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Account != nil {
		a := *st.Account
		st.Account = &a
	}
	return st
}

// Wait implements port.DashboardService.
func (s *DashboardServiceImpl) Wait() {
	s.background.Wait()
}

// Close cancels background fetches and waits for them to return.
func (s *DashboardServiceImpl) Close() {
	s.cancel()
	s.background.Wait()
}

// beginFetchLocked issues a new generation and marks the dashboard as loading.
// The caller must hold mu and must have checked that an account is connected.
func (s *DashboardServiceImpl) beginFetchLocked() (uint64, entity.Account, entity.Cluster) {
	s.state.Generation++
	s.state.IsLoading = true
	return s.state.Generation, *s.state.Account, s.state.Cluster
}

func (s *DashboardServiceImpl) fetchInBackground(gen uint64, account entity.Account, cluster entity.Cluster) <-chan struct{} {
	done := make(chan struct{})
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer close(done)
		s.runFetch(s.baseCtx, gen, account, cluster)
	}()
	return done
}

func (s *DashboardServiceImpl) runFetch(ctx context.Context, gen uint64, account entity.Account, cluster entity.Cluster) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	snapshot, err := s.portfolio.FetchPortfolio(fetchCtx, &account, cluster)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.state.Generation {
		metrics.IncStaleFetch()
		s.logger.Debug("Discarding stale portfolio result", "generation", gen, "latest", s.state.Generation)
		return
	}

	s.state.IsLoading = false
	if err != nil {
		s.logger.Error("Portfolio fetch failed", "address", account.Address, "cluster", cluster.Identifier, "error", err)
		s.state.Error = entity.GenericErrorMessage
		return
	}
	s.state.Snapshot = snapshot
	s.state.Error = ""
}

var _ port.DashboardService = (*DashboardServiceImpl)(nil)
