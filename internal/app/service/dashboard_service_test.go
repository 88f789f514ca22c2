package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_dashboard/internal/domain/entity"
	networkdefinition "portfolio_dashboard/internal/infrastructure/network/definition"
	"portfolio_dashboard/internal/pkg/logger"
)

func newTestDashboard(t *testing.T, ps *gatedPortfolio) *DashboardServiceImpl {
	t.Helper()
	clusters := networkdefinition.NewClusterDefinitionProvider(logger.NewDiscardAdapter(), "devnet")
	d := NewDashboardService(ps, clusters, logger.NewDiscardAdapter(), 5*time.Second)
	t.Cleanup(d.Close)
	return d
}

// waitCalls blocks until the portfolio fake has been called n times.
func waitCalls(t *testing.T, ps *gatedPortfolio, n int32) {
	t.Helper()
	require.Eventually(t, func() bool { return ps.calls.Load() >= n }, 2*time.Second, 5*time.Millisecond)
}

func TestDashboardInitialState(t *testing.T) {
	d := newTestDashboard(t, newGatedPortfolio())

	st := d.State()
	assert.Nil(t, st.Account)
	assert.Nil(t, st.Snapshot)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Equal(t, "devnet", st.Cluster.Identifier)
}

func TestDashboardConnectFetches(t *testing.T) {
	ps := newGatedPortfolio()
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()

	st := d.State()
	require.NotNil(t, st.Account)
	assert.Equal(t, testOwner, st.Account.Address)
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "devnet", st.Snapshot.Cluster)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)

	// reconnecting the same account does not refetch
	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()
	assert.EqualValues(t, 1, ps.calls.Load())
}

func TestDashboardConnectRejectsInvalidAddress(t *testing.T) {
	ps := newGatedPortfolio()
	d := newTestDashboard(t, ps)

	err := d.ConnectAccount("not base58!")
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
	assert.Nil(t, d.State().Account)
	assert.Zero(t, ps.calls.Load())
}

func TestDashboardNoAccountNoCalls(t *testing.T) {
	ps := newGatedPortfolio()
	d := newTestDashboard(t, ps)

	assert.ErrorIs(t, d.Refresh(context.Background()), entity.ErrNoAccount)
	require.NoError(t, d.SelectCluster("testnet"))
	d.Wait()

	assert.Zero(t, ps.calls.Load())
	st := d.State()
	assert.Nil(t, st.Snapshot)
	assert.Equal(t, "testnet", st.Cluster.Identifier)
}

func TestDashboardUnknownCluster(t *testing.T) {
	d := newTestDashboard(t, newGatedPortfolio())
	assert.ErrorIs(t, d.SelectCluster("localnet"), entity.ErrUnknownCluster)
	assert.Equal(t, "devnet", d.State().Cluster.Identifier)
}

func TestDashboardFailureKeepsSnapshot(t *testing.T) {
	ps := newGatedPortfolio()
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()
	before := d.State().Snapshot
	require.NotNil(t, before)

	ps.setErr(errBoom)
	require.NoError(t, d.Refresh(context.Background()))

	st := d.State()
	assert.Same(t, before, st.Snapshot)
	assert.Equal(t, "Error", st.Error)
	assert.False(t, st.IsLoading)

	// a later success clears the error
	ps.setErr(nil)
	require.NoError(t, d.Refresh(context.Background()))
	st = d.State()
	assert.Empty(t, st.Error)
	assert.NotSame(t, before, st.Snapshot)
}

func TestDashboardTokenListFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errBoom}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())
	ledger := &fakeLedger{lamports: 1}
	ps := NewPortfolioService(&fakeClientProvider{ledger: ledger}, md, logger.NewDiscardAdapter(), PortfolioOptions{RPCEndpoint: fixedEndpoint})
	clusters := networkdefinition.NewClusterDefinitionProvider(logger.NewDiscardAdapter(), "devnet")
	d := NewDashboardService(ps, clusters, logger.NewDiscardAdapter(), time.Second)
	defer d.Close()

	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()

	st := d.State()
	assert.Nil(t, st.Snapshot)
	assert.Equal(t, entity.GenericErrorMessage, st.Error)
	assert.False(t, st.IsLoading)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestDashboardRefreshInFlight(t *testing.T) {
	ps := newGatedPortfolio()
	gate := ps.gate("devnet")
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	waitCalls(t, ps, 1)
	assert.True(t, d.State().IsLoading)

	assert.ErrorIs(t, d.Refresh(context.Background()), entity.ErrRefreshInFlight)

	close(gate)
	d.Wait()
	assert.False(t, d.State().IsLoading)
	assert.EqualValues(t, 1, ps.calls.Load())
}

func TestDashboardRefreshOutlivesCallerContext(t *testing.T) {
	ps := newGatedPortfolio()
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()
	before := d.State().Snapshot
	require.NotNil(t, before)

	gate := ps.gate("devnet")
	ctx, cancel := context.WithCancel(context.Background())
	refreshed := make(chan error, 1)
	go func() { refreshed <- d.Refresh(ctx) }()

	waitCalls(t, ps, 2)
	cancel()
	select {
	case err := <-refreshed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return after its context was cancelled")
	}
	assert.True(t, d.State().IsLoading, "fetch keeps running after the caller leaves")

	close(gate)
	d.Wait()

	st := d.State()
	assert.Empty(t, st.Error)
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.Snapshot)
	assert.NotSame(t, before, st.Snapshot)
}

func TestDashboardStaleResultDropped(t *testing.T) {
	ps := newGatedPortfolio()
	devnetGate := ps.gate("devnet")
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	waitCalls(t, ps, 1)

	require.NoError(t, d.SelectCluster("testnet"))
	waitCalls(t, ps, 2)
	require.Eventually(t, func() bool {
		s := d.State().Snapshot
		return s != nil && s.Cluster == "testnet"
	}, 2*time.Second, 5*time.Millisecond)

	// the older devnet fetch completes last and must not win
	close(devnetGate)
	d.Wait()

	st := d.State()
	require.NotNil(t, st.Snapshot)
	assert.Equal(t, "testnet", st.Snapshot.Cluster)
	assert.Equal(t, "testnet", st.Cluster.Identifier)
	assert.False(t, st.IsLoading)
}

func TestDashboardDisconnectDiscardsInFlight(t *testing.T) {
	ps := newGatedPortfolio()
	gate := ps.gate("devnet")
	d := newTestDashboard(t, ps)

	require.NoError(t, d.ConnectAccount(testOwner))
	waitCalls(t, ps, 1)

	d.DisconnectAccount()
	st := d.State()
	assert.Nil(t, st.Account)
	assert.False(t, st.IsLoading)

	close(gate)
	d.Wait()

	st = d.State()
	assert.Nil(t, st.Snapshot, "result for a disconnected account is discarded")
	assert.False(t, st.IsLoading)
}

func TestDashboardStateIsACopy(t *testing.T) {
	d := newTestDashboard(t, newGatedPortfolio())
	require.NoError(t, d.ConnectAccount(testOwner))
	d.Wait()

	st := d.State()
	st.Account.Address = "mutated"
	assert.Equal(t, testOwner, d.State().Account.Address)
}
