package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
)

const (
	testOwner = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testMint1 = "EPjFWdd5AufqSSqeM2qFJ8sP9hZ5cC3R9u6y9D9Kf2cA"
	testMint2 = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	testMint3 = "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So"
)

var errBoom = errors.New("boom")

type fakeFetcher struct {
	calls atomic.Int32
	delay time.Duration
	list  *entity.TokenList
	err   error
}

func (f *fakeFetcher) FetchTokenList(ctx context.Context) (*entity.TokenList, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func intPtr(v int) *int { return &v }

func sampleList() *entity.TokenList {
	return &entity.TokenList{
		Name: "test",
		Tokens: []entity.TokenMetadataEntry{
			{Address: testMint2, Symbol: "AAA", ChainID: intPtr(101), Decimals: 6},
			{Address: testMint3, Symbol: "NOCHAIN", Decimals: 9},
			{Address: "", Symbol: "SKIPPED"},
		},
	}
}

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.values[key] = value
	return nil
}

func (s *fakeStore) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

type fakeLedger struct {
	endpoint      string
	lamports      uint64
	accounts      []entity.ParsedTokenAccount
	balanceErr    error
	balanceCalls  atomic.Int32
	accountsCalls atomic.Int32
}

func (l *fakeLedger) GetBalance(_ context.Context, _ string) (uint64, error) {
	l.balanceCalls.Add(1)
	return l.lamports, l.balanceErr
}

func (l *fakeLedger) GetParsedTokenAccountsByOwner(_ context.Context, _ string, _ string) ([]entity.ParsedTokenAccount, error) {
	l.accountsCalls.Add(1)
	return l.accounts, nil
}

func (l *fakeLedger) Endpoint() string { return l.endpoint }

type fakeClientProvider struct {
	mu        sync.Mutex
	ledger    *fakeLedger
	endpoints []string
}

func (p *fakeClientProvider) GetClient(endpoint string) (port.LedgerClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endpoints = append(p.endpoints, endpoint)
	return p.ledger, nil
}

// gatedPortfolio returns a snapshot tagged with the cluster, optionally blocking
// on a per-cluster gate so tests can control completion order.
type gatedPortfolio struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	err   error
	calls atomic.Int32
}

func newGatedPortfolio() *gatedPortfolio {
	return &gatedPortfolio{gates: map[string]chan struct{}{}}
}

func (g *gatedPortfolio) gate(cluster string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[cluster] = ch
	return ch
}

func (g *gatedPortfolio) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *gatedPortfolio) FetchPortfolio(ctx context.Context, account *entity.Account, cluster entity.Cluster) (*entity.PortfolioSnapshot, error) {
	g.calls.Add(1)
	g.mu.Lock()
	ch := g.gates[cluster.Identifier]
	err := g.err
	g.mu.Unlock()

	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &entity.PortfolioSnapshot{NativeBalance: 1, Cluster: cluster.Identifier, FetchedAt: time.Now()}, nil
}
