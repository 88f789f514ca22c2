package service

import (
	"context"
	"fmt"
	"time"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"
	"portfolio_dashboard/internal/pkg/utils"
)

// PortfolioOptions configures where the aggregator reads from.
type PortfolioOptions struct {
	// RPCEndpoint is used for every read unless FollowCluster is set.
	RPCEndpoint   string
	FollowCluster bool
	// TokenProgramID filters the token account enumeration.
	TokenProgramID string
}

// PortfolioServiceImpl implements port.PortfolioService.
type PortfolioServiceImpl struct {
	clientProvider port.LedgerClientProvider
	metadata       port.TokenMetadataService
	logger         port.Logger
	opts           PortfolioOptions
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	cp port.LedgerClientProvider,
	md port.TokenMetadataService,
	l port.Logger,
	opts PortfolioOptions,
) *PortfolioServiceImpl {
	return &PortfolioServiceImpl{
		clientProvider: cp,
		metadata:       md,
		logger:         l.With("component", "PortfolioService"),
		opts:           opts,
	}
}

// endpointFor picks the read endpoint. By default it is fixed and independent
// of the displayed cluster.
func (s *PortfolioServiceImpl) endpointFor(cluster entity.Cluster) string {
	if s.opts.FollowCluster && cluster.RPCURL != "" {
		return cluster.RPCURL
	}
	return s.opts.RPCEndpoint
}

// FetchPortfolio implements port.PortfolioService.
func (s *PortfolioServiceImpl) FetchPortfolio(
	ctx context.Context,
	account *entity.Account,
	cluster entity.Cluster,
) (snapshot *entity.PortfolioSnapshot, err error) {
	if account == nil {
		return nil, entity.ErrNoAccount
	}

	started := time.Now()
	defer func() { metrics.ObservePortfolioFetch(started, err) }()

	endpoint := s.endpointFor(cluster)
	s.logger.Debug("Fetching portfolio", "address", account.Address, "cluster", cluster.Identifier, "endpoint", endpoint)

	client, err := s.clientProvider.GetClient(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger client for %s: %w", endpoint, err)
	}

	lamports, err := client.GetBalance(ctx, account.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to read native balance: %w", err)
	}

	tokenAccounts, err := client.GetParsedTokenAccountsByOwner(ctx, account.Address, s.opts.TokenProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate token accounts: %w", err)
	}

	// the token list is needed even for wallets without token accounts
	if err := s.metadata.Load(ctx); err != nil {
		return nil, err
	}

	holdings, err := s.buildHoldings(ctx, tokenAccounts)
	if err != nil {
		return nil, err
	}

	amounts := make([]string, len(holdings))
	for i, h := range holdings {
		amounts[i] = h.Amount
	}

	snapshot = &entity.PortfolioSnapshot{
		NativeBalance:  utils.LamportsToSOL(lamports),
		Holdings:       holdings,
		AggregateValue: utils.SumAmounts(amounts).InexactFloat64(),
		Cluster:        cluster.Identifier,
		FetchedAt:      time.Now().UTC(),
	}

	s.logger.Info("Portfolio fetched",
		"address", account.Address,
		"lamports", lamports,
		"sol", utils.FormatLamports(lamports),
		"token_accounts", len(tokenAccounts),
		"holdings", len(holdings))
	return snapshot, nil
}

// buildHoldings joins token accounts with metadata and drops non-positive amounts.
// RPC order is preserved.
func (s *PortfolioServiceImpl) buildHoldings(ctx context.Context, accounts []entity.ParsedTokenAccount) ([]entity.TokenHolding, error) {
	holdings := make([]entity.TokenHolding, 0, len(accounts))
	for _, ta := range accounts {
		h := entity.TokenHolding{
			Mint:     ta.Mint,
			Amount:   ta.UIAmountString,
			Decimals: ta.Decimals,
			Symbol:   entity.UnknownTokenSymbol,
		}

		meta, found, err := s.metadata.Resolve(ctx, ta.Mint)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve mint %s: %w", ta.Mint, err)
		}
		if found {
			h.Symbol = meta.Symbol
			if meta.ChainID != nil {
				chainID := *meta.ChainID
				h.ChainID = &chainID
			}
		}

		if !utils.IsPositiveAmount(h.Amount) {
			s.logger.Debug("Skipping empty token account", "mint", ta.Mint, "amount", ta.UIAmountString)
			continue
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)
