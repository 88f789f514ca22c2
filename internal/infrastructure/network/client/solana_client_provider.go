package client

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/infrastructure/configloader"
)

// solanaClientProvider implements port.LedgerClientProvider.
type solanaClientProvider struct {
	clients   map[string]port.LedgerClient
	mu        sync.Mutex
	logger    *zap.Logger
	timeout   time.Duration
	rateLimit int
	burst     int
}

// NewSolanaClientProvider creates a provider that caches one client per endpoint.
func NewSolanaClientProvider(cfg *configloader.Config, logger *zap.Logger) port.LedgerClientProvider {
	return &solanaClientProvider{
		clients:   make(map[string]port.LedgerClient),
		logger:    logger,
		timeout:   time.Duration(cfg.RpcClient.DefaultTimeoutMs) * time.Millisecond,
		rateLimit: cfg.RpcClient.RateLimit,
		burst:     cfg.RpcClient.BurstLimit,
	}
}

// GetClient retrieves the client for endpoint, creating it on first use.
func (p *solanaClientProvider) GetClient(endpoint string) (port.LedgerClient, error) {
	key := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if key == "" {
		return nil, fmt.Errorf("empty RPC endpoint")
	}
	if !strings.HasPrefix(key, "http://") && !strings.HasPrefix(key, "https://") {
		return nil, fmt.Errorf("unsupported RPC endpoint %q: must be http(s)", endpoint)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[key]; ok {
		p.logger.Debug("Returning cached Solana client", zap.String("endpoint", key))
		return c, nil
	}

	c := NewSolanaClient(key, p.timeout, p.rateLimit, p.burst, p.logger)
	p.clients[key] = c
	p.logger.Info("Created and cached new Solana client", zap.String("endpoint", key))
	return c, nil
}
