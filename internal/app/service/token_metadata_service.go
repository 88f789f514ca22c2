package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const loadKey = "token-metadata"

// tokenMetadataServiceImpl implements port.TokenMetadataService.
//
// The mapping is populated at most once per process: from memory if already
// loaded, else from the persisted copy, else from the token list endpoint
// (written through to the store). There is no expiry and no refresh.
//
// The shared load runs detached from any single caller's context and is bounded
// by loadTimeout; each caller only stops waiting when its own context ends.
type tokenMetadataServiceImpl struct {
	fetcher     port.TokenListFetcher
	store       port.MetadataStore
	storeKey    string
	loadTimeout time.Duration
	logger      port.Logger

	entries atomic.Pointer[cache.Cache]
	loads   singleflight.Group
}

// NewTokenMetadataService creates a token metadata cache over the given store and fetcher.
func NewTokenMetadataService(
	fetcher port.TokenListFetcher,
	store port.MetadataStore,
	storeKey string,
	loadTimeout time.Duration,
	l port.Logger,
) port.TokenMetadataService {
	s := &tokenMetadataServiceImpl{
		fetcher:     fetcher,
		store:       store,
		storeKey:    storeKey,
		loadTimeout: loadTimeout,
		logger:      l.With("component", "TokenMetadataService"),
	}
	s.entries.Store(cache.New(cache.NoExpiration, 0))
	return s
}

// Len returns the number of cached entries.
func (s *tokenMetadataServiceImpl) Len() int {
	return s.entries.Load().ItemCount()
}

// Load implements port.TokenMetadataService.
func (s *tokenMetadataServiceImpl) Load(ctx context.Context) error {
	if s.Len() > 0 {
		return nil
	}
	results := s.loads.DoChan(loadKey, func() (any, error) {
		if s.Len() > 0 {
			return nil, nil
		}
		loadCtx, cancel := s.loadContext(ctx)
		defer cancel()
		return nil, s.populate(loadCtx)
	})

	select {
	case res := <-results:
		if res.Shared {
			s.logger.Debug("Joined in-flight token metadata load")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadContext keeps the caller's values but not its cancellation or deadline.
func (s *tokenMetadataServiceImpl) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.loadTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, s.loadTimeout)
}

// Resolve implements port.TokenMetadataService.
func (s *tokenMetadataServiceImpl) Resolve(ctx context.Context, mint string) (entity.TokenMetadataEntry, bool, error) {
	if err := s.Load(ctx); err != nil {
		return entity.TokenMetadataEntry{}, false, err
	}
	v, ok := s.entries.Load().Get(mint)
	if !ok {
		return entity.TokenMetadataEntry{}, false, nil
	}
	return v.(entity.TokenMetadataEntry), true, nil
}

func (s *tokenMetadataServiceImpl) populate(ctx context.Context) error {
	if mapping, ok := s.loadPersisted(ctx); ok {
		s.install(mapping)
		metrics.IncMetadataSource("store")
		s.logger.Info("Token metadata loaded from persisted copy", "key", s.storeKey, "count", len(mapping))
		return nil
	}

	list, err := s.fetcher.FetchTokenList(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch token list", "error", err)
		return fmt.Errorf("failed to fetch token list: %w", err)
	}

	mapping := make(map[string]entity.TokenMetadataEntry, len(list.Tokens))
	for _, t := range list.Tokens {
		if t.Address == "" {
			continue
		}
		mapping[t.Address] = t
	}

	s.install(mapping)
	metrics.IncMetadataSource("network")
	s.logger.Info("Token metadata loaded from token list", "count", len(mapping))

	s.persist(ctx, mapping)
	return nil
}

// loadPersisted returns the stored mapping. Read errors and malformed content
// are logged and reported as a miss so the caller falls back to the network.
func (s *tokenMetadataServiceImpl) loadPersisted(ctx context.Context) (map[string]entity.TokenMetadataEntry, bool) {
	raw, ok, err := s.store.Get(ctx, s.storeKey)
	if err != nil {
		s.logger.Warn("Failed to read persisted token metadata, falling back to network", "key", s.storeKey, "error", err)
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var mapping map[string]entity.TokenMetadataEntry
	if err := json.UnmarshalFromString(raw, &mapping); err != nil {
		s.logger.Warn("Persisted token metadata is malformed, falling back to network", "key", s.storeKey, "error", err)
		return nil, false
	}
	if len(mapping) == 0 {
		return nil, false
	}
	return mapping, true
}

func (s *tokenMetadataServiceImpl) persist(ctx context.Context, mapping map[string]entity.TokenMetadataEntry) {
	raw, err := json.MarshalToString(mapping)
	if err != nil {
		s.logger.Warn("Failed to encode token metadata for persistence", "error", err)
		return
	}
	if err := s.store.Set(ctx, s.storeKey, raw); err != nil {
		s.logger.Warn("Failed to persist token metadata", "key", s.storeKey, "error", err)
	}
}

// install swaps in a fully built cache so readers never see a partial mapping.
func (s *tokenMetadataServiceImpl) install(mapping map[string]entity.TokenMetadataEntry) {
	items := make(map[string]cache.Item, len(mapping))
	for mint, entry := range mapping {
		items[mint] = cache.Item{Object: entry}
	}
	s.entries.Store(cache.NewFrom(cache.NoExpiration, 0, items))
}
