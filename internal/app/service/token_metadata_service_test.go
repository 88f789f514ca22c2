package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/logger"
	"portfolio_dashboard/internal/pkg/metrics"
)

const storeKey = "solanaTokenMap"

func TestTokenMetadataColdStartFetchesOnce(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList()}
	store := newFakeStore()
	md := NewTokenMetadataService(fetcher, store, storeKey, time.Second, logger.NewDiscardAdapter())
	ctx := context.Background()

	meta, found, err := md.Resolve(ctx, testMint2)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "AAA", meta.Symbol)
	require.NotNil(t, meta.ChainID)
	assert.Equal(t, 101, *meta.ChainID)
	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.Equal(t, 2, md.Len(), "entries without an address are dropped")

	_, _, err = md.Resolve(ctx, testMint2)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fetcher.calls.Load(), "second resolve must not fetch")

	assert.Contains(t, store.value(storeKey), testMint2, "mapping is written through to the store")
}

func TestTokenMetadataConcurrentCallersShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList(), delay: 50 * time.Millisecond}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, found, err := md.Resolve(context.Background(), testMint2)
			assert.NoError(t, err)
			assert.True(t, found)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestTokenMetadataUnknownMint(t *testing.T) {
	md := NewTokenMetadataService(&fakeFetcher{list: sampleList()}, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())

	meta, found, err := md.Resolve(context.Background(), testMint1)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, entity.TokenMetadataEntry{}, meta)
}

func TestTokenMetadataUsesPersistedCopy(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList()}
	store := newFakeStore()
	store.values[storeKey] = `{"` + testMint1 + `":{"address":"` + testMint1 + `","symbol":"USDC","chainId":101}}`
	md := NewTokenMetadataService(fetcher, store, storeKey, time.Second, logger.NewDiscardAdapter())

	meta, found, err := md.Resolve(context.Background(), testMint1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Zero(t, fetcher.calls.Load(), "persisted copy must be used without a network fetch")
	assert.Zero(t, store.sets)
}

func TestTokenMetadataMalformedPersistedCopyFallsThrough(t *testing.T) {
	for name, raw := range map[string]string{
		"malformed":   `{"broken":`,
		"empty map":   `{}`,
		"wrong shape": `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			fetcher := &fakeFetcher{list: sampleList()}
			store := newFakeStore()
			store.values[storeKey] = raw
			md := NewTokenMetadataService(fetcher, store, storeKey, time.Second, logger.NewDiscardAdapter())

			_, found, err := md.Resolve(context.Background(), testMint2)
			require.NoError(t, err)
			assert.True(t, found)
			assert.EqualValues(t, 1, fetcher.calls.Load())
			assert.Contains(t, store.value(storeKey), testMint2, "malformed copy is overwritten")
		})
	}
}

func TestTokenMetadataStoreReadErrorFallsThrough(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList()}
	store := newFakeStore()
	store.getErr = errBoom
	md := NewTokenMetadataService(fetcher, store, storeKey, time.Second, logger.NewDiscardAdapter())

	require.NoError(t, md.Load(context.Background()))
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestTokenMetadataFetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errBoom}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())

	_, _, err := md.Resolve(context.Background(), testMint2)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, md.Len())

	// a failed load leaves the cache cold, so the next call retries
	fetcher.err = nil
	fetcher.list = sampleList()
	require.NoError(t, md.Load(context.Background()))
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestTokenMetadataJoinedCallerKeepsOwnDeadline(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList(), delay: 200 * time.Millisecond}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		_, _, err := md.Resolve(ctx, testMint2)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		meta, found, err := md.Resolve(context.Background(), testMint2)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "AAA", meta.Symbol)
	}()
	wg.Wait()

	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.Equal(t, 2, md.Len())
}

func TestTokenMetadataLoadTimeoutBoundsSharedLoad(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList(), delay: time.Second}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, 20*time.Millisecond, logger.NewDiscardAdapter())

	err := md.Load(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, md.Len())
}

func TestTokenMetadataSourceCountedOncePerPopulate(t *testing.T) {
	fetcher := &fakeFetcher{list: sampleList()}
	md := NewTokenMetadataService(fetcher, newFakeStore(), storeKey, time.Second, logger.NewDiscardAdapter())
	ctx := context.Background()

	before := metadataSourceTotal(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, md.Load(ctx))
		_, _, err := md.Resolve(ctx, testMint2)
		require.NoError(t, err)
	}

	assert.Equal(t, before+1, metadataSourceTotal(t), "warm loads are not counted")
}

// metadataSourceTotal sums the metadata load-source counter across all labels.
func metadataSourceTotal(t *testing.T) float64 {
	t.Helper()
	metrics.MustRegisterMetrics()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "portfolio_dashboard_token_metadata_load_source_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
