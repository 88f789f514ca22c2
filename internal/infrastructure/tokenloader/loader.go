package tokenloader

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const filePrefix = "file://"

// TokenListLoader implements port.TokenListFetcher. It downloads the token list
// over HTTP, or reads it from disk when the URL has the file:// scheme.
type TokenListLoader struct {
	client  *fasthttp.Client
	url     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewTokenListLoader creates a new TokenListLoader.
func NewTokenListLoader(url string, timeout time.Duration, logger *zap.Logger) port.TokenListFetcher {
	return &TokenListLoader{
		client: &fasthttp.Client{
			// the solana-labs list is several megabytes
			MaxResponseBodySize: 64 << 20,
		},
		url:     url,
		timeout: timeout,
		logger:  logger.Named("TokenListLoader"),
	}
}

// FetchTokenList implements port.TokenListFetcher.
func (l *TokenListLoader) FetchTokenList(ctx context.Context) (list *entity.TokenList, err error) {
	defer func() { metrics.ObserveTokenListFetch(err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	if strings.HasPrefix(l.url, filePrefix) {
		raw, err = l.readFile(strings.TrimPrefix(l.url, filePrefix))
	} else {
		raw, err = l.download(ctx)
	}
	if err != nil {
		return nil, err
	}

	list, err = decodeTokenList(raw)
	if err != nil {
		l.logger.Error("Failed to decode token list", zap.String("url", l.url), zap.Error(err))
		return nil, err
	}
	l.logger.Info("Token list loaded", zap.String("url", l.url), zap.Int("tokenCount", len(list.Tokens)))
	return list, nil
}

func (l *TokenListLoader) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list file %s: %w", path, err)
	}
	return data, nil
}

func (l *TokenListLoader) download(ctx context.Context) ([]byte, error) {
	l.logger.Debug("Requesting token list", zap.String("url", l.url))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(l.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = l.client.DoDeadline(req, resp, deadline)
	} else {
		err = l.client.DoTimeout(req, resp, l.timeout)
	}
	if err != nil {
		l.logger.Error("Failed to execute token list request", zap.String("url", l.url), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", l.url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		l.logger.Error("Token list request failed",
			zap.String("url", l.url),
			zap.Int("statusCode", resp.StatusCode()))
		return nil, fmt.Errorf("token list request to %s failed with status %d", l.url, resp.StatusCode())
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("failed to decompress token list body from %s: %w", l.url, err)
	}
	return append([]byte(nil), body...), nil
}

func decodeTokenList(raw []byte) (*entity.TokenList, error) {
	var list entity.TokenList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token list: %w", err)
	}
	if list.Tokens == nil {
		return nil, fmt.Errorf("token list has no tokens array")
	}
	return &list, nil
}
