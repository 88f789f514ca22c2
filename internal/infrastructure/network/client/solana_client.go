package client

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	sdkclient "github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/domain/entity"
	"portfolio_dashboard/internal/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenProgramID is the SPL token program every token account enumeration is filtered by.
var TokenProgramID = common.TokenProgramID.ToBase58()

const defaultCommitment = "confirmed"

// SolanaClient implements port.LedgerClient against a Solana JSON-RPC node.
// getBalance goes through the SDK client; getTokenAccountsByOwner needs the
// jsonParsed encoding and is issued directly over fasthttp.
type SolanaClient struct {
	sdk        *sdkclient.Client
	httpClient *fasthttp.Client
	endpoint   string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
	requestID  atomic.Uint64
}

// NewSolanaClient creates a client for endpoint. A non-positive rateLimit disables throttling.
func NewSolanaClient(endpoint string, timeout time.Duration, rateLimit int, burst int, logger *zap.Logger) *SolanaClient {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rateLimit > 0 {
		if burst <= 0 {
			burst = rateLimit
		}
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}
	return &SolanaClient{
		sdk:        sdkclient.NewClient(endpoint),
		httpClient: &fasthttp.Client{},
		endpoint:   strings.TrimRight(endpoint, "/"),
		timeout:    timeout,
		limiter:    limiter,
		logger:     logger.Named("SolanaClient").With(zap.String("endpoint", endpoint)),
	}
}

// Endpoint returns the RPC URL of this client.
func (c *SolanaClient) Endpoint() string {
	return c.endpoint
}

// GetBalance returns the lamport balance of address.
func (c *SolanaClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	if err := utils.ValidateAddress(address); err != nil {
		return 0, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter wait for getBalance: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lamports, err := c.sdk.GetBalance(callCtx, address)
	if err != nil {
		c.logger.Error("getBalance failed", zap.String("address", address), zap.Error(err))
		return 0, fmt.Errorf("getBalance for %s: %w", address, err)
	}
	c.logger.Debug("getBalance succeeded", zap.String("address", address), zap.Uint64("lamports", lamports))
	return lamports, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// GetParsedTokenAccountsByOwner enumerates owner's token accounts under programID.
// Accounts the node could not parse are skipped.
func (c *SolanaClient) GetParsedTokenAccountsByOwner(ctx context.Context, owner string, programID string) ([]entity.ParsedTokenAccount, error) {
	if err := utils.ValidateAddress(owner); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for getTokenAccountsByOwner: %w", err)
	}

	body, err := c.call(ctx, "getTokenAccountsByOwner", []any{
		owner,
		map[string]string{"programId": programID},
		map[string]string{"encoding": "jsonParsed", "commitment": defaultCommitment},
	})
	if err != nil {
		return nil, err
	}

	value := gjson.GetBytes(body, "result.value")
	if !value.IsArray() {
		c.logger.Error("getTokenAccountsByOwner returned no result.value array", zap.ByteString("responseBody", body))
		return nil, fmt.Errorf("getTokenAccountsByOwner for %s: malformed response", owner)
	}

	accounts := make([]entity.ParsedTokenAccount, 0, len(value.Array()))
	value.ForEach(func(_, acc gjson.Result) bool {
		info := acc.Get("account.data.parsed.info")
		if !info.Exists() {
			c.logger.Warn("Token account is not jsonParsed, skipping", zap.String("pubkey", acc.Get("pubkey").String()))
			return true
		}
		accounts = append(accounts, entity.ParsedTokenAccount{
			Pubkey:         acc.Get("pubkey").String(),
			Mint:           info.Get("mint").String(),
			Owner:          info.Get("owner").String(),
			UIAmountString: info.Get("tokenAmount.uiAmountString").String(),
			Decimals:       int(info.Get("tokenAmount.decimals").Int()),
		})
		return true
	})

	c.logger.Debug("getTokenAccountsByOwner succeeded", zap.String("owner", owner), zap.Int("accountCount", len(accounts)))
	return accounts, nil
}

// call performs a single JSON-RPC request and returns the raw response body.
func (c *SolanaClient) call(ctx context.Context, method string, params []any) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline, ok := ctx.Deadline()
	if ok {
		err = c.httpClient.DoDeadline(req, resp, deadline)
	} else {
		err = c.httpClient.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to execute RPC request", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("failed to execute %s request to %s: %w", method, c.endpoint, err)
	}

	// the body is owned by resp, which goes back to the pool on return
	body := append([]byte(nil), resp.Body()...)

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("RPC request failed",
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", body))
		return nil, fmt.Errorf("%s request to %s failed with status %d", method, c.endpoint, resp.StatusCode())
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s response from %s is not valid JSON", method, c.endpoint)
	}
	if rpcErr := gjson.GetBytes(body, "error"); rpcErr.Exists() && rpcErr.Type != gjson.Null {
		return nil, fmt.Errorf("%s RPC error %d: %s", method, rpcErr.Get("code").Int(), rpcErr.Get("message").String())
	}
	return body, nil
}

var _ port.LedgerClient = (*SolanaClient)(nil)
