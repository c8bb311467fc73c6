// Package covalent implements the remote data gateway on top of the Covalent
// unified API.
package covalent

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimakw/wallet-dashboard/internal/config"
	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/domain/repositories"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusSiteOverloaded is Covalent's non-standard rate limit status
const StatusSiteOverloaded = 562

const (
	endpointBalances     = "balances"
	endpointTransactions = "transactions"
	endpointNFTs         = "nfts"
)

var _ repositories.DataGateway = (*Client)(nil)

// Client fetches balances, transactions and NFTs from Covalent
type Client struct {
	client  *fasthttp.Client
	cfg     config.GatewayConfig
	baseURL string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new Covalent client. A missing API key is not an error
// here; every call then fails with domain.ErrMissingCredential.
func NewClient(cfg config.GatewayConfig, logger *zap.Logger) *Client {
	burst := int(cfg.RateLimitRPS)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		client: &fasthttp.Client{
			Name:                "wallet-dashboard",
			MaxIdleConnDuration: 30 * time.Second,
		},
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst),
		logger:  logger.Named("covalent"),
	}
}

// GetBalances returns the fungible token balances of address on chainID
func (c *Client) GetBalances(ctx context.Context, address string, chainID int64) ([]entities.TokenBalance, error) {
	path := fmt.Sprintf("/%d/address/%s/balances_v2/", chainID, strings.TrimSpace(address))
	body, err := c.do(ctx, endpointBalances, path, map[string]string{
		"nft":            "false",
		"no-spam":        "true",
		"quote-currency": "USD",
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeItems[balanceItem](body)
	observe(endpointBalances, err)
	if err != nil {
		return nil, err
	}

	balances := make([]entities.TokenBalance, 0, len(items))
	for _, item := range items {
		if item.Type == "nft" {
			continue
		}
		balances = append(balances, item.toBalance())
	}

	c.logger.Debug("Fetched balances",
		zap.String("address", address),
		zap.Int64("chain_id", chainID),
		zap.Int("count", len(balances)),
	)

	return balances, nil
}

// GetTransactions returns the most recent transactions of address on chainID
func (c *Client) GetTransactions(ctx context.Context, address string, chainID int64, pageSize int) ([]entities.Transaction, error) {
	path := fmt.Sprintf("/%d/address/%s/transactions_v2/", chainID, strings.TrimSpace(address))
	body, err := c.do(ctx, endpointTransactions, path, map[string]string{
		"page-size":      strconv.Itoa(pageSize),
		"quote-currency": "USD",
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeItems[transactionItem](body)
	observe(endpointTransactions, err)
	if err != nil {
		return nil, err
	}

	txs := make([]entities.Transaction, 0, len(items))
	for _, item := range items {
		txs = append(txs, item.toTransaction())
	}

	c.logger.Debug("Fetched transactions",
		zap.String("address", address),
		zap.Int64("chain_id", chainID),
		zap.Int("count", len(txs)),
	)

	return txs, nil
}

// GetNFTs returns every NFT held by address on chainID
func (c *Client) GetNFTs(ctx context.Context, address string, chainID int64) ([]entities.NFTEntry, error) {
	path := fmt.Sprintf("/%d/address/%s/balances_v2/", chainID, strings.TrimSpace(address))
	body, err := c.do(ctx, endpointNFTs, path, map[string]string{
		"nft":     "true",
		"no-spam": "true",
	})
	if err != nil {
		return nil, err
	}

	items, err := decodeItems[balanceItem](body)
	observe(endpointNFTs, err)
	if err != nil {
		return nil, err
	}

	nfts := make([]entities.NFTEntry, 0)
	for _, item := range items {
		nfts = append(nfts, item.toNFTs(chainID)...)
	}

	c.logger.Debug("Fetched NFTs",
		zap.String("address", address),
		zap.Int64("chain_id", chainID),
		zap.Int("count", len(nfts)),
	)

	return nfts, nil
}

// do performs a GET with rate limiting and retries. Transport errors and 5xx
// responses are retried; rate limits and other statuses are returned at once.
func (c *Client) do(ctx context.Context, endpoint, path string, query map[string]string) ([]byte, error) {
	if c.cfg.APIKey == "" {
		observe(endpoint, domain.ErrMissingCredential)
		return nil, domain.ErrMissingCredential
	}

	start := time.Now()
	defer func() {
		gatewayDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		body, status, err := c.fetch(ctx, path, query)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("failed to execute request to %s: %w", path, err)
		case status == fasthttp.StatusOK:
			return body, nil
		case status == fasthttp.StatusTooManyRequests || status == StatusSiteOverloaded:
			c.logger.Warn("Covalent rate limit hit",
				zap.String("path", path),
				zap.Int("status", status),
			)
			err := fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
			observe(endpoint, err)
			return nil, err
		case status >= fasthttp.StatusInternalServerError:
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamStatus, status)
		default:
			c.logger.Error("Covalent request failed",
				zap.String("path", path),
				zap.Int("status", status),
				zap.ByteString("body", truncate(body, 512)),
			)
			err := fmt.Errorf("%w: status %d", domain.ErrUpstreamStatus, status)
			observe(endpoint, err)
			return nil, err
		}

		c.logger.Warn("Covalent request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", i+1),
			zap.Error(lastErr),
		)

		if i < c.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
	}

	observe(endpoint, lastErr)
	return nil, fmt.Errorf("covalent request failed after %d retries: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) fetch(ctx context.Context, path string, query map[string]string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	args := req.URI().QueryArgs()
	args.Set("key", c.cfg.APIKey)
	for k, v := range query {
		args.Set(k, v)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.cfg.RequestTimeout)
	}
	if err != nil {
		return nil, 0, err
	}

	// the response body is recycled on release
	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

// decodeItems unwraps Covalent's {data: {items: [...]}, error: bool} envelope
func decodeItems[T any](body []byte) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if env.Error {
		if env.ErrorCode == fasthttp.StatusTooManyRequests || env.ErrorCode == StatusSiteOverloaded {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, env.ErrorMessage)
		}
		return nil, fmt.Errorf("%w: upstream error %d: %s", domain.ErrMalformedPayload, env.ErrorCode, env.ErrorMessage)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data", domain.ErrMalformedPayload)
	}
	if env.Data.Items == nil {
		return []T{}, nil
	}
	return env.Data.Items, nil
}

func observe(endpoint string, err error) {
	gatewayRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrUpstreamStatus):
		return "upstream_status"
	case errors.Is(err, domain.ErrMalformedPayload):
		return "malformed"
	default:
		return "transport"
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
