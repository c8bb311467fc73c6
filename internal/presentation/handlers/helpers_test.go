package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

// testEnv is a router with every API handler mounted over mocks
type testEnv struct {
	router   chi.Router
	gateway  *testutil.MockDataGateway
	cache    *testutil.MockCache
	resolver *testutil.MockMetadataResolver
	store    *registry.Store
}

func setupTestEnv() *testEnv {
	logger := zap.NewNop()
	gateway := testutil.NewMockDataGateway()
	cache := testutil.NewMockCache()
	resolver := testutil.NewMockMetadataResolver()
	store := registry.NewStore(context.Background(), testutil.NewMockStateRepository(), logger)

	portfolio := services.NewPortfolioService(gateway, store, cache, time.Minute, logger)
	transactions := services.NewTransactionService(gateway, store, cache, time.Minute, nil, logger)
	nfts := services.NewNFTService(gateway, store, logger)
	customTokens := services.NewCustomTokenService(store, resolver, 1, logger)

	r := chi.NewRouter()
	NewPortfolioHandler(portfolio, logger).RegisterRoutes(r)
	NewTransactionHandler(transactions, logger).RegisterRoutes(r)
	NewNFTHandler(nfts, store, logger).RegisterRoutes(r)
	NewRegistryHandler(store, customTokens, logger).RegisterRoutes(r)
	NewChainHandler().RegisterRoutes(r)

	return &testEnv{
		router:   r,
		gateway:  gateway,
		cache:    cache,
		resolver: resolver,
		store:    store,
	}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Errorf("expected status %d, got %d: %s", expected, rec.Code, rec.Body.String())
	}
}
