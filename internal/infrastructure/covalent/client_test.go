package covalent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/config"
	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

const balancesBody = `{
  "data": {
    "address": "0x1111111111111111111111111111111111111111",
    "chain_id": 1,
    "items": [
      {
        "contract_address": "0xDAC17F958D2EE523A2206206994597C13D831EC7",
        "contract_name": "Tether USD",
        "contract_ticker_symbol": "USDT",
        "contract_decimals": 6,
        "logo_url": "https://logos.example/usdt.png",
        "type": "stablecoin",
        "balance": "2500000",
        "quote": 2.5,
        "quote_rate": 1.0
      },
      {
        "contract_address": "0x6b175474e89094c44da98b954eedeac495271d0f",
        "contract_name": "Dai Stablecoin",
        "contract_ticker_symbol": "DAI",
        "contract_decimals": null,
        "type": "cryptocurrency",
        "balance": null,
        "quote": null,
        "quote_rate": null
      }
    ]
  },
  "error": false,
  "error_message": null,
  "error_code": null
}`

const transactionsBody = `{
  "data": {
    "items": [
      {
        "tx_hash": "0xabc",
        "block_signed_at": "2024-01-15T10:30:00Z",
        "block_height": 19000000,
        "from_address": "0x1111111111111111111111111111111111111111",
        "to_address": "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
        "successful": true,
        "value": "0",
        "value_quote": 0,
        "gas_quote": 3.21,
        "log_events": [
          {
            "sender_address": "0xdac17f958d2ee523a2206206994597c13d831ec7",
            "sender_contract_ticker_symbol": "USDT",
            "sender_contract_decimals": 6,
            "decoded": {
              "name": "Transfer",
              "params": [
                {"name": "from", "type": "address", "value": "0x1111111111111111111111111111111111111111"},
                {"name": "to", "type": "address", "value": "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"},
                {"name": "value", "type": "uint256", "value": "1000000"}
              ]
            }
          },
          {
            "sender_address": "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
            "decoded": {"name": "Sync", "params": []}
          },
          {
            "sender_address": "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
            "decoded": null
          }
        ]
      }
    ]
  },
  "error": false
}`

const nftBody = `{
  "data": {
    "items": [
      {
        "contract_address": "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D",
        "contract_name": "BoredApeYachtClub",
        "type": "nft",
        "balance": "2",
        "nft_data": [
          {
            "token_id": "1",
            "external_data": {
              "name": "Ape One",
              "image": "",
              "image_256": "https://img.example/1_256.png",
              "floor_price_usd": 25000.5,
              "attributes": [{"trait_type": "Fur", "value": "Golden"}]
            }
          },
          {"token_id": "2", "external_data": null}
        ]
      },
      {
        "contract_address": "0xdac17f958d2ee523a2206206994597c13d831ec7",
        "contract_name": "Tether USD",
        "type": "stablecoin",
        "balance": "1"
      }
    ]
  },
  "error": false
}`

func setupClientTest(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := config.GatewayConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL + "/v1/",
		RequestTimeout: 5 * time.Second,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		RateLimitRPS:   1000,
	}

	return NewClient(cfg, zap.NewNop()), &hits
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_GetBalances(t *testing.T) {
	t.Run("maps balances", func(t *testing.T) {
		var gotPath string
		var gotQuery map[string]string
		client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			q := r.URL.Query()
			gotQuery = map[string]string{
				"key":            q.Get("key"),
				"nft":            q.Get("nft"),
				"no-spam":        q.Get("no-spam"),
				"quote-currency": q.Get("quote-currency"),
			}
			respond(http.StatusOK, balancesBody)(w, r)
		})

		balances, err := client.GetBalances(context.Background(), testutil.AliceAddress, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if gotPath != "/v1/1/address/"+testutil.AliceAddress+"/balances_v2/" {
			t.Errorf("unexpected path %s", gotPath)
		}
		want := map[string]string{"key": "test-key", "nft": "false", "no-spam": "true", "quote-currency": "USD"}
		for k, v := range want {
			if gotQuery[k] != v {
				t.Errorf("expected query %s=%s, got %s", k, v, gotQuery[k])
			}
		}

		if len(balances) != 2 {
			t.Fatalf("expected 2 balances, got %d", len(balances))
		}
		usdt := balances[0]
		if usdt.ContractAddress != testutil.USDTAddress {
			t.Errorf("expected lower-cased address, got %s", usdt.ContractAddress)
		}
		if usdt.Symbol != "USDT" || usdt.Decimals != 6 || usdt.Balance != "2500000" || usdt.Quote != 2.5 {
			t.Errorf("unexpected balance %+v", usdt)
		}

		dai := balances[1]
		if dai.Balance != "0" || dai.Quote != 0 || dai.Decimals != 0 {
			t.Errorf("expected null fields to become zero, got %+v", dai)
		}
	})

	t.Run("missing credential", func(t *testing.T) {
		client, hits := setupClientTest(t, respond(http.StatusOK, balancesBody))
		client.cfg.APIKey = ""

		_, err := client.GetBalances(context.Background(), testutil.AliceAddress, 1)

		if !errors.Is(err, domain.ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
		if atomic.LoadInt32(hits) != 0 {
			t.Errorf("expected no upstream request, got %d", *hits)
		}
	})
}

func TestClient_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantErr  error
		wantHits int32
	}{
		{
			name:     "429 is rate limited without retry",
			handler:  respond(http.StatusTooManyRequests, `{"error": true}`),
			wantErr:  domain.ErrRateLimited,
			wantHits: 1,
		},
		{
			name:     "562 is rate limited",
			handler:  respond(StatusSiteOverloaded, ``),
			wantErr:  domain.ErrRateLimited,
			wantHits: 1,
		},
		{
			name:     "404 is upstream status without retry",
			handler:  respond(http.StatusNotFound, `not found`),
			wantErr:  domain.ErrUpstreamStatus,
			wantHits: 1,
		},
		{
			name:     "5xx is retried then upstream status",
			handler:  respond(http.StatusBadGateway, ``),
			wantErr:  domain.ErrUpstreamStatus,
			wantHits: 3,
		},
		{
			name:     "invalid json is malformed",
			handler:  respond(http.StatusOK, `{"data": [`),
			wantErr:  domain.ErrMalformedPayload,
			wantHits: 1,
		},
		{
			name:     "error envelope is malformed",
			handler:  respond(http.StatusOK, `{"data": null, "error": true, "error_message": "bad address", "error_code": 400}`),
			wantErr:  domain.ErrMalformedPayload,
			wantHits: 1,
		},
		{
			name:     "error envelope with rate limit code",
			handler:  respond(http.StatusOK, `{"data": null, "error": true, "error_message": "slow down", "error_code": 429}`),
			wantErr:  domain.ErrRateLimited,
			wantHits: 1,
		},
		{
			name:     "missing data is malformed",
			handler:  respond(http.StatusOK, `{"error": false}`),
			wantErr:  domain.ErrMalformedPayload,
			wantHits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hits := setupClientTest(t, tt.handler)

			balances, err := client.GetBalances(context.Background(), testutil.AliceAddress, 1)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if balances != nil {
				t.Errorf("expected nil records on failure, got %d", len(balances))
			}
			if got := atomic.LoadInt32(hits); got != tt.wantHits {
				t.Errorf("expected %d requests, got %d", tt.wantHits, got)
			}
		})
	}
}

func TestClient_RetryRecovers(t *testing.T) {
	var calls int32
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			respond(http.StatusServiceUnavailable, ``)(w, r)
			return
		}
		respond(http.StatusOK, balancesBody)(w, r)
	})

	balances, err := client.GetBalances(context.Background(), testutil.AliceAddress, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 2 {
		t.Errorf("expected 2 balances, got %d", len(balances))
	}
}

func TestClient_GetTransactions(t *testing.T) {
	var pageSize string
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		pageSize = r.URL.Query().Get("page-size")
		respond(http.StatusOK, transactionsBody)(w, r)
	})

	txs, err := client.GetTransactions(context.Background(), testutil.AliceAddress, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pageSize != "20" {
		t.Errorf("expected page-size 20, got %s", pageSize)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	tx := txs[0]
	if tx.TxHash != "0xabc" || tx.BlockHeight != 19000000 || !tx.Successful {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if !tx.BlockSignedAt.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected block_signed_at %v", tx.BlockSignedAt)
	}
	if tx.GasQuote != 3.21 {
		t.Errorf("expected gas quote 3.21, got %f", tx.GasQuote)
	}

	if len(tx.Transfers) != 1 {
		t.Fatalf("expected 1 decoded transfer, got %d", len(tx.Transfers))
	}
	transfer := tx.Transfers[0]
	if transfer.Symbol != "USDT" || transfer.Decimals != 6 || transfer.Balance != "1000000" {
		t.Errorf("unexpected transfer %+v", transfer)
	}
	if transfer.FromAddress != testutil.AliceAddress || transfer.ToAddress != testutil.RouterAddress {
		t.Errorf("unexpected transfer parties %s -> %s", transfer.FromAddress, transfer.ToAddress)
	}
}

func TestClient_GetNFTs(t *testing.T) {
	var nftParam string
	client, _ := setupClientTest(t, func(w http.ResponseWriter, r *http.Request) {
		nftParam = r.URL.Query().Get("nft")
		respond(http.StatusOK, nftBody)(w, r)
	})

	nfts, err := client.GetNFTs(context.Background(), testutil.AliceAddress, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if nftParam != "true" {
		t.Errorf("expected nft=true, got %s", nftParam)
	}
	if len(nfts) != 2 {
		t.Fatalf("expected 2 nfts, got %d", len(nfts))
	}

	first := nfts[0]
	if first.ID != "0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d:1:1" {
		t.Errorf("unexpected id %s", first.ID)
	}
	if first.Name != "Ape One" {
		t.Errorf("expected name Ape One, got %s", first.Name)
	}
	if first.ImageURL != "https://img.example/1_256.png" {
		t.Errorf("expected image_256 fallback, got %s", first.ImageURL)
	}
	if first.FloorPriceUSD == nil || *first.FloorPriceUSD != 25000.5 {
		t.Errorf("unexpected floor price %v", first.FloorPriceUSD)
	}
	if len(first.Attributes) != 1 || first.Attributes[0].TraitType != "Fur" {
		t.Errorf("unexpected attributes %+v", first.Attributes)
	}

	second := nfts[1]
	if second.Name != "BoredApeYachtClub #2" {
		t.Errorf("expected fallback name, got %s", second.Name)
	}
	if second.Attributes == nil {
		t.Error("expected empty attributes, got nil")
	}
}
