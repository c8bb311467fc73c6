package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/infrastructure/ethereum"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

func TestRegistryHandler_Watchlist(t *testing.T) {
	t.Run("add contains list and remove", func(t *testing.T) {
		env := setupTestEnv()
		upper := "0x" + strings.ToUpper(strings.TrimPrefix(testutil.DAIAddress, "0x"))

		rec := env.do(http.MethodPost, "/watchlist", `{"contract_address":"`+upper+`","name":"Dai","symbol":"DAI","chain_id":1}`)
		assertStatus(t, rec, http.StatusCreated)

		var created DataResponse[entities.WatchlistEntry]
		decodeBody(t, rec, &created)
		if created.Data.ID != entities.WatchlistKey(testutil.DAIAddress, 1) {
			t.Errorf("unexpected id %s", created.Data.ID)
		}
		if created.Data.ContractAddress != testutil.DAIAddress {
			t.Errorf("expected lower-cased address, got %s", created.Data.ContractAddress)
		}

		rec = env.do(http.MethodGet, "/watchlist/contains?address="+upper+"&chain_id=1", "")
		assertStatus(t, rec, http.StatusOK)
		var contains DataResponse[ContainsResponse]
		decodeBody(t, rec, &contains)
		if !contains.Data.InWatchlist {
			t.Error("expected token in watchlist")
		}

		rec = env.do(http.MethodGet, "/watchlist?chain_id=137", "")
		var other DataResponse[[]entities.WatchlistEntry]
		decodeBody(t, rec, &other)
		if len(other.Data) != 0 {
			t.Errorf("expected no entries on chain 137, got %d", len(other.Data))
		}

		rec = env.do(http.MethodDelete, "/watchlist/"+string(created.Data.ID), "")
		assertStatus(t, rec, http.StatusNoContent)

		rec = env.do(http.MethodGet, "/watchlist", "")
		var all DataResponse[[]entities.WatchlistEntry]
		decodeBody(t, rec, &all)
		if len(all.Data) != 0 {
			t.Errorf("expected empty watchlist, got %d", len(all.Data))
		}
	})

	t.Run("delete of unknown id succeeds", func(t *testing.T) {
		env := setupTestEnv()

		rec := env.do(http.MethodDelete, "/watchlist/0xnothing:1", "")

		assertStatus(t, rec, http.StatusNoContent)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			target string
			body   string
		}{
			{"bad json", http.MethodPost, "/watchlist", `not json`},
			{"bad address", http.MethodPost, "/watchlist", `{"contract_address":"0xabc","chain_id":1}`},
			{"negative chain", http.MethodPost, "/watchlist", `{"contract_address":"` + testutil.DAIAddress + `","chain_id":-5}`},
			{"contains bad address", http.MethodGet, "/watchlist/contains?address=dai", ""},
			{"list bad chain", http.MethodGet, "/watchlist?chain_id=x", ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := setupTestEnv()

				rec := env.do(tt.method, tt.target, tt.body)

				assertStatus(t, rec, http.StatusBadRequest)
			})
		}
	})
}

func TestRegistryHandler_CustomTokens(t *testing.T) {
	t.Run("adds with resolved metadata", func(t *testing.T) {
		env := setupTestEnv()
		env.resolver.Metadata[testutil.USDCAddress] = &ethereum.TokenMetadata{Name: "USD Coin", Symbol: "USDC", Decimals: 6}

		rec := env.do(http.MethodPost, "/custom-tokens", `{"contract_address":"`+testutil.USDCAddress+`","chain_id":1}`)

		assertStatus(t, rec, http.StatusCreated)
		var created DataResponse[entities.CustomToken]
		decodeBody(t, rec, &created)
		if created.Data.Symbol != "USDC" || created.Data.Decimals != 6 {
			t.Errorf("unexpected token %+v", created.Data)
		}

		rec = env.do(http.MethodGet, "/custom-tokens?chain_id=1", "")
		var list DataResponse[[]entities.CustomToken]
		decodeBody(t, rec, &list)
		if len(list.Data) != 1 {
			t.Fatalf("expected 1 token, got %d", len(list.Data))
		}

		rec = env.do(http.MethodDelete, "/custom-tokens/"+string(created.Data.ID), "")
		assertStatus(t, rec, http.StatusNoContent)
		if len(env.store.CustomTokens()) != 0 {
			t.Error("expected token removed")
		}
	})

	t.Run("service validation maps to bad request", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"invalid address", `{"contract_address":"nope","symbol":"X"}`},
			{"symbol unresolved", `{"contract_address":"` + testutil.WETHAddress + `","chain_id":137}`},
			{"negative chain", `{"contract_address":"` + testutil.WETHAddress + `","symbol":"X","chain_id":-1}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := setupTestEnv()

				rec := env.do(http.MethodPost, "/custom-tokens", tt.body)

				assertStatus(t, rec, http.StatusBadRequest)
				var response ErrorResponse
				decodeBody(t, rec, &response)
				if response.Error == "" {
					t.Error("expected error message")
				}
			})
		}
	})
}

func TestRegistryHandler_Selection(t *testing.T) {
	t.Run("defaults to mainnet", func(t *testing.T) {
		env := setupTestEnv()

		rec := env.do(http.MethodGet, "/selection", "")

		assertStatus(t, rec, http.StatusOK)
		var response DataResponse[entities.AppSelection]
		decodeBody(t, rec, &response)
		if response.Data.SelectedChainID != entities.DefaultChainID {
			t.Errorf("expected chain %d, got %d", entities.DefaultChainID, response.Data.SelectedChainID)
		}
	})

	t.Run("updates the selection", func(t *testing.T) {
		env := setupTestEnv()

		rec := env.do(http.MethodPut, "/selection", `{"selected_chain_id":8453}`)

		assertStatus(t, rec, http.StatusOK)
		if got := env.store.Selection().SelectedChainID; got != 8453 {
			t.Errorf("expected chain 8453, got %d", got)
		}
	})

	t.Run("rejects non positive chain ids", func(t *testing.T) {
		for _, body := range []string{`{"selected_chain_id":0}`, `{"selected_chain_id":-1}`, `{}`} {
			env := setupTestEnv()
			env.store.SetSelectedChainID(context.Background(), 10)

			rec := env.do(http.MethodPut, "/selection", body)

			assertStatus(t, rec, http.StatusBadRequest)
			if got := env.store.Selection().SelectedChainID; got != 10 {
				t.Errorf("expected selection unchanged, got %d", got)
			}
		}
	})
}
