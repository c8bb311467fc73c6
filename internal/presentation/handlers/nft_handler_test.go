package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/domain"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
	"github.com/bimakw/wallet-dashboard/internal/testutil"
)

func TestNFTHandler_WalletNFTs(t *testing.T) {
	t.Run("GET lists without touching the cache", func(t *testing.T) {
		env := setupTestEnv()
		env.gateway.SetNFTs(testutil.AliceAddress, 1, []entities.NFTEntry{testutil.CreateTestNFT()})

		rec := env.do(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/nfts?chain_id=1", "")

		assertStatus(t, rec, http.StatusOK)
		var response services.NFTListResponse
		decodeBody(t, rec, &response)

		if response.Data.Count != 1 || response.Data.NFTs[0].Name != "Bored Ape #1" {
			t.Errorf("unexpected NFTs %+v", response.Data)
		}
		if len(env.store.NFTs()) != 0 {
			t.Errorf("expected empty cache, got %d", len(env.store.NFTs()))
		}
	})

	t.Run("POST refresh caches", func(t *testing.T) {
		env := setupTestEnv()
		env.gateway.SetNFTs(testutil.AliceAddress, 1, []entities.NFTEntry{testutil.CreateTestNFT()})

		rec := env.do(http.MethodPost, "/wallets/"+testutil.AliceAddress+"/nfts/refresh?chain_id=1", "")

		assertStatus(t, rec, http.StatusOK)
		var response services.NFTListResponse
		decodeBody(t, rec, &response)

		if response.Data.Count != 1 {
			t.Errorf("expected 1 NFT, got %d", response.Data.Count)
		}
		if len(env.store.NFTs()) != 1 {
			t.Errorf("expected NFT cached, got %d", len(env.store.NFTs()))
		}
	})

	t.Run("gateway error is mapped", func(t *testing.T) {
		env := setupTestEnv()
		env.gateway.GetNFTsFunc = func(ctx context.Context, address string, chainID int64) ([]entities.NFTEntry, error) {
			return nil, domain.ErrRateLimited
		}

		rec := env.do(http.MethodGet, "/wallets/"+testutil.AliceAddress+"/nfts", "")

		assertStatus(t, rec, http.StatusTooManyRequests)
	})
}

func TestNFTHandler_Registry(t *testing.T) {
	t.Run("upsert list and remove", func(t *testing.T) {
		env := setupTestEnv()

		rec := env.do(http.MethodPost, "/nfts", `{"contract_address":"`+testutil.BAYCAddress+`","token_id":"42","name":"Ape 42","chain_id":1}`)
		assertStatus(t, rec, http.StatusCreated)

		var created DataResponse[entities.NFTEntry]
		decodeBody(t, rec, &created)
		expectedID := entities.NFTKey(testutil.BAYCAddress, "42", 1)
		if created.Data.ID != expectedID {
			t.Errorf("expected id %s, got %s", expectedID, created.Data.ID)
		}

		rec = env.do(http.MethodGet, "/nfts?chain_id=1", "")
		assertStatus(t, rec, http.StatusOK)
		var list services.NFTListResponse
		decodeBody(t, rec, &list)
		if list.Data.Count != 1 {
			t.Errorf("expected 1 NFT, got %d", list.Data.Count)
		}

		rec = env.do(http.MethodDelete, "/nfts/"+string(expectedID), "")
		assertStatus(t, rec, http.StatusNoContent)
		if len(env.store.NFTs()) != 0 {
			t.Errorf("expected NFT removed, got %d", len(env.store.NFTs()))
		}
	})

	t.Run("replace all swaps every chain", func(t *testing.T) {
		env := setupTestEnv()
		env.store.UpsertNFT(context.Background(), testutil.CreateTestNFT(testutil.NFTWithChain(137)))

		rec := env.do(http.MethodPut, "/nfts", `[{"contract_address":"`+testutil.BAYCAddress+`","token_id":"5","chain_id":1},{"contract_address":"`+testutil.BAYCAddress+`","token_id":"6"}]`)

		assertStatus(t, rec, http.StatusOK)
		var replaced DataResponse[[]entities.NFTEntry]
		decodeBody(t, rec, &replaced)
		if len(replaced.Data) != 2 {
			t.Errorf("expected 2 NFTs, got %d", len(replaced.Data))
		}
		if len(env.store.NFTsForChain(137)) != 0 {
			t.Error("expected polygon NFT dropped")
		}
	})

	t.Run("replace all rejects an invalid entry", func(t *testing.T) {
		env := setupTestEnv()
		env.store.UpsertNFT(context.Background(), testutil.CreateTestNFT())

		rec := env.do(http.MethodPut, "/nfts", `[{"contract_address":"0x12","token_id":"5"}]`)

		assertStatus(t, rec, http.StatusBadRequest)
		if len(env.store.NFTs()) != 1 {
			t.Error("expected cache unchanged")
		}
	})

	t.Run("upsert defaults to the selected chain", func(t *testing.T) {
		env := setupTestEnv()
		env.store.SetSelectedChainID(context.Background(), 10)

		rec := env.do(http.MethodPost, "/nfts", `{"contract_address":"`+testutil.BAYCAddress+`","token_id":"1"}`)

		assertStatus(t, rec, http.StatusCreated)
		if len(env.store.NFTsForChain(10)) != 1 {
			t.Error("expected NFT on chain 10")
		}
	})

	t.Run("upsert validates input", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"bad json", `{"contract_address":`},
			{"bad address", `{"contract_address":"0x12","token_id":"1"}`},
			{"missing token id", `{"contract_address":"` + testutil.BAYCAddress + `"}`},
			{"negative chain", `{"contract_address":"` + testutil.BAYCAddress + `","token_id":"1","chain_id":-1}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				env := setupTestEnv()

				rec := env.do(http.MethodPost, "/nfts", tt.body)

				assertStatus(t, rec, http.StatusBadRequest)
				if len(env.store.NFTs()) != 0 {
					t.Error("expected nothing stored")
				}
			})
		}
	})
}
