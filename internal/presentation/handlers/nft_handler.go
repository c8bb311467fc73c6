package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// NFTHandler handles HTTP requests for wallet NFTs and the NFT cache
type NFTHandler struct {
	service *services.NFTService
	store   *registry.Store
	logger  *zap.Logger
}

// NewNFTHandler creates a new NFT handler
func NewNFTHandler(service *services.NFTService, store *registry.Store, logger *zap.Logger) *NFTHandler {
	return &NFTHandler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// RegisterRoutes registers the NFT routes
func (h *NFTHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/nfts", h.GetWalletNFTs)
	r.Post("/wallets/{address}/nfts/refresh", h.Refresh)

	r.Route("/nfts", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upsert)
		r.Put("/", h.ReplaceAll)
		r.Delete("/{id}", h.Remove)
	})
}

// GetWalletNFTs handles GET /api/v1/wallets/{address}/nfts
func (h *NFTHandler) GetWalletNFTs(w http.ResponseWriter, r *http.Request) {
	address, chainID, ok := walletParams(w, r)
	if !ok {
		return
	}

	response, err := h.service.Fetch(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get NFTs", zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Refresh handles POST /api/v1/wallets/{address}/nfts/refresh
func (h *NFTHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	address, chainID, ok := walletParams(w, r)
	if !ok {
		return
	}

	response, err := h.service.Refresh(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to refresh NFTs", zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// List handles GET /api/v1/nfts
func (h *NFTHandler) List(w http.ResponseWriter, r *http.Request) {
	chainID, ok := parseChainID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}

	respondJSON(w, http.StatusOK, h.service.List(chainID))
}

// Upsert handles POST /api/v1/nfts
func (h *NFTHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var nft entities.NFTEntry
	if err := decodeJSON(r, &nft); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if msg := h.prepareNFT(&nft); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	saved := h.store.UpsertNFT(r.Context(), nft)
	respondJSON(w, http.StatusCreated, DataResponse[entities.NFTEntry]{Data: saved})
}

// ReplaceAll handles PUT /api/v1/nfts. The body replaces the cache of every chain.
func (h *NFTHandler) ReplaceAll(w http.ResponseWriter, r *http.Request) {
	var nfts []entities.NFTEntry
	if err := decodeJSON(r, &nfts); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	for i := range nfts {
		if msg := h.prepareNFT(&nfts[i]); msg != "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("nft %d: %s", i, msg))
			return
		}
	}

	saved := h.service.ReplaceAll(r.Context(), nfts)
	respondJSON(w, http.StatusOK, DataResponse[[]entities.NFTEntry]{Data: saved})
}

// Remove handles DELETE /api/v1/nfts/{id}
func (h *NFTHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveNFT(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// prepareNFT validates a client-supplied NFT and fills the defaults. It
// returns the validation message, empty when the entry is usable.
func (h *NFTHandler) prepareNFT(nft *entities.NFTEntry) string {
	if !isValidAddress(nft.ContractAddress) {
		return "Invalid contract address format"
	}
	if strings.TrimSpace(nft.TokenID) == "" {
		return "token_id is required"
	}
	if nft.ChainID < 0 {
		return "Invalid chain_id"
	}
	if nft.ChainID == 0 {
		nft.ChainID = h.store.Selection().SelectedChainID
	}
	nft.ContractAddress = strings.ToLower(nft.ContractAddress)
	return ""
}
