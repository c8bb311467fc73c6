package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bimakw/wallet-dashboard/internal/domain/chains"
)

// ChainHandler serves the chain registry and explorer links
type ChainHandler struct{}

// NewChainHandler creates a new chain handler
func NewChainHandler() *ChainHandler {
	return &ChainHandler{}
}

// ExplorerLinkDTO is a resolved block explorer URL
type ExplorerLinkDTO struct {
	ChainID      int64  `json:"chain_id"`
	ExplorerName string `json:"explorer_name"`
	URL          string `json:"url"`
}

// RegisterRoutes registers the chain routes
func (h *ChainHandler) RegisterRoutes(r chi.Router) {
	r.Get("/chains", h.GetChains)
	r.Get("/chains/{chainId}/explorer", h.GetExplorerLink)
}

// GetChains handles GET /api/v1/chains
func (h *ChainHandler) GetChains(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DataResponse[[]chains.Info]{Data: chains.All()})
}

// GetExplorerLink handles GET /api/v1/chains/{chainId}/explorer?tx= or ?address=
func (h *ChainHandler) GetExplorerLink(w http.ResponseWriter, r *http.Request) {
	chainID, err := strconv.ParseInt(chi.URLParam(r, "chainId"), 10, 64)
	if err != nil || chainID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid chain id")
		return
	}

	link := ExplorerLinkDTO{
		ChainID:      chainID,
		ExplorerName: chains.ExplorerName(chainID),
	}

	query := r.URL.Query()
	switch {
	case query.Get("tx") != "":
		link.URL = chains.ExplorerTxURL(chainID, query.Get("tx"))
	case query.Get("address") != "":
		if !isValidAddress(query.Get("address")) {
			respondError(w, http.StatusBadRequest, "Invalid address format")
			return
		}
		link.URL = chains.ExplorerAddressURL(chainID, query.Get("address"))
	default:
		respondError(w, http.StatusBadRequest, "Either tx or address is required")
		return
	}

	respondJSON(w, http.StatusOK, DataResponse[ExplorerLinkDTO]{Data: link})
}
