package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/registry"
	"github.com/bimakw/wallet-dashboard/internal/application/services"
	"github.com/bimakw/wallet-dashboard/internal/domain/entities"
)

// RegistryHandler handles the watchlist, custom tokens and chain selection
type RegistryHandler struct {
	store        *registry.Store
	customTokens *services.CustomTokenService
	logger       *zap.Logger
}

// NewRegistryHandler creates a new registry handler
func NewRegistryHandler(store *registry.Store, customTokens *services.CustomTokenService, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{
		store:        store,
		customTokens: customTokens,
		logger:       logger,
	}
}

// ContainsResponse answers a watchlist membership query
type ContainsResponse struct {
	InWatchlist bool `json:"in_watchlist"`
}

// RegisterRoutes registers the registry routes
func (h *RegistryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.GetWatchlist)
		r.Post("/", h.AddToWatchlist)
		r.Get("/contains", h.WatchlistContains)
		r.Delete("/{id}", h.RemoveFromWatchlist)
	})

	r.Route("/custom-tokens", func(r chi.Router) {
		r.Get("/", h.GetCustomTokens)
		r.Post("/", h.AddCustomToken)
		r.Delete("/{id}", h.RemoveCustomToken)
	})

	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.SetSelection)
}

// GetWatchlist handles GET /api/v1/watchlist. Without chain_id every entry
// is returned.
func (h *RegistryHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	chainID, ok := parseChainID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}

	entries := h.store.Watchlist()
	if chainID > 0 {
		entries = h.store.WatchlistForChain(chainID)
	}

	respondJSON(w, http.StatusOK, DataResponse[[]entities.WatchlistEntry]{Data: entries})
}

// AddToWatchlist handles POST /api/v1/watchlist
func (h *RegistryHandler) AddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var input entities.WatchlistInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	input.ContractAddress = strings.TrimSpace(input.ContractAddress)
	if !isValidAddress(input.ContractAddress) {
		respondError(w, http.StatusBadRequest, "Invalid contract address format")
		return
	}
	if input.ChainID < 0 {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}
	if input.ChainID == 0 {
		input.ChainID = h.store.Selection().SelectedChainID
	}
	input.ContractAddress = strings.ToLower(input.ContractAddress)

	entry := h.store.UpsertWatchlist(r.Context(), input)
	respondJSON(w, http.StatusCreated, DataResponse[entities.WatchlistEntry]{Data: entry})
}

// WatchlistContains handles GET /api/v1/watchlist/contains?address=&chain_id=
func (h *RegistryHandler) WatchlistContains(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid contract address format")
		return
	}

	chainID, ok := parseChainID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}
	if chainID == 0 {
		chainID = h.store.Selection().SelectedChainID
	}

	respondJSON(w, http.StatusOK, DataResponse[ContainsResponse]{
		Data: ContainsResponse{InWatchlist: h.store.IsInWatchlist(address, chainID)},
	})
}

// RemoveFromWatchlist handles DELETE /api/v1/watchlist/{id}
func (h *RegistryHandler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveFromWatchlist(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// GetCustomTokens handles GET /api/v1/custom-tokens
func (h *RegistryHandler) GetCustomTokens(w http.ResponseWriter, r *http.Request) {
	chainID, ok := parseChainID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}

	respondJSON(w, http.StatusOK, DataResponse[[]entities.CustomToken]{Data: h.customTokens.List(chainID)})
}

// AddCustomToken handles POST /api/v1/custom-tokens
func (h *RegistryHandler) AddCustomToken(w http.ResponseWriter, r *http.Request) {
	var input entities.CustomTokenInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.ChainID < 0 {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return
	}

	token, err := h.customTokens.Add(r.Context(), input)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add custom token")
		return
	}

	respondJSON(w, http.StatusCreated, DataResponse[*entities.CustomToken]{Data: token})
}

// RemoveCustomToken handles DELETE /api/v1/custom-tokens/{id}
func (h *RegistryHandler) RemoveCustomToken(w http.ResponseWriter, r *http.Request) {
	h.customTokens.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// GetSelection handles GET /api/v1/selection
func (h *RegistryHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DataResponse[entities.AppSelection]{Data: h.store.Selection()})
}

// SetSelection handles PUT /api/v1/selection
func (h *RegistryHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var input entities.AppSelection
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if input.SelectedChainID <= 0 {
		respondError(w, http.StatusBadRequest, "selected_chain_id must be positive")
		return
	}

	h.store.SetSelectedChainID(r.Context(), input.SelectedChainID)
	respondJSON(w, http.StatusOK, DataResponse[entities.AppSelection]{Data: h.store.Selection()})
}
