package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/aggregator"
	"github.com/bimakw/wallet-dashboard/internal/application/services"
)

// PortfolioHandler handles HTTP requests for wallet portfolio endpoints
type PortfolioHandler struct {
	service *services.PortfolioService
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the portfolio routes on a chi router
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/portfolio", h.GetPortfolio)
	r.Get("/wallets/{address}/summary", h.GetSummary)
	r.Delete("/wallets/{address}/cache", h.Invalidate)
}

// GetPortfolio handles GET /api/v1/wallets/{address}/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	address, chainID, ok := walletParams(w, r)
	if !ok {
		return
	}

	sortKey, ok := aggregator.ParseSortKey(r.URL.Query().Get("sort"))
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid sort, expected value, name or balance")
		return
	}

	query := services.PortfolioQuery{
		Filter: r.URL.Query().Get("q"),
		Sort:   sortKey,
	}

	response, err := h.service.GetPortfolio(r.Context(), address, chainID, query)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get portfolio", zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetSummary handles GET /api/v1/wallets/{address}/summary
func (h *PortfolioHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	address, chainID, ok := walletParams(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetSummary(r.Context(), address, chainID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get wallet summary", zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// Invalidate handles DELETE /api/v1/wallets/{address}/cache
func (h *PortfolioHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	if err := h.service.Invalidate(r.Context(), address); err != nil {
		respondServiceError(w, h.logger, err, "Failed to invalidate wallet cache", zap.String("address", address))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// walletParams validates the {address} path parameter and chain_id query
// parameter, writing a 400 response when either is malformed
func walletParams(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	address := chi.URLParam(r, "address")
	if !isValidAddress(address) {
		respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return "", 0, false
	}

	chainID, ok := parseChainID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid chain_id")
		return "", 0, false
	}

	return strings.ToLower(address), chainID, true
}
