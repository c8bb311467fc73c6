package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/application/services"
)

// TransactionHandler handles HTTP requests for wallet transaction history
type TransactionHandler struct {
	service *services.TransactionService
	logger  *zap.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *services.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the transaction routes
func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/wallets/{address}/transactions", h.GetTransactions)
}

// GetTransactions handles GET /api/v1/wallets/{address}/transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	address, chainID, ok := walletParams(w, r)
	if !ok {
		return
	}

	// Out of range values are clamped by the service
	pageSize := 0
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid page_size")
			return
		}
		pageSize = n
	}

	response, err := h.service.GetTransactions(r.Context(), address, chainID, pageSize)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get transactions", zap.String("address", address))
		return
	}

	respondJSON(w, http.StatusOK, response)
}
