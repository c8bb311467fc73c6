package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-dashboard/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DataResponse wraps a payload that has no dedicated response type
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error onto an HTTP status. Server side
// failures are logged; fallback is the message used for unclassified errors.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string, fields ...zap.Field) {
	status, message := http.StatusInternalServerError, fallback

	switch {
	case errors.Is(err, domain.ErrInvalidAddress), errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrMissingCredential):
		status, message = http.StatusServiceUnavailable, "Data provider is not configured"
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, "Data provider rate limit exceeded, try again later"
	case errors.Is(err, domain.ErrUpstreamStatus), errors.Is(err, domain.ErrMalformedPayload):
		status, message = http.StatusBadGateway, "Data provider request failed"
	}

	logger.Error(fallback, append(fields, zap.Error(err), zap.Int("status", status))...)
	respondError(w, status, message)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

// isValidAddress accepts 0x-prefixed 20 byte hex addresses
func isValidAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
}

// parseChainID reads the chain_id query parameter. Absent means 0, which the
// services resolve to the selected chain.
func parseChainID(r *http.Request) (int64, bool) {
	v := r.URL.Query().Get("chain_id")
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
