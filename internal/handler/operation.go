package handler

import (
	"errors"
	"net/http"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/service"
)

// OperationHandler handles HTTP requests for buy/sell operations.
type OperationHandler struct {
	tradeSvc *service.TradeService
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(tradeSvc *service.TradeService) *OperationHandler {
	return &OperationHandler{tradeSvc: tradeSvc}
}

// operationRequest is the JSON request body for POST /operations.
type operationRequest struct {
	Type   string `json:"type"`
	Login  string `json:"login"`
	Index  string `json:"index"`
	Amount int64  `json:"amount"`
}

// operationResponse is the JSON response for POST /operations. User and
// stock carry the post-operation snapshots.
type operationResponse struct {
	OperationID string        `json:"operation_id"`
	Type        string        `json:"type"`
	Amount      int64         `json:"amount"`
	User        userResponse  `json:"user"`
	Stock       stockResponse `json:"stock"`
	Timestamp   string        `json:"timestamp"`
}

// Perform handles POST /operations.
func (h *OperationHandler) Perform(w http.ResponseWriter, r *http.Request) {
	var req operationRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.tradeSvc.Perform(r.Context(), domain.Operation{
		Type:   domain.OperationType(req.Type),
		Login:  req.Login,
		Index:  req.Index,
		Amount: req.Amount,
	})
	if err != nil {
		mapOperationError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, operationResponse{
		OperationID: result.OperationID,
		Type:        string(result.Type),
		Amount:      result.Amount,
		User:        toUserResponse(result.User),
		Stock:       toStockResponse(result.Stock),
		Timestamp:   result.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// mapOperationError maps domain errors to HTTP responses for the
// operation endpoint.
func mapOperationError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrStockNotFound):
		WriteError(w, http.StatusNotFound, "stock_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
