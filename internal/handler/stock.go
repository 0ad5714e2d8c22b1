package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/service"
)

// StockHandler handles HTTP requests for stock catalog endpoints.
type StockHandler struct {
	stockSvc *service.StockService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockSvc *service.StockService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc}
}

// createStockRequest is the JSON request body for POST /stocks.
type createStockRequest struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// updatePriceRequest is the JSON request body for PUT /stocks/{index}/price.
type updatePriceRequest struct {
	Price int64 `json:"price"`
}

// increaseSupplyRequest is the JSON request body for POST /stocks/{index}/supply.
type increaseSupplyRequest struct {
	Amount int64 `json:"amount"`
}

// stockResponse is the JSON shape of a stock.
type stockResponse struct {
	Index           string `json:"index"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	AvailableAmount int64  `json:"available_amount"`
	CreatedAt       string `json:"created_at"`
}

func toStockResponse(s *domain.Stock) stockResponse {
	return stockResponse{
		Index:           s.Index,
		Name:            s.Name,
		Price:           s.Price,
		AvailableAmount: s.Available,
		CreatedAt:       s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Create handles POST /stocks.
func (h *StockHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createStockRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stock, err := h.stockSvc.Create(r.Context(), req.Index, req.Name, req.Price)
	if err != nil {
		mapStockError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toStockResponse(stock))
}

// Get handles GET /stocks/{index}.
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	stock, err := h.stockSvc.Get(r.Context(), index)
	if err != nil {
		mapStockError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toStockResponse(stock))
}

// UpdatePrice handles PUT /stocks/{index}/price.
func (h *StockHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	var req updatePriceRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stock, err := h.stockSvc.UpdatePrice(r.Context(), index, req.Price)
	if err != nil {
		mapStockError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toStockResponse(stock))
}

// IncreaseSupply handles POST /stocks/{index}/supply.
func (h *StockHandler) IncreaseSupply(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")

	var req increaseSupplyRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stock, err := h.stockSvc.IncreaseAmount(r.Context(), index, req.Amount)
	if err != nil {
		mapStockError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toStockResponse(stock))
}

// mapStockError maps domain errors to HTTP responses for stock endpoints.
func mapStockError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrStockAlreadyExists):
		WriteError(w, http.StatusConflict, "stock_already_exists", err.Error())
	case errors.Is(err, domain.ErrStockNotFound):
		WriteError(w, http.StatusNotFound, "stock_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
