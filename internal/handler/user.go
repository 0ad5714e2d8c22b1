package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aserdiukov/stockledger/internal/domain"
	"github.com/aserdiukov/stockledger/internal/service"
)

// UserHandler handles HTTP requests for user endpoints.
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// registerUserRequest is the JSON request body for POST /users.
type registerUserRequest struct {
	Login string `json:"login"`
	Name  string `json:"name"`
}

// topUpRequest is the JSON request body for POST /users/{login}/balance.
type topUpRequest struct {
	Amount int64 `json:"amount"`
}

// userResponse is the JSON shape of a user.
type userResponse struct {
	Login     string           `json:"login"`
	Name      string           `json:"name"`
	Balance   int64            `json:"balance"`
	Portfolio map[string]int64 `json:"portfolio"`
	CreatedAt string           `json:"created_at"`
}

// netWorthResponse is the JSON response for GET /users/{login}/net-worth.
type netWorthResponse struct {
	Login    string `json:"login"`
	NetWorth int64  `json:"net_worth"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		Login:     u.Login,
		Name:      u.Name,
		Balance:   u.Balance,
		Portfolio: u.Portfolio,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.userSvc.Register(r.Context(), req.Login, req.Name)
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// Get handles GET /users/{login}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")

	user, err := h.userSvc.Get(r.Context(), login)
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// TopUp handles POST /users/{login}/balance.
func (h *UserHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")

	var req topUpRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.userSvc.TopUp(r.Context(), login, req.Amount)
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// NetWorth handles GET /users/{login}/net-worth.
func (h *UserHandler) NetWorth(w http.ResponseWriter, r *http.Request) {
	login := chi.URLParam(r, "login")

	total, err := h.userSvc.TotalNetWorth(r.Context(), login)
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, netWorthResponse{
		Login:    login,
		NetWorth: total,
	})
}

// mapUserError maps domain errors to HTTP responses for user endpoints.
func mapUserError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, "user_already_exists", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrStockNotFound):
		WriteError(w, http.StatusNotFound, "stock_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
