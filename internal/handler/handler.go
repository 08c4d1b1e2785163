package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkraev/finflow/internal/forecast"
	"github.com/mkraev/finflow/internal/service"
)

const dateLayout = "2006-01-02"

// defaultForecastDays is the range used when the forecast request
// omits start/end.
const defaultForecastDays = 30

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateWorkspace handles workspace creation
func (h *Handler) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "Workspace name is required", http.StatusBadRequest)
		return
	}

	ws, err := h.svc.CreateWorkspace(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, ws)
}

// CreateAccount handles account creation
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	account, err := h.svc.CreateAccount(r.Context(), workspaceID, req.Name, req.Currency)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, account)
}

type transactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	Date        string          `json:"transaction_date"`
	PlannedDate string          `json:"planned_date"`
	Description string          `json:"description"`
}

func (req *transactionRequest) toInput() (service.TransactionInput, error) {
	in := service.TransactionInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      req.Status,
		Description: req.Description,
	}
	if req.Date != "" {
		d, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			return in, err
		}
		in.Date = d
	}
	if req.PlannedDate != "" {
		d, err := time.Parse(dateLayout, req.PlannedDate)
		if err != nil {
			return in, err
		}
		in.PlannedDate = &d
	}
	return in, nil
}

// CreateTransaction handles transaction creation
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}
	accountID, err := pathID(r, "accountID")
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	t, err := h.svc.CreateTransaction(r.Context(), workspaceID, accountID, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, t)
}

// UpdateTransaction handles transaction updates
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}
	transactionID, err := pathID(r, "transactionID")
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in, err := req.toInput()
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	t, err := h.svc.UpdateTransaction(r.Context(), workspaceID, transactionID, in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, t)
}

// DeleteTransaction handles transaction deletion
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}
	transactionID, err := pathID(r, "transactionID")
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteTransaction(r.Context(), workspaceID, transactionID); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings returns workspace forecasting settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}

	settings, err := h.svc.GetSettings(r.Context(), workspaceID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settings)
}

// UpdateSettings upserts workspace forecasting settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}

	var req struct {
		MinimumSafeBalance decimal.Decimal `json:"minimum_safe_balance"`
		SafetyBufferDays   int             `json:"safety_buffer_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), workspaceID, req.MinimumSafeBalance, req.SafetyBufferDays)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, settings)
}

// GetForecast returns the balance forecast for an account
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathID(r, "workspaceID")
	if err != nil {
		http.Error(w, "Invalid workspace ID", http.StatusBadRequest)
		return
	}
	accountID, err := pathID(r, "accountID")
	if err != nil {
		http.Error(w, "Invalid account ID", http.StatusBadRequest)
		return
	}

	opts, err := forecastOptions(r)
	if err != nil {
		http.Error(w, "Invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, err := h.svc.GetForecast(r.Context(), workspaceID, accountID, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func forecastOptions(r *http.Request) (forecast.Options, error) {
	today := forecast.DateOnly(time.Now())
	opts := forecast.Options{
		StartDate: today,
		EndDate:   today.AddDate(0, 0, defaultForecastDays-1),
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return opts, err
		}
		opts.StartDate = d
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			return opts, err
		}
		opts.EndDate = d
	}
	return opts, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forecast.ErrInvalidRange), errors.Is(err, forecast.ErrRangeTooLarge):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, forecast.ErrSettingsNotFound), errors.Is(err, forecast.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		h.log.Errorf("Request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
