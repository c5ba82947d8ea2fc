package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
	"scanimals-checkout/internal/service"
)

// DashboardReader exposes the latest classified checkout view
type DashboardReader interface {
	View() domain.DashboardView
}

// Handler serves the checkout dashboard API
type Handler struct {
	dashboard DashboardReader
	reports   service.ReportService
	inventory service.InventoryService
}

func NewHandler(dashboard DashboardReader, reports service.ReportService, inventory service.InventoryService) *Handler {
	return &Handler{
		dashboard: dashboard,
		reports:   reports,
		inventory: inventory,
	}
}

type overrideRequest struct {
	Override string `json:"override"`
}

type sendReportRequest struct {
	Email  string `json:"email"`
	Period string `json:"period"`
}

// ListInventory handles GET /api/reports
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.ListInventory(r.Context())
	if err != nil {
		logger.Error("Failed to list inventory", "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, dataResponse{Data: items})
}

// Checkouts handles GET /api/checkouts
func (h *Handler) Checkouts(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.dashboard.View())
}

// OverdueCheckouts handles GET /api/checkouts/overdue
func (h *Handler) OverdueCheckouts(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, dataResponse{Data: h.dashboard.View().Overdue})
}

// CheckIn handles DELETE /api/checkouts/{id}
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.inventory.CheckIn(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetOverride handles POST /api/checkouts/{id}/override
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req overrideRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.inventory.SetOverride(r.Context(), id, req.Override); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /api/report?period=
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	period := domain.ParseReportPeriod(r.URL.Query().Get("period"))
	if period == "" {
		period = domain.PeriodDaily
	}

	result, err := h.reports.GetReport(r.Context(), period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

// ItemSummary handles GET /api/report/items
func (h *Handler) ItemSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.GetItemSummary(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}

// SendReport handles POST /api/report/email
func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	var req sendReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	period := domain.ParseReportPeriod(req.Period)
	if period == "" {
		period = domain.PeriodDaily
	}

	dispatch, err := h.reports.SendReport(r.Context(), req.Email, period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, dispatch)
}

// Dispatches handles GET /api/report/dispatches?limit=
func (h *Handler) Dispatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	dispatches, err := h.reports.ListDispatches(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, dataResponse{Data: dispatches})
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	view := h.dashboard.View()
	jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"loading": view.Loading,
	})
}

// writeServiceError maps service sentinels to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		jsonError(w, http.StatusNotFound, "checkout not found")
	case errors.Is(err, service.ErrInvalidOverride),
		errors.Is(err, service.ErrInvalidRecipient):
		jsonError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRateLimited):
		jsonError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrEmailDelivery):
		jsonError(w, http.StatusBadGateway, "Failed to send report. Please try again.")
	default:
		logger.Error("Request failed", "error", err)
		jsonError(w, http.StatusInternalServerError, err.Error())
	}
}

// RegisterRoutes registers the dashboard endpoints
func RegisterRoutes(router *mux.Router, h *Handler) {
	router.Use(loggingMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reports", h.ListInventory).Methods("GET")
	api.HandleFunc("/checkouts", h.Checkouts).Methods("GET")
	api.HandleFunc("/checkouts/overdue", h.OverdueCheckouts).Methods("GET")
	api.HandleFunc("/checkouts/{id}", h.CheckIn).Methods("DELETE")
	api.HandleFunc("/checkouts/{id}/override", h.SetOverride).Methods("POST")
	api.HandleFunc("/report", h.Report).Methods("GET")
	api.HandleFunc("/report/items", h.ItemSummary).Methods("GET")
	api.HandleFunc("/report/email", h.SendReport).Methods("POST")
	api.HandleFunc("/report/dispatches", h.Dispatches).Methods("GET")

	router.HandleFunc("/healthz", h.Health).Methods("GET")
}
