// Package api provides the HTTP handlers for the dashboard REST API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"scctower/internal/domain"
	"scctower/internal/service"
	"scctower/internal/task"
)

// Handler bundles the services behind the REST surface.
type Handler struct {
	dashboards *service.DashboardService
	chat       *task.Runner // nil when no chat model is configured
	users      domain.UserDirectory
	version    string
	logger     *slog.Logger
}

// NewHandler creates the API handler. chat may be nil, in which case the
// chat routes answer 503.
func NewHandler(dashboards *service.DashboardService, chat *task.Runner, users domain.UserDirectory, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		dashboards: dashboards,
		chat:       chat,
		users:      users,
		version:    version,
		logger:     logger,
	}
}

// Routes returns the API router; the server mounts it under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/version", h.getVersion)
	r.Get("/current-user", h.getCurrentUser)

	r.Get("/dashboard/executive", h.getExecutiveDashboard)
	r.Get("/dc-inventory", h.listDCInventory)
	r.Get("/incoming-supply", h.listIncomingSupply)
	r.Get("/shipping-schedule", h.listShippingSchedule)
	r.Get("/supplier-orders", h.listSupplierOrders)
	r.Get("/stockout-risk", h.listStockoutRisk)
	r.Get("/storage-locations", h.listStorageLocations)
	r.Get("/customer-locations", h.listCustomerLocations)

	r.Post("/chat/start", h.startChat)
	r.Get("/chat/poll/{taskID}", h.pollChat)

	return r
}

// Health reports process liveness and uptime. It lives at the root, outside
// /api, so probes bypass the API middleware stack.
func Health(start time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": int(time.Since(start).Seconds()),
		})
	}
}

func (h *Handler) getVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *Handler) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	token := domain.UserTokenFromContext(r.Context())
	if token == "" {
		writeError(w, domain.ErrUnauthorized("no forwarded access token on request"))
		return
	}
	user, err := h.users.CurrentUser(r.Context(), token)
	if err != nil {
		h.logger.Error("current user lookup failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) getExecutiveDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.dashboards.ExecutiveDashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *Handler) listDCInventory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.DCInventory(r.Context(), r.URL.Query().Get("dc_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listIncomingSupply(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.IncomingSupply(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listShippingSchedule(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.ShippingSchedule(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listSupplierOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.SupplierOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listStockoutRisk(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.StockoutRisk(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listStorageLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.StorageLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) listCustomerLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboards.CustomerLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// chatTaskResponse is the wire shape shared by both chat endpoints. The
// answer text travels as "response"; the frontend poll loop keys on it.
type chatTaskResponse struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	Response string `json:"response"`
}

func (h *Handler) startChat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeError(w, domain.ErrUnavailable("chat is not configured on this deployment"))
		return
	}

	var req struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("invalid request body"))
		return
	}

	id, err := h.chat.Submit(r.Context(), req.Messages)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatTaskResponse{
		TaskID: id,
		Status: string(domain.TaskStatusPending),
	})
}

// pollChat always answers 200: an unknown or reclaimed task id comes back as
// an error-status task, not an HTTP failure.
func (h *Handler) pollChat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeError(w, domain.ErrUnavailable("chat is not configured on this deployment"))
		return
	}

	t := h.chat.Poll(chi.URLParam(r, "taskID"))
	writeJSON(w, http.StatusOK, chatTaskResponse{
		TaskID:   t.ID,
		Status:   string(t.Status),
		Response: t.Result,
	})
}
