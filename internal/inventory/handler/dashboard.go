package handler

import (
	"net/http"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// DashboardHandler serves dashboard snapshots and manual alerts
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Current handles GET /api/dashboard/current
func (h *DashboardHandler) Current(w http.ResponseWriter, r *http.Request) {
	state, err := h.dashboardService.CurrentState(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, state)
}

// Alert handles POST /api/dashboard/alert
func (h *DashboardHandler) Alert(w http.ResponseWriter, r *http.Request) {
	var req service.AlertRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	h.dashboardService.SendAlert(r.Context(), &req)

	httputil.JSON(w, http.StatusOK, map[string]string{"status": "alert_sent"})
}
