package handler

import (
	"net/http"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// RobotHandler receives patrol reports from warehouse robots
type RobotHandler struct {
	ingestService *service.IngestService
}

// NewRobotHandler creates a new robot handler
func NewRobotHandler(ingestService *service.IngestService) *RobotHandler {
	return &RobotHandler{ingestService: ingestService}
}

// SubmitReport handles POST /api/robots/data
func (h *RobotHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var report service.RobotReport
	if err := httputil.DecodeJSON(r, &report); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&report); err != nil {
		httputil.Error(w, err)
		return
	}

	ack, err := h.ingestService.ProcessReport(r.Context(), &report)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ack)
}
