package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// ExportHandler serves Excel exports of selected history rows
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Excel handles GET /api/export/excel?ids=1,2,3
func (h *ExportHandler) Excel(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		httputil.Error(w, errors.BadRequest("ids query parameter is required"))
		return
	}

	file, err := h.exportService.Export(r.Context(), strings.Split(raw, ","))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Content)
}
