package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// MaxImportSize caps uploaded CSV files at 15MB
const MaxImportSize = 15 << 20

// InventoryHandler serves history queries and CSV imports
type InventoryHandler struct {
	historyService *service.HistoryService
	importService  *service.ImportService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(historyService *service.HistoryService, importService *service.ImportService) *InventoryHandler {
	return &InventoryHandler{
		historyService: historyService,
		importService:  importService,
	}
}

// History handles GET /api/inventory/history
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	query, err := parseHistoryQuery(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	page, err := h.historyService.Query(r.Context(), query)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, page)
}

// Import handles POST /api/inventory/import
func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImportSize)

	if err := r.ParseMultipartForm(MaxImportSize); err != nil {
		httputil.Error(w, errors.BadRequest("file too large or malformed multipart body"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.Error(w, errors.BadRequest("missing file field"))
		return
	}
	defer file.Close()

	result, err := h.importService.Import(r.Context(), file)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

func parseHistoryQuery(r *http.Request) (service.HistoryQuery, error) {
	q := service.HistoryQuery{
		Zone:   r.URL.Query().Get("zone"),
		Status: r.URL.Query().Get("status"),
	}

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, errors.BadRequest("from must be an RFC3339 timestamp")
		}
		q.From = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, errors.BadRequest("to must be an RFC3339 timestamp")
		}
		q.To = &t
	}
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.BadRequest("page must be a positive integer")
		}
		q.Page = n
	}
	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, errors.BadRequest("pageSize must be a positive integer")
		}
		q.PageSize = n
	}

	return q, nil
}
