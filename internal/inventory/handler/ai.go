package handler

import (
	"net/http"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
)

// AIHandler proxies stockout prediction requests to the AI service
type AIHandler struct {
	predictService *service.PredictService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(predictService *service.PredictService) *AIHandler {
	return &AIHandler{predictService: predictService}
}

// Predict handles POST /api/ai/predict
func (h *AIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req service.PredictRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	resp, err := h.predictService.Predict(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}
