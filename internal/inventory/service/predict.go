package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/config"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

// DefaultPredictionPeriodDays is used when the request does not set one
const DefaultPredictionPeriodDays = 7

// PredictRequest is forwarded to the AI service
type PredictRequest struct {
	PeriodDays int      `json:"period_days"`
	Categories []string `json:"categories"`
}

// PredictedStockout is one forecast entry in the AI response
type PredictedStockout struct {
	ProductID         string    `json:"product_id"`
	PredictionDate    time.Time `json:"prediction_date"`
	DaysUntilStockout int       `json:"days_until_stockout"`
	RecommendedOrder  int       `json:"recommended_order"`
	ConfidenceScore   float64   `json:"confidence_score"`
}

// PredictResponse is the AI service payload, returned to the caller verbatim
type PredictResponse struct {
	Predictions []PredictedStockout `json:"predictions"`
	Confidence  float64             `json:"confidence"`
}

// PredictService proxies stockout forecasts from the AI service and stores them
type PredictService struct {
	client         *http.Client
	baseURL        string
	predictionRepo *repository.PredictionRepository
	logger         *logger.Logger
}

// NewPredictService creates a new prediction gateway
func NewPredictService(cfg config.AIConfig, predictionRepo *repository.PredictionRepository, log *logger.Logger) *PredictService {
	return &PredictService{
		client:         &http.Client{Timeout: cfg.Timeout},
		baseURL:        cfg.BaseURL,
		predictionRepo: predictionRepo,
		logger:         log,
	}
}

// Predict forwards the request to the AI service, persists the returned
// predictions and hands the payload back unchanged. AI failures are not
// retried; the caller sees a plain upstream error.
func (s *PredictService) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	if req.PeriodDays <= 0 {
		req.PeriodDays = DefaultPredictionPeriodDays
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "AI_ERROR", "failed to encode prediction request", 500)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "AI_ERROR", "failed to build prediction request", 500)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "AI_UNAVAILABLE", "AI service unreachable", 500)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("AI_ERROR",
			fmt.Sprintf("AI service returned status %d", resp.StatusCode), 500)
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "AI_ERROR", "failed to decode AI response", 500)
	}

	if len(result.Predictions) > 0 {
		preds := make([]repository.Prediction, 0, len(result.Predictions))
		for _, p := range result.Predictions {
			preds = append(preds, repository.Prediction{
				ProductID:         p.ProductID,
				PredictionDate:    p.PredictionDate,
				DaysUntilStockout: p.DaysUntilStockout,
				RecommendedOrder:  p.RecommendedOrder,
				ConfidenceScore:   p.ConfidenceScore,
			})
		}
		if err := s.predictionRepo.InsertBatch(ctx, preds); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Int("predictions", len(result.Predictions)).
		Int("period_days", req.PeriodDays).
		Msg("stockout predictions received")

	return &result, nil
}
