package service

import (
	"context"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

// History paging defaults
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	DefaultWindow   = 24 * time.Hour
)

// HistoryQuery holds the parsed query parameters of a history request
type HistoryQuery struct {
	From     *time.Time
	To       *time.Time
	Zone     string
	Status   string
	Page     int
	PageSize int
}

// HistoryPage is one page of history rows with pagination metadata
type HistoryPage struct {
	Items      []repository.HistoryRow `json:"items"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int64                   `json:"total_pages"`
}

// HistoryService answers filtered history queries
type HistoryService struct {
	historyRepo *repository.HistoryRepository
	logger      *logger.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(historyRepo *repository.HistoryRepository, log *logger.Logger) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		logger:      log,
	}
}

// Query returns one page of scans matching the query. An unset window
// defaults to the trailing 24 hours; zone and status filters match
// case-insensitively.
func (s *HistoryService) Query(ctx context.Context, q HistoryQuery) (*HistoryPage, error) {
	now := time.Now().UTC()

	to := now
	if q.To != nil {
		to = *q.To
	}
	from := to.Add(-DefaultWindow)
	if q.From != nil {
		from = *q.From
	}

	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	rows, total, err := s.historyRepo.Query(ctx, repository.HistoryFilter{
		From:     from,
		To:       to,
		Zone:     q.Zone,
		Status:   q.Status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}

	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &HistoryPage{
		Items:      rows,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
