package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

// ImportedCategory is assigned to products first seen in a CSV import
const ImportedCategory = "Imported"

// expectedHeader is the exact header row an import file must carry
var expectedHeader = []string{"product_id", "product_name", "quantity", "zone", "date", "row", "shelf"}

// RowError describes one rejected import row
type RowError struct {
	Line        int    `json:"line"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
}

// ImportResult summarises a completed import
type ImportResult struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// ImportService loads history rows from semicolon-delimited CSV files
type ImportService struct {
	db          *database.DB
	productRepo *repository.ProductRepository
	historyRepo *repository.HistoryRepository
	logger      *logger.Logger
}

// NewImportService creates a new import service
func NewImportService(
	db *database.DB,
	productRepo *repository.ProductRepository,
	historyRepo *repository.HistoryRepository,
	log *logger.Logger,
) *ImportService {
	return &ImportService{
		db:          db,
		productRepo: productRepo,
		historyRepo: historyRepo,
		logger:      log,
	}
}

// Import parses the file and appends one history row per valid line, all in
// a single transaction. Row failures are soft: they are collected in the
// result and do not abort the import.
func (s *ImportService) Import(ctx context.Context, file io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("BAD_FILE", "file could not be parsed as CSV", 400)
	}
	if !headerMatches(header) {
		return nil, errors.New("INVALID_HEADER",
			"invalid header, expected: "+strings.Join(expectedHeader, ";"), 400)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.New("BAD_FILE", "file could not be parsed as CSV", 400)
	}

	result := &ImportResult{Errors: []RowError{}}
	robotID := repository.ManualImportRobotID

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		productRepo := s.productRepo.WithTx(tx)
		historyRepo := s.historyRepo.WithTx(tx)

		for i, record := range records {
			line := i + 2 // header is line 1

			row, reason := parseImportRow(record)
			if reason != "" {
				result.Failed++
				result.Errors = append(result.Errors, RowError{
					Line:        line,
					ProductID:   field(record, 0),
					ProductName: field(record, 1),
					Reason:      reason,
				})
				continue
			}

			product := &repository.Product{
				ID:           row.productID,
				Name:         row.productName,
				Category:     strPtr(ImportedCategory),
				MinStock:     repository.DefaultMinStock,
				OptimalStock: repository.DefaultOptimalStock,
			}
			if err := productRepo.CreateIfAbsent(ctx, product); err != nil {
				return err
			}

			history := repository.InventoryHistory{
				RobotID:     &robotID,
				ProductID:   &row.productID,
				Quantity:    row.quantity,
				Zone:        row.zone,
				RowNumber:   row.rowNumber,
				ShelfNumber: row.shelfNumber,
				Status:      StatusForQuantity(row.quantity),
				ScannedAt:   row.date,
			}
			if err := historyRepo.Insert(ctx, &history); err != nil {
				return err
			}

			result.Success++
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "IMPORT_FAILED", "failed to import file", 500)
	}

	s.logger.Info().
		Int("success", result.Success).
		Int("failed", result.Failed).
		Msg("csv import completed")

	return result, nil
}

// StatusForQuantity derives a stock status tag from a quantity
func StatusForQuantity(quantity int) string {
	switch {
	case quantity == 0:
		return repository.StatusCritical
	case quantity < 10:
		return repository.StatusLowStock
	default:
		return repository.StatusOK
	}
}

type importRow struct {
	productID   string
	productName string
	quantity    int
	zone        string
	date        time.Time
	rowNumber   *int
	shelfNumber *int
}

// parseImportRow validates one CSV record; a non-empty reason marks it failed
func parseImportRow(record []string) (importRow, string) {
	var row importRow

	if len(record) < 5 {
		return row, fmt.Sprintf("expected at least 5 fields, got %d", len(record))
	}

	row.productID = strings.TrimSpace(record[0])
	row.productName = strings.TrimSpace(record[1])
	row.zone = strings.TrimSpace(record[3])

	if row.productID == "" {
		return row, "product_id is required"
	}
	if row.productName == "" {
		return row, "product_name is required"
	}
	if row.zone == "" {
		return row, "zone is required"
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil || quantity < 0 {
		return row, "quantity must be a non-negative integer"
	}
	row.quantity = quantity

	date, err := parseImportDate(strings.TrimSpace(record[4]))
	if err != nil {
		return row, "date must be yyyy-MM-dd or yyyy-MM-dd HH:mm:ss"
	}
	row.date = date

	if v := strings.TrimSpace(field(record, 5)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return row, "row must be an integer"
		}
		row.rowNumber = &n
	}
	if v := strings.TrimSpace(field(record, 6)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return row, "shelf must be an integer"
		}
		row.shelfNumber = &n
	}

	return row, ""
}

func parseImportDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %s", value)
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func headerMatches(header []string) bool {
	if len(header) != len(expectedHeader) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), expectedHeader[i]) {
			return false
		}
	}
	return true
}
