package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/pkg/errors"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "InventoryExport"

const exportTimeLayout = "2006-01-02 15:04"

var exportHeaders = []string{
	"ID", "Robot ID", "Product ID", "Product Name", "Quantity",
	"Zone", "Row Number", "Shelf Number", "Status", "Scanned At", "Created At",
}

// ExportFile is a rendered spreadsheet ready to be sent as an attachment
type ExportFile struct {
	Filename string
	Content  []byte
}

// ExportService renders selected history rows as an Excel workbook
type ExportService struct {
	historyRepo *repository.HistoryRepository
	logger      *logger.Logger
}

// NewExportService creates a new export service
func NewExportService(historyRepo *repository.HistoryRepository, log *logger.Logger) *ExportService {
	return &ExportService{
		historyRepo: historyRepo,
		logger:      log,
	}
}

// Export builds a workbook for the given raw id tokens. Tokens that are not
// numeric are silently dropped; no valid token at all is a client error, and
// valid ids that match no rows yield not-found.
func (s *ExportService) Export(ctx context.Context, rawIDs []string) (*ExportFile, error) {
	ids := make([]int64, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.BadRequest("no valid record ids provided")
	}

	rows, err := s.historyRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("no records found for the given ids")
	}

	content, err := renderWorkbook(rows)
	if err != nil {
		return nil, errors.Wrap(err, "EXPORT_FAILED", "failed to render workbook", 500)
	}

	s.logger.Info().Int("rows", len(rows)).Msg("excel export generated")

	return &ExportFile{
		Filename: fmt.Sprintf("inventory_export_%s.xlsx", time.Now().UTC().Format("20060102_1504")),
		Content:  content,
	}, nil
}

func renderWorkbook(rows []repository.HistoryRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	widths := make([]int, len(exportHeaders))
	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
		widths[col] = len(header)
	}

	for i, row := range rows {
		values := []interface{}{
			row.ID,
			deref(row.RobotID),
			deref(row.ProductID),
			row.ProductName,
			row.Quantity,
			row.Zone,
			derefInt(row.RowNumber),
			derefInt(row.ShelfNumber),
			row.Status,
			row.ScannedAt.Format(exportTimeLayout),
			row.CreatedAt.Format(exportTimeLayout),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
			if n := len(fmt.Sprint(value)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(exportSheetName, name, name, float64(width)+2); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
