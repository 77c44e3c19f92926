package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/clothshop/backend/internal/domain/inventory"
	"github.com/clothshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XLSXContentType is the media type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	stockSheet     = "Stock"
	movementsSheet = "Movements"
)

// ObjectStore keeps exported files and hands out download links
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// Export is a generated workbook. Either URL or Data is set.
type Export struct {
	FileName  string    `json:"file_name"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Data      []byte    `json:"-"`
}

// Uploaded reports whether the workbook went to object storage
func (e *Export) Uploaded() bool {
	return e.URL != ""
}

var stockHeader = []any{"Variety", "Unit", "Current Stock", "Min Stock Level", "Low Stock", "Default Cost Price", "Updated At"}

var movementHeader = []any{"Sequence", "Date", "Type", "Quantity", "Stock After", "Reference", "Notes"}

// ExportStockReport writes every variety to the Stock sheet and, when
// varietyID is set, its full movement log to the Movements sheet
func (s *Service) ExportStockReport(ctx context.Context, tenantID uuid.UUID, varietyID *uuid.UUID) (*Export, error) {
	varieties, err := s.allVarieties(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	var movements []inventory.Movement
	if varietyID != nil {
		if _, err := s.reads.VarietyRepo().FindByID(ctx, tenantID, *varietyID); err != nil {
			return nil, err
		}
		movements, err = s.reads.MovementRepo().FindAllByVariety(ctx, tenantID, *varietyID)
		if err != nil {
			return nil, err
		}
	}

	data, err := buildWorkbook(varieties, movements)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := &Export{FileName: fmt.Sprintf("stock-%s.xlsx", now.Format("20060102-150405"))}
	if s.store == nil {
		out.Data = data
		return out, nil
	}

	key := fmt.Sprintf("reports/%s/%s", tenantID, out.FileName)
	if err := s.store.Upload(ctx, key, data, XLSXContentType); err != nil {
		return nil, fmt.Errorf("upload stock report: %w", err)
	}
	url, expiresAt, err := s.store.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		return nil, fmt.Errorf("presign stock report: %w", err)
	}
	s.logger.Info("Stock report exported",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", key),
		zap.Int("varieties", len(varieties)),
		zap.Int("movements", len(movements)))
	out.URL = url
	out.ExpiresAt = expiresAt
	return out, nil
}

func buildWorkbook(varieties []inventory.Variety, movements []inventory.Movement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet becomes Stock
	if err := f.SetSheetName(f.GetSheetName(0), stockSheet); err != nil {
		return nil, fmt.Errorf("create stock sheet: %w", err)
	}
	if err := writeRow(f, stockSheet, 1, stockHeader); err != nil {
		return nil, err
	}
	for i := range varieties {
		v := &varieties[i]
		minLevel := ""
		if v.MinStockLevel != nil {
			minLevel = v.MinStockLevel.String()
		}
		cost := ""
		if v.DefaultCostPrice != nil {
			cost = v.DefaultCostPrice.String()
		}
		row := []any{
			v.Name,
			string(v.Unit),
			v.CurrentStock.InexactFloat64(),
			minLevel,
			yesNo(v.IsLowStock()),
			cost,
			v.UpdatedAt.Format(time.RFC3339),
		}
		if err := writeRow(f, stockSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(movementsSheet); err != nil {
		return nil, fmt.Errorf("create movements sheet: %w", err)
	}
	if err := writeRow(f, movementsSheet, 1, movementHeader); err != nil {
		return nil, err
	}
	for i := range movements {
		mv := &movements[i]
		ref := string(mv.ReferenceType)
		if mv.ReferenceID != nil {
			ref += ":" + mv.ReferenceID.String()
		}
		row := []any{
			mv.Sequence,
			mv.MovementDate.Format(time.DateOnly),
			string(mv.Type),
			mv.Quantity.InexactFloat64(),
			mv.StockAfter.InexactFloat64(),
			ref,
			mv.Notes,
		}
		if err := writeRow(f, movementsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (s *Service) allVarieties(ctx context.Context, tenantID uuid.UUID) ([]inventory.Variety, error) {
	filter := inventory.VarietyFilter{Filter: shared.Filter{Page: 1, PageSize: 200, OrderBy: "name", OrderDir: "asc"}}
	var all []inventory.Variety
	for {
		page, total, err := s.reads.VarietyRepo().FindAll(ctx, tenantID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || int64(len(all)) >= total {
			return all, nil
		}
		filter.Page++
	}
}
