package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jask/tallis/internal/database/repository"
)

// LedgerFetcher is the read side ExportService needs.
type LedgerFetcher interface {
	FetchLedger(ctx context.Context, f repository.Filter) ([]repository.LedgerRow, error)
}

// ExportService writes the canonical ledger view to spreadsheets.
type ExportService struct {
	Ledger LedgerFetcher
}

const exportSheet = "Ledger"

var exportHeaders = []string{"Date", "Description", "Fund", "Account", "Amount", "Balance", "Transaction", "Split"}

// FileName is the export file name for a filter on day.
func FileName(f repository.Filter, day time.Time) string {
	return fmt.Sprintf("ledger-%s-%d-%s.xlsx", f.Kind, f.ID, day.Format("20060102"))
}

// WriteXLSX writes one sheet with a header row and one row per ledger row.
// Amounts and balances are numeric cells. It returns the number of data rows.
func (s *ExportService) WriteXLSX(ctx context.Context, f repository.Filter, w io.Writer) (int, error) {
	rows, err := s.Ledger.FetchLedger(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("fetch ledger %s: %w", f, err)
	}

	x := excelize.NewFile()
	defer x.Close()
	index, err := x.NewSheet(exportSheet)
	if err != nil {
		return 0, fmt.Errorf("new sheet: %w", err)
	}
	x.SetActiveSheet(index)
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return 0, fmt.Errorf("drop default sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := x.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return 0, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		values := []interface{}{
			r.UserDate,
			r.Description,
			fmt.Sprintf("%d - %s", r.FundID, r.FundName),
			fmt.Sprintf("%d - %s", r.AccountID, r.AccountName),
			r.Amount.InexactFloat64(),
			r.Balance.InexactFloat64(),
			r.TransactionID,
			r.SplitID,
		}
		if err := x.SetSheetRow(exportSheet, cell, &values); err != nil {
			return 0, err
		}
	}

	_ = x.SetColWidth(exportSheet, "A", "A", 12)
	_ = x.SetColWidth(exportSheet, "B", "B", 30)
	_ = x.SetColWidth(exportSheet, "C", "D", 20)
	_ = x.SetColWidth(exportSheet, "E", "F", 12)

	if err := x.Write(w); err != nil {
		return 0, fmt.Errorf("write xlsx: %w", err)
	}
	return len(rows), nil
}

// ExportFile writes the view to dir/FileName(f, now) and returns the path.
func (s *ExportService) ExportFile(ctx context.Context, f repository.Filter, dir string, now time.Time) (string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("mkdir export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(f, now))
	out, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	n, err := s.WriteXLSX(ctx, f, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}
	return path, n, nil
}
