// internal/reports/implementation.go
package reports

import (
	"context"
	"fmt"
	"path/filepath"

	"techlab/internal/flatfile"
	"techlab/internal/loans"
)

// exportFields is the fixed column order of a monthly report: the loan table
// minus the raw dates, keeping the derived month/year partition.
var exportFields = []string{
	"prestamo_id", "equipo_id", "nombre_equipo", "usuario_prestatario",
	"tipo_usuario", "dias_autorizados", "dias_reales_usados", "retraso",
	"estado", "mes", "anio",
}

// service is a read-only projection over the loan table's storage shape. It
// reads prestamos.csv directly rather than going through the ledger, so a
// report never blocks on or interleaves with ledger mutations.
type service struct {
	loanTable *flatfile.Table
	outDir    string
}

// NewService creates a report exporter reading the given loan table and
// writing report files into outDir.
func NewService(loanTable *flatfile.Table, outDir string) Service {
	return &service{loanTable: loanTable, outDir: outDir}
}

func (s *service) ExportMonthly(ctx context.Context, year string, month int) (*Export, error) {
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	paddedMonth := fmt.Sprintf("%02d", month)

	records, err := s.loanTable.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load loans: %w", err)
	}

	var matched []flatfile.Record
	for _, rec := range records {
		if rec["estado"] == loans.StatusReturned && rec["anio"] == year && rec["mes"] == paddedMonth {
			matched = append(matched, rec)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNoMatchingRecords
	}

	filename := fmt.Sprintf("reporte_prestamos_%s_%s.csv", year, paddedMonth)
	out := flatfile.NewTable(filepath.Join(s.outDir, filename), exportFields)
	if err := out.WriteAll(matched); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return &Export{Filename: filename, Records: len(matched)}, nil
}
