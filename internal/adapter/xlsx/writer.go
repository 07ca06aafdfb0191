// Package xlsx exports baked snapshots as a spreadsheet workbook.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// Sheet names.
const (
	SheetAggregates  = "Aggregates"
	SheetEnergy      = "Energy"
	SheetWater       = "Water"
	SheetDataCenters = "DataCenters"
)

// Writer saves one workbook per batch. It implements pipeline.SnapshotLoader.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer that saves to path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "xlsx" }

// LoadBatch writes the yearly aggregates, the consumption series of the
// latest snapshot, and the data centers visible in it.
func (w *Writer) LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // nothing to flush after SaveAs

	if err := buildWorkbook(f, snapshots); err != nil {
		return err
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	w.logger.Info("workbook written", "path", w.path, "years", len(snapshots))
	return nil
}

func buildWorkbook(f *excelize.File, snapshots []domain.Snapshot) error {
	if err := f.SetSheetName("Sheet1", SheetAggregates); err != nil {
		return err
	}
	for _, name := range []string{SheetEnergy, SheetWater, SheetDataCenters} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	aggHeader := []any{"Year", "Count"}
	for _, m := range domain.Metrics {
		aggHeader = append(aggHeader, "Cumulative "+string(m))
	}
	for _, m := range domain.Metrics {
		aggHeader = append(aggHeader, "Mean "+string(m))
	}
	rows := make([][]any, 0, len(snapshots))
	for _, s := range snapshots {
		row := []any{s.Year, s.Aggregate.Count}
		for _, m := range domain.Metrics {
			row = append(row, s.Aggregate.Cumulative[m])
		}
		for _, m := range domain.Metrics {
			row = append(row, s.Aggregate.Mean[m])
		}
		rows = append(rows, row)
	}
	if err := writeTable(f, SheetAggregates, header, aggHeader, rows); err != nil {
		return err
	}

	latest := snapshots[len(snapshots)-1]
	for sheet, chart := range map[string]domain.Chart{SheetEnergy: latest.Energy, SheetWater: latest.Water} {
		rows := make([][]any, 0, len(chart.Points))
		for _, p := range chart.Points {
			rows = append(rows, []any{p.Year, p.DC, p.People, p.PerCapita, p.Total()})
		}
		cols := []any{"Year", "Data centers", "Residents", "Per capita", "Total"}
		if err := writeTable(f, sheet, header, cols, rows); err != nil {
			return err
		}
	}

	dcHeader := []any{"ID", "Name", "Year operational", "Category", "Lat", "Lng"}
	for _, m := range domain.Metrics {
		dcHeader = append(dcHeader, string(m))
	}
	rows = rows[:0]
	for _, m := range latest.Markers {
		row := []any{m.ID, m.Name, m.YearOperational, string(m.Category), m.Location.Lat, m.Location.Lng}
		for _, metric := range domain.Metrics {
			row = append(row, m.Values[metric])
		}
		rows = append(rows, row)
	}
	return writeTable(f, SheetDataCenters, header, dcHeader, rows)
}

func writeTable(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
