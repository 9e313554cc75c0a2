// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/MKhiriev/go-crm-sync/internal/codec"
	"github.com/MKhiriev/go-crm-sync/internal/logger"
	"github.com/MKhiriev/go-crm-sync/internal/utils"
	"github.com/MKhiriev/go-crm-sync/models"
)

const (
	defaultSheet   = "Sheet1"
	scratchSheet   = "crmsync_tmp"
	headerFill     = "4472C4"
	headerFontHex  = "FFFFFF"
	headerColWidth = 22
)

// xlsxStore is a [TabularStore] over a single .xlsx workbook. Every operation
// opens the file, works on it in memory and, for writes, replaces it
// atomically.
type xlsxStore struct {
	path string

	mu sync.Mutex

	logger *logger.Logger
}

// NewXLSXStore constructs a [TabularStore] for the workbook at path. The file
// is created on the first write.
func NewXLSXStore(path string, log *logger.Logger) TabularStore {
	return &xlsxStore{path: path, logger: log}
}

// ReadAll implements [TabularStore]. Columns are located by header name so
// that reordered or extra columns are tolerated. Numeric cells come back as
// float64, boolean cells as bool and everything else as string. Rows with
// every known column empty are omitted.
func (s *xlsxStore) ReadAll(ctx context.Context, spec models.ObjectSpec) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(spec.SheetName)
	if err != nil || idx < 0 {
		s.logger.Debug().Str("sheet", spec.SheetName).Msg("sheet not found, treating as empty")
		return nil, nil
	}

	rows, err := f.GetRows(spec.SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %w", ErrWorkbook, spec.SheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := headerIndex(rows[0])
	records := make([]models.Record, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := i + 1
		rec := models.Record{
			ID:        strings.TrimSpace(cellAt(rows[i], cols, models.FieldID)),
			UpdatedAt: strings.TrimSpace(cellAt(rows[i], cols, models.FieldUpdatedAt)),
			Fields:    make(map[string]models.Value, len(spec.Fields)),
			Row:       row,
		}

		empty := rec.ID == "" && rec.UpdatedAt == ""
		for _, field := range spec.Fields {
			var v any
			if col, ok := cols[field]; ok && col < len(rows[i]) && rows[i][col] != "" {
				v = typedCell(f, spec.SheetName, col, row, rows[i][col])
				empty = false
			}
			rec.Fields[field] = models.Scalar{V: v}
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}

	s.logger.Debug().Str("sheet", spec.SheetName).Int("rows", len(records)).Msg("read sheet")
	return records, nil
}

// UpsertMany implements [TabularStore]. A record replaces the row holding its
// id, else its source row when that row has no id yet, else it is appended.
func (s *xlsxStore) UpsertMany(ctx context.Context, spec models.ObjectSpec, records []models.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.openOrCreate()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err = s.ensureSheet(f, spec); err != nil {
		return 0, err
	}

	rows, err := f.GetRows(spec.SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("%w: read sheet %s: %w", ErrWorkbook, spec.SheetName, err)
	}
	cols, err := ensureColumns(f, spec, rows)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]int, len(rows))
	idCol := cols[models.FieldID]
	for i := 1; i < len(rows); i++ {
		if id := strings.TrimSpace(cellAt(rows[i], cols, models.FieldID)); id != "" {
			if _, seen := byID[id]; !seen {
				byID[id] = i + 1
			}
		}
	}
	hasID := func(row int) bool {
		i := row - 1
		return i < len(rows) && idCol < len(rows[i]) && strings.TrimSpace(rows[i][idCol]) != ""
	}

	next := max(len(rows), 1) + 1
	claimed := make(map[int]bool, len(records))
	written := 0
	for _, rec := range records {
		row, ok := byID[rec.ID]
		if rec.ID == "" || !ok {
			switch {
			case rec.Row > 1 && !hasID(rec.Row) && !claimed[rec.Row]:
				row = rec.Row
			default:
				row = next
				next++
			}
		}
		// nothing is saved on failure, so nothing counts as written
		if err = writeRecord(f, spec, cols, row, rec); err != nil {
			return 0, err
		}
		claimed[row] = true
		if rec.ID != "" {
			byID[rec.ID] = row
		}
		written++
	}

	if err = s.save(f); err != nil {
		return 0, err
	}

	s.logger.Debug().Str("sheet", spec.SheetName).Int("rows", written).Msg("upserted rows")
	return written, nil
}

// OverwriteAll implements [TabularStore]. The sheet is rebuilt from scratch
// and swapped in under its own name; other sheets are untouched.
func (s *xlsxStore) OverwriteAll(ctx context.Context, spec models.ObjectSpec, records []models.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.openOrCreate()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(scratchSheet); idx >= 0 {
		if err = f.DeleteSheet(scratchSheet); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrWorkbook, err)
		}
	}
	if _, err = f.NewSheet(scratchSheet); err != nil {
		return 0, fmt.Errorf("%w: create sheet: %w", ErrWorkbook, err)
	}
	if idx, _ := f.GetSheetIndex(spec.SheetName); idx >= 0 {
		if err = f.DeleteSheet(spec.SheetName); err != nil {
			return 0, fmt.Errorf("%w: delete sheet %s: %w", ErrWorkbook, spec.SheetName, err)
		}
	}
	if err = f.SetSheetName(scratchSheet, spec.SheetName); err != nil {
		return 0, fmt.Errorf("%w: rename sheet: %w", ErrWorkbook, err)
	}
	if err = s.ensureSheet(f, spec); err != nil {
		return 0, err
	}

	cols := headerIndex(spec.Columns())
	for i, rec := range records {
		if err = writeRecord(f, spec, cols, i+2, rec); err != nil {
			return 0, err
		}
	}

	if idx, _ := f.GetSheetIndex(spec.SheetName); idx >= 0 {
		f.SetActiveSheet(idx)
	}
	if err = s.save(f); err != nil {
		return 0, err
	}

	s.logger.Debug().Str("sheet", spec.SheetName).Int("rows", len(records)).Msg("overwrote sheet")
	return len(records), nil
}

// open returns nil, nil when the workbook does not exist yet.
func (s *xlsxStore) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("path", s.path).Msg("workbook not found, treating as empty")
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrWorkbook, s.path, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrWorkbook, s.path, err)
	}
	return f, nil
}

func (s *xlsxStore) openOrCreate() (*excelize.File, error) {
	f, err := s.open()
	if err != nil || f != nil {
		return f, err
	}
	return excelize.NewFile(), nil
}

// ensureSheet creates the sheet with a styled header when it is missing or
// has no header row yet. The placeholder sheet of a fresh workbook is
// dropped once a real one exists.
func (s *xlsxStore) ensureSheet(f *excelize.File, spec models.ObjectSpec) error {
	idx, _ := f.GetSheetIndex(spec.SheetName)
	if idx < 0 {
		var err error
		if idx, err = f.NewSheet(spec.SheetName); err != nil {
			return fmt.Errorf("%w: create sheet %s: %w", ErrWorkbook, spec.SheetName, err)
		}
	}
	if spec.SheetName != defaultSheet && isBlankSheet(f, defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("%w: %w", ErrWorkbook, err)
		}
		if idx, _ = f.GetSheetIndex(spec.SheetName); idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}

	rows, err := f.GetRows(spec.SheetName)
	if err != nil {
		return fmt.Errorf("%w: read sheet %s: %w", ErrWorkbook, spec.SheetName, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	return writeHeader(f, spec.SheetName, spec.Columns())
}

func (s *xlsxStore) save(f *excelize.File) error {
	err := utils.WriteFileAtomic(s.path, 0o644, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrWorkbook, s.path, err)
	}
	return nil
}

func isBlankSheet(f *excelize.File, name string) bool {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		return false
	}
	rows, err := f.GetRows(name)
	return err == nil && len(rows) == 0
}

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	for i, name := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("%w: write header: %w", ErrWorkbook, err)
		}
	}
	return styleHeader(f, sheet, len(columns))
}

func styleHeader(f *excelize.File, sheet string, width int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontHex, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("%w: header style: %w", ErrWorkbook, err)
	}

	last, _ := excelize.ColumnNumberToName(width)
	if err = f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("%w: header style: %w", ErrWorkbook, err)
	}
	if err = f.SetColWidth(sheet, "A", last, headerColWidth); err != nil {
		return fmt.Errorf("%w: column width: %w", ErrWorkbook, err)
	}
	err = f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("%w: freeze header: %w", ErrWorkbook, err)
	}
	return nil
}

// ensureColumns maps every column of spec to its index, appending header
// cells for columns the sheet does not have yet.
func ensureColumns(f *excelize.File, spec models.ObjectSpec, rows [][]string) (map[string]int, error) {
	var header []string
	if len(rows) > 0 {
		header = rows[0]
	}
	cols := headerIndex(header)

	added := false
	width := len(header)
	for _, name := range spec.Columns() {
		if _, ok := cols[name]; ok {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(width+1, 1)
		if err := f.SetCellValue(spec.SheetName, cell, name); err != nil {
			return nil, fmt.Errorf("%w: write header: %w", ErrWorkbook, err)
		}
		cols[name] = width
		width++
		added = true
	}
	if added {
		if err := styleHeader(f, spec.SheetName, width); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

func cellAt(row []string, cols map[string]int, name string) string {
	col, ok := cols[name]
	if !ok || col >= len(row) {
		return ""
	}
	return row[col]
}

// typedCell converts the raw text of a non-empty cell according to its
// stored type.
func typedCell(f *excelize.File, sheet string, col, row int, raw string) any {
	cell, _ := excelize.CoordinatesToCellName(col+1, row)
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return raw
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if n, perr := strconv.ParseFloat(raw, 64); perr == nil {
			return n
		}
	}
	return raw
}

func writeRecord(f *excelize.File, spec models.ObjectSpec, cols map[string]int, row int, rec models.Record) error {
	set := func(name string, v any) error {
		col, ok := cols[name]
		if !ok {
			return nil
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWorkbook, err)
		}
		if err := f.SetCellValue(spec.SheetName, cell, v); err != nil {
			return fmt.Errorf("%w: write %s: %w", ErrWorkbook, cell, err)
		}
		return nil
	}

	if err := set(models.FieldID, rec.ID); err != nil {
		return err
	}
	if err := set(models.FieldUpdatedAt, rec.UpdatedAt); err != nil {
		return err
	}
	for _, field := range spec.Fields {
		if err := set(field, codec.Flatten(rec.Get(field))); err != nil {
			return err
		}
	}
	return nil
}
