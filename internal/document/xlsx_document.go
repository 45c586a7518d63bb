package document

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// XlsxDocument is an open .xlsx workbook
type XlsxDocument struct {
	logger *zap.Logger
	file   *excelize.File
}

// OpenXlsx opens a workbook
func OpenXlsx(path string, logger *zap.Logger) (*XlsxDocument, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &XlsxDocument{logger: logger, file: file}, nil
}

// Save writes the workbook to path
func (d *XlsxDocument) Save(path string) error {
	return d.file.SaveAs(path)
}

// Close releases the workbook
func (d *XlsxDocument) Close() error {
	return d.file.Close()
}

// File exposes the underlying workbook for tests
func (d *XlsxDocument) File() *excelize.File {
	return d.file
}

// mergedRegion describes one merged cell range
type mergedRegion struct {
	start string // top-left cell, the only member that is yielded
	end   string // bottom-right cell, used for style ranges
}

// Units enumerates worksheet cells in document order. For merged regions
// only the top-left cell is yielded; all other members are skipped.
// Formula-bearing, numeric, date/time, and non-linguistic cells are skipped.
func (d *XlsxDocument) Units() ([]Unit, error) {
	var units []Unit

	for _, sheet := range d.file.GetSheetList() {
		merged, skip, err := d.mergedRegions(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read merged cells of %s: %w", sheet, err)
		}

		rows, err := d.file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
		}

		for r, row := range rows {
			for c, value := range row {
				coord, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, err
				}
				if skip[coord] {
					continue
				}
				if d.shouldSkipCell(sheet, coord, value) {
					continue
				}

				unit := &xlsxUnit{
					file:  d.file,
					sheet: sheet,
					coord: coord,
					text:  value,
					kind:  KindTableCell,
				}
				if region, ok := merged[coord]; ok {
					unit.kind = KindMergedRegion
					unit.region = region
				}
				units = append(units, unit)
			}
		}
	}

	return units, nil
}

// mergedRegions returns the top-left -> region map and the set of member
// cells that must be skipped entirely
func (d *XlsxDocument) mergedRegions(sheet string) (map[string]mergedRegion, map[string]bool, error) {
	regions := make(map[string]mergedRegion)
	skip := make(map[string]bool)

	mergeCells, err := d.file.GetMergeCells(sheet)
	if err != nil {
		return nil, nil, err
	}

	for _, mc := range mergeCells {
		start, end := mc.GetStartAxis(), mc.GetEndAxis()
		regions[start] = mergedRegion{start: start, end: end}

		startCol, startRow, err := excelize.CellNameToCoordinates(start)
		if err != nil {
			return nil, nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(end)
		if err != nil {
			return nil, nil, err
		}
		for row := startRow; row <= endRow; row++ {
			for col := startCol; col <= endCol; col++ {
				if row == startRow && col == startCol {
					continue
				}
				coord, err := excelize.CoordinatesToCellName(col, row)
				if err != nil {
					return nil, nil, err
				}
				skip[coord] = true
			}
		}
	}

	return regions, skip, nil
}

// shouldSkipCell applies the cell-level skip rules
func (d *XlsxDocument) shouldSkipCell(sheet, coord, value string) bool {
	if formula, err := d.file.GetCellFormula(sheet, coord); err == nil && formula != "" {
		return true
	}

	if ctype, err := d.file.GetCellType(sheet, coord); err == nil {
		switch ctype {
		case excelize.CellTypeBool, excelize.CellTypeDate, excelize.CellTypeError:
			return true
		}
	}

	return NonLinguistic(value)
}
