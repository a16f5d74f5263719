// Package excel persists result sets as xlsx workbooks, one file per
// non-empty monthly period.
package excel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geraldoaax/extract-fato-easymine/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

// ErrNoData is returned when asked to export an empty result set.
var ErrNoData = errors.New("no data to export")

// Excel caps sheet names at 31 characters.
const maxSheetName = 31

// Sheet pairs a result set with the worksheet name it is written under.
type Sheet struct {
	Name string
	Data domain.ResultSet
}

type Exporter struct {
	baseDir string
}

func NewExporter(baseDir string) *Exporter {
	if baseDir == "" {
		baseDir = "output"
	}
	return &Exporter{baseDir: baseDir}
}

// Export writes one result set to {baseDir}/{folder}/{filename}.xlsx and
// returns the written path.
func (e *Exporter) Export(rs domain.ResultSet, folder, filename string) (string, error) {
	if rs.Empty() {
		return "", ErrNoData
	}

	path, err := e.preparePath(folder, filename)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, "Sheet1", rs); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

// ExportSheets writes several result sets as named worksheets of a single
// workbook. Empty sheets are skipped; names are truncated to the Excel
// limit and de-duplicated. Fails with ErrNoData when nothing remains to
// write.
func (e *Exporter) ExportSheets(sheets []Sheet, folder, filename string) (string, error) {
	valid := make([]Sheet, 0, len(sheets))
	for _, s := range sheets {
		if !s.Data.Empty() {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return "", ErrNoData
	}

	path, err := e.preparePath(folder, filename)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(valid))
	for i, s := range valid {
		name := sheetName(s.Name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return "", fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, s.Data); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook %s: %w", path, err)
	}
	return path, nil
}

// sheetName enforces the Excel name limit, counting runes so a multi-byte
// name is never cut mid-character, and disambiguates truncated names that
// would otherwise land on the same worksheet.
func sheetName(name string, used map[string]bool) string {
	runes := []rune(name)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	name = string(runes)
	for n := 2; used[name]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		base := runes
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		name = string(base) + suffix
	}
	used[name] = true
	return name
}

func (e *Exporter) preparePath(folder, filename string) (string, error) {
	dir := filepath.Join(e.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output folder %s: %w", dir, err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		filename += ".xlsx"
	}
	return filepath.Join(dir, filename), nil
}

func writeSheet(f *excelize.File, sheet string, rs domain.ResultSet) error {
	header := make([]any, len(rs.Columns))
	for i, c := range rs.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rs.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, ref, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}

// cellValue normalizes driver scan types excelize has no native mapping for.
func cellValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
