package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetName       = "Results"
	failureColor    = "FF5900"
	headerColor     = "D9D9D9"
	defaultColWidth = 16
	wideColWidth    = 48
)

var xlsxHeaders = []string{
	"Suite", "Case", "Method", "Target", "Result", "Stage", "Kind", "Expected", "Actual", "Status", "Duration (ms)",
}

// WriteXLSX writes the run as a workbook with one row per case, followed by a summary block.
// Rows of failed cases are filled red.
func WriteXLSX(path string, r Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
	})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}
	failureStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{failureColor}},
	})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(xlsxHeaders))
	_ = f.SetColWidth(sheetName, "A", lastCol, defaultColWidth)
	_ = f.SetColWidth(sheetName, "H", "I", wideColWidth)

	if err := f.SetSheetRow(sheetName, "A1", &xlsxHeaders); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}
	_ = f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle)

	row := 2
	for _, s := range r.Summary.Suites {
		for _, c := range s.Results {
			result := "PASS"
			if !c.Passed {
				result = "FAIL"
			}
			var status interface{}
			if c.ActualStatus.IsDefined() {
				status = c.ActualStatus.IntValue()
			}
			values := []interface{}{
				string(s.Suite), c.Case.Name, c.Case.Method, c.Case.Target, result,
				string(c.Stage), c.Kind, c.Expected, c.Actual, status, c.Duration.Milliseconds(),
			}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			if !c.Passed {
				_ = f.SetCellStyle(sheetName, cell, fmt.Sprintf("%s%d", lastCol, row), failureStyle)
			}
			row++
		}
	}

	row++
	summary := [][]interface{}{
		{"Run", r.ID.String()},
		{"Started", r.Started.Format("2006-01-02 15:04:05")},
		{"Duration (ms)", r.Finished.Sub(r.Started).Milliseconds()},
	}
	for _, s := range r.Summary.Suites {
		summary = append(summary, []interface{}{string(s.Suite), fmt.Sprintf("%d / %d", s.Passed(), s.Total())})
	}
	if r.Aborted != nil {
		summary = append(summary, []interface{}{"Aborted", r.Aborted.Error()})
	}
	for _, values := range summary {
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving xlsx report: %w", err)
	}
	return nil
}
