package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/autocheckrh/reconciler/internal/normalize"
)

// Fill colors keyed by classification, matching the audit sheet convention.
var classColors = map[string]string{
	"OK":                "C6EFCE",
	"NAO_ENCONTRADO":    "FFC7CE",
	"VERIFICAR_NUMNOTA": "FFEB9C",
	"VERIFICAR_VALOR":   "FFEB9C",
	"HOTEL":             "F4CCCC",
	"SEM_VALOR":         "FCE4D6",
}

const (
	errorColor  = "F8696B" // combined or large-gap discrepancies
	headerColor = "D9E1F2"

	// valueGapFlag is the recomputed mismatch threshold; valueGapError marks
	// a gap large enough to color the whole row as an error.
	valueGapFlag  = 0.70
	valueGapError = 5.0
)

// ExportXLSX renders a reconciliation result CSV as a styled workbook:
// bold filled header, frozen top row, autofilter, content-based column
// widths, and per-row fill color keyed on classification. The value
// mismatch flag is recomputed here, independently of the pipeline note.
func ExportXLSX(csvPath, outPath string) error {
	rows, err := readAll(csvPath)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("result sheet %s has no header row", csvPath)
	}
	header := rows[0]
	body := rows[1:]

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	classCol := col("classificacao")
	obsCol := col("observacao")
	origValCol := col(ColValor)
	matchedValCol := col("matched_valor")

	reflagValueMismatches(body, classCol, obsCol, origValCol, matchedValCol)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "resultados"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for c, h := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}

	fillStyles := make(map[string]int)
	rowFill := func(color string) (int, error) {
		if id, ok := fillStyles[color]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return 0, err
		}
		fillStyles[color] = id
		return id, nil
	}

	for r, row := range body {
		for c := range header {
			v := ""
			if c < len(row) {
				v = row[c]
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
		color := rowColor(row, classCol, obsCol, origValCol, matchedValCol)
		if color == "" {
			continue
		}
		styleID, err := rowFill(color)
		if err != nil {
			return fmt.Errorf("fill style: %w", err)
		}
		first, _ := excelize.CoordinatesToCellName(1, r+2)
		last, _ := excelize.CoordinatesToCellName(len(header), r+2)
		if err := f.SetCellStyle(sheet, first, last, styleID); err != nil {
			return fmt.Errorf("style row %d: %w", r+2, err)
		}
	}

	for c, h := range header {
		width := len(h)
		for _, row := range body {
			if c < len(row) && len(row[c]) > width {
				width = len(row[c])
			}
		}
		name, _ := excelize.ColumnNumberToName(c + 1)
		w := float64(width + 2)
		if w < 10 {
			w = 10
		}
		if w > 50 {
			w = 50
		}
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), len(body)+1)
	if err := f.AutoFilter(sheet, "A1:"+last, nil); err != nil {
		return fmt.Errorf("autofilter: %w", err)
	}

	if err := f.SaveAs(outPath); err != nil {
		return fmt.Errorf("save %s: %w", outPath, err)
	}
	return nil
}

// reflagValueMismatches recomputes the value-mismatch flag from the original
// and matched amounts, overriding classification and annotating the note.
func reflagValueMismatches(body [][]string, classCol, obsCol, origValCol, matchedValCol int) {
	if classCol < 0 || origValCol < 0 || matchedValCol < 0 {
		return
	}
	for _, row := range body {
		if origValCol >= len(row) || matchedValCol >= len(row) || classCol >= len(row) {
			continue
		}
		orig, okOrig := normalize.Currency(row[origValCol])
		matched, okMatched := normalize.Currency(row[matchedValCol])
		if !okOrig || !okMatched {
			continue
		}
		if gap := abs(orig - matched); gap > valueGapFlag {
			row[classCol] = "VERIFICAR_VALOR"
			if obsCol >= 0 && obsCol < len(row) && !strings.Contains(row[obsCol], "VERIFICAR_VALOR") {
				row[obsCol] = strings.Trim(row[obsCol]+" | VERIFICAR_VALOR", " |")
			}
		}
	}
}

func rowColor(row []string, classCol, obsCol, origValCol, matchedValCol int) string {
	class, obs := "", ""
	if classCol >= 0 && classCol < len(row) {
		class = strings.TrimSpace(row[classCol])
	}
	if obsCol >= 0 && obsCol < len(row) {
		obs = row[obsCol]
	}

	numFlag := strings.Contains(class, "VERIFICAR_NUMNOTA") || strings.Contains(obs, "VERIFICAR_NUMNOTA")
	valFlag := strings.Contains(class, "VERIFICAR_VALOR") || strings.Contains(obs, "VERIFICAR_VALOR")
	if numFlag && valFlag {
		return errorColor
	}

	if origValCol >= 0 && matchedValCol >= 0 && origValCol < len(row) && matchedValCol < len(row) {
		orig, okOrig := normalize.Currency(row[origValCol])
		matched, okMatched := normalize.Currency(row[matchedValCol])
		if okOrig && okMatched && abs(orig-matched) > valueGapError {
			return errorColor
		}
	}

	// meal labels count as reconciled for coloring purposes
	if class == "ALMOCO" || class == "JANTA" {
		return classColors["OK"]
	}
	return classColors[class]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
