package render

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/theme"
	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes doc into a single-sheet workbook with the print header
// on top. The caller closes the file.
func ExportXLSX(doc Document, header Header, palette theme.Palette) (*excelize.File, string, error) {
	f := excelize.NewFile()
	sheet := "Inspection"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, "", fmt.Errorf("rename sheet: %w", err)
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: palette.Get(theme.Primary)},
	})
	sectionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: palette.Get(theme.HeaderText)},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{palette.Get(theme.HeaderBg)}},
	})
	headStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: strings.TrimPrefix(palette.Get(theme.Border), "#"), Style: 1},
		},
	})

	row := 1
	set := func(col int, v string) {
		name, _ := excelize.ColumnNumberToName(col)
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", name, row), v)
	}
	styleRow := func(cols, style int) {
		last, _ := excelize.ColumnNumberToName(cols)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", last, row), style)
	}

	set(1, doc.Title)
	styleRow(1, titleStyle)
	row++
	meta := [][2]string{
		{"Trial ID", header.TrialID},
		{"Pattern Code", header.PatternCode},
		{"Part Name", header.PartName},
		{"Prepared By", header.Username},
		{"Role", header.Role},
		{"Public IP", header.PublicIP},
	}
	if !header.PrintedAt.IsZero() {
		meta = append(meta, [2]string{"Printed At", header.PrintedAt.UTC().Format("2006-01-02 15:04:05 UTC")})
	}
	for _, m := range meta {
		set(1, m[0])
		set(2, orBlank(m[1]))
		row++
	}

	maxCols := 2
	for _, s := range doc.Sections {
		row++
		set(1, s.Title)
		styleRow(2, sectionStyle)
		row++
		for _, p := range s.Fields {
			set(1, p.Label)
			set(2, p.Value)
			row++
		}
		for _, t := range s.Tables {
			if t.Title != "" {
				set(1, t.Title)
				row++
			}
			for i, h := range t.Header {
				set(i+1, h)
			}
			styleRow(len(t.Header), headStyle)
			if len(t.Header) > maxCols {
				maxCols = len(t.Header)
			}
			row++
			for _, r := range t.Rows {
				for i, v := range r {
					set(i+1, v)
				}
				row++
			}
		}
		if s.Remarks != "" {
			set(1, "Remarks")
			set(2, s.Remarks)
			row++
		}
		if s.Attachment != "" {
			set(1, "Attachment")
			set(2, s.Attachment)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 34)
	if maxCols > 1 {
		last, _ := excelize.ColumnNumberToName(maxCols)
		f.SetColWidth(sheet, "B", last, 16)
	}

	name := doc.Kind
	if doc.TrialID != "" {
		name += "_" + doc.TrialID
	}
	return f, name + ".xlsx", nil
}

func orBlank(s string) string {
	if strings.TrimSpace(s) == "" {
		return Blank
	}
	return s
}
