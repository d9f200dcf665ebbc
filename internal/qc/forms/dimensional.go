package forms

import (
	"strconv"

	"github.com/bitfantasy/nimo-qc/internal/qc/calc"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

const (
	dimensionalGrid = "cavity_rows"
	roleCavityInfo  = "cavity_details"
)

// Dimensional inspection: one column per cavity. The yield is derived
// from casting weight, cavity count and bunch weight.
var dimensionalDefinition = &definition{
	kind: entity.KindDimensional,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "inspection_date", Label: "Inspection Date", Type: TypeDate, Required: true},
			{Key: "pattern_code", Label: "Pattern Code", Type: TypeText},
			{Key: "part_name", Label: "Part Name", Type: TypeText},
			{Key: "casting_weight", Label: "Casting Weight (kg)", Type: TypeNumber, Required: true},
			{Key: "bunch_weight", Label: "Bunch Weight (kg)", Type: TypeNumber, Required: true},
			{Key: "inspector", Label: "Inspected By", Type: TypeText},
		}},
		{Key: "dimensions", Title: "Dimensional Readings", Group: true},
	},
	grids: []GridDef{
		{
			Name:           dimensionalGrid,
			Title:          "Cavity Readings",
			Section:        "dimensions",
			ColumnsKey:     "cavity_labels",
			ColumnPrefix:   "Cavity",
			InitialColumns: 1,
			RowsEditable:   true,
			Numeric:        true,
			Rows: []grid.RowSpec{
				{Role: roleCavityInfo, Label: "Cavity Details", Kind: grid.KindText},
				{Label: "Overall Length (mm)"},
				{Label: "Overall Width (mm)"},
				{Label: "Overall Height (mm)"},
				{Label: "Wall Thickness (mm)"},
			},
		},
	},
	derived: []Field{
		{Key: "cavities", Label: "No. of Cavities", Type: TypeNumber},
		{Key: "yield", Label: "Yield %", Type: TypeNumber},
	},
	derive: func(f *Form) map[string]string {
		n := strconv.Itoa(f.Grids[dimensionalGrid].ColumnCount())
		return map[string]string{
			"cavities": n,
			"yield":    calc.Yield(f.Field("casting_weight"), n, f.Field("bunch_weight")),
		}
	},
	validate: func(f *Form, errs FieldErrors) {
		if bw := f.Field("bunch_weight"); bw != "" && isNumber(bw) && calc.Yield("1", "1", bw) == "" {
			errs.Add("bunch_weight", "Bunch Weight must be greater than zero")
		}
	},
	prefill: func(f *Form, part foundryapi.MasterPart) {
		f.setIfParsed("pattern_code", part.PatternCode)
		f.setIfParsed("part_name", part.PartName)
	},
}
