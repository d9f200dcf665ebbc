package forms

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

const correctionGrid = "corrections"

// Material correction: additions made to the melt, one line per material.
var materialCorrectionDefinition = &definition{
	kind: entity.KindMaterialCorrection,
	sections: []Section{
		{Key: "melt", Title: "Melt Details", Fields: []Field{
			{Key: "correction_date", Label: "Date", Type: TypeDate, Required: true},
			{Key: "furnace_no", Label: "Furnace No.", Type: TypeText, Required: true},
			{Key: "heat_no", Label: "Heat No.", Type: TypeText, Required: true},
			{Key: "material_grade", Label: "Material Grade", Type: TypeText},
			{Key: "bath_weight", Label: "Bath Weight (kg)", Type: TypeNumber},
		}},
		{Key: "before", Title: "Chemistry Before Correction", Fields: chemicalFields("before_chem_", TypeNumber)},
		{Key: "correction", Title: "Corrections", Group: true},
	},
	grids: []GridDef{
		{
			Name:         correctionGrid,
			Title:        "Correction Lines",
			Section:      "correction",
			ColumnsKey:   "correction_columns",
			FixedColumns: []string{"Material", "Quantity (kg)"},
			RowsEditable: true,
		},
	},
	validate: func(f *Form, errs FieldErrors) {
		lines := 0
		for _, r := range f.Grids[correctionGrid].Rows() {
			material := strings.TrimSpace(r.Values[0])
			qty := strings.TrimSpace(r.Values[1])
			key := fmt.Sprintf("%s.%s", correctionGrid, r.ID)
			switch {
			case material == "" && qty == "":
				continue
			case material == "":
				errs.Add(key, "Material is required for each correction line")
			case qty == "":
				errs.Add(key, "Quantity is required for "+material)
			case !isNumber(qty):
				errs.Add(key, "Quantity of "+material+" must be a number")
			default:
				lines++
			}
		}
		if lines == 0 {
			errs.Add(correctionGrid, "Add at least one correction line with material and quantity")
		}
	},
	prefill: func(f *Form, part foundryapi.MasterPart) {
		f.setIfParsed("material_grade", part.MaterialGrade)
	},
}

// addCorrectionLine appends a filled correction line.
func (f *Form) addCorrectionLine(material, qty string) (grid.Row, error) {
	r, err := f.AddRow(correctionGrid, "", grid.KindText)
	if err != nil {
		return r, err
	}
	g := f.Grids[correctionGrid]
	if err := g.SetCell(r.ID, 0, material); err != nil {
		return r, err
	}
	return r, g.SetCell(r.ID, 1, qty)
}
