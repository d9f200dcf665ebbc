package forms

import (
	"encoding/json"
	"testing"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/qc/render"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForm(t *testing.T, kind entity.FormKind) *Form {
	t.Helper()
	f, err := New(kind)
	require.NoError(t, err)
	return f
}

func rowByLabel(t *testing.T, g *grid.Grid, label string) grid.Row {
	t.Helper()
	for _, r := range g.Rows() {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("row %q not found", label)
	return grid.Row{}
}

func TestEveryKindHasDefinition(t *testing.T) {
	for _, k := range entity.FormKinds {
		s, err := SchemaFor(k)
		require.NoError(t, err, k)
		assert.NotEmpty(t, s.Sections, k)

		f := newForm(t, k)
		raw, err := f.Encode()
		require.NoError(t, err)
		back, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, k, back.Kind)
	}
	_, err := New("paint_shop")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDimensionalPayload(t *testing.T) {
	f := newForm(t, entity.KindDimensional)
	require.NoError(t, f.SetFields(map[string]any{
		"inspection_date": "2026-03-02",
		"casting_weight":  12.5,
		"bunch_weight":    "60",
	}))
	for i := 0; i < 3; i++ {
		_, err := f.AddColumn(dimensionalGrid, "")
		require.NoError(t, err)
	}
	g := f.Grids[dimensionalGrid]
	length := rowByLabel(t, g, "Overall Length (mm)")
	require.NoError(t, f.SetCell(dimensionalGrid, length.ID, 0, "120.5"))
	require.NoError(t, f.SetCell(dimensionalGrid, length.ID, 2, "121"))

	require.NoError(t, f.Validate())
	p := f.Payload("")

	assert.Nil(t, p["trial_id"])
	assert.Equal(t, "4", p["cavities"])
	assert.Equal(t, "83.33", p["yield"])
	assert.Equal(t, []string{"Cavity 1", "Cavity 2", "Cavity 3", "Cavity 4"}, p["cavity_labels"])
	assert.Nil(t, p["pattern_code"])

	rows := p["cavity_rows"].([]map[string]any)
	var lengthRow map[string]any
	for _, r := range rows {
		if r["label"] == "Overall Length (mm)" {
			lengthRow = r
		}
	}
	require.NotNil(t, lengthRow)
	assert.Equal(t, []any{"120.5", nil, "121", nil}, lengthRow["values"])

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"casting_weight":12.5`)
	assert.Contains(t, string(raw), `"values":["120.5",null,"121",null]`)
	assert.NotContains(t, string(raw), `""`)
}

func TestDimensionalYieldBlankOnZeroBunch(t *testing.T) {
	f := newForm(t, entity.KindDimensional)
	require.NoError(t, f.SetFields(map[string]any{"casting_weight": "12.5", "bunch_weight": "0"}))

	assert.Equal(t, "", f.Derived()["yield"])
	assert.Nil(t, f.Payload("T1")["yield"])

	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Contains(t, verr.Fields, "bunch_weight")
	assert.Contains(t, verr.Fields, "inspection_date")
}

func TestRequiredAndTypedFields(t *testing.T) {
	f := newForm(t, entity.KindPouring)
	require.NoError(t, f.SetFields(map[string]any{
		"pouring_date":        "02/03/2026",
		"heat_no":             "H-12",
		"pouring_temperature": "hot",
		"treatment_method":    "Magic",
	}))

	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Contains(t, verr.Fields["pouring_date"], "date")
	assert.Contains(t, verr.Fields["pouring_temperature"], "number")
	assert.Contains(t, verr.Fields["treatment_method"], "one of")
	assert.NotContains(t, verr.Fields, "heat_no")
}

func TestPouringTemperatureRange(t *testing.T) {
	f := newForm(t, entity.KindPouring)
	require.NoError(t, f.SetFields(map[string]any{
		"pouring_date": "2026-03-02", "heat_no": "H-1", "pouring_temperature": 900,
	}))
	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Contains(t, verr.Fields, "pouring_temperature")

	require.NoError(t, f.SetFields(map[string]any{"pouring_temperature": 1420}))
	assert.NoError(t, f.Validate())
}

func TestSetFieldsRejectsUnknownKeys(t *testing.T) {
	f := newForm(t, entity.KindMoulding)
	err := f.SetFields(map[string]any{"moulding_date": "2026-01-01", "colour": "red"})
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Empty(t, f.Field("moulding_date"))

	require.NoError(t, f.SetFields(map[string]any{"box_size": "900x700"}))
	require.NoError(t, f.SetFields(map[string]any{"box_size": nil}))
	assert.Empty(t, f.Field("box_size"))

	assert.Error(t, f.SetFields(map[string]any{"box_size": []any{1}}))
}

func TestSampleCardOthersNeedsReason(t *testing.T) {
	f := newForm(t, entity.KindSampleCard)
	require.NoError(t, f.SetFields(map[string]any{
		"pattern_code":        "PC-100",
		"part_name":           "Hub",
		"date_of_sampling":    "2026-02-01",
		"reason_for_sampling": ReasonOthers,
	}))

	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Equal(t, FieldErrors{"specify_reason": "Please specify the reason for sampling"}, verr.Fields)

	require.NoError(t, f.SetFields(map[string]any{"specify_reason": "Customer audit"}))
	assert.NoError(t, f.Validate())
}

func TestSampleCardPrefill(t *testing.T) {
	f := newForm(t, entity.KindSampleCard)
	require.NoError(t, f.SetFields(map[string]any{"chem_cu": "0.8"}))

	f.Prefill(foundryapi.MasterPart{
		PatternCode:         "PC-7",
		PartName:            "Bracket",
		MaterialGrade:       "SG 500/7",
		ChemicalComposition: json.RawMessage(`"C: 3.40-3.80% Si: 2.2% Mn: 0.3%"`),
		Tensile:             "≥500 ≥320 ≥7%",
		MicroStructure:      "Nodularity ≥ 85%",
		Hardness:            "170-230 BHN",
		Xray:                "Level 2",
	})

	assert.Equal(t, "PC-7", f.Field("pattern_code"))
	assert.Equal(t, "SG 500/7", f.Field("material_grade"))
	assert.Equal(t, "3.40-3.80", f.Field("chem_c"))
	assert.Equal(t, "2.2", f.Field("chem_si"))
	assert.Equal(t, "0.8", f.Field("chem_cu"), "blank parsed values keep user input")
	assert.Equal(t, "≥500", f.Field("tensile_strength"))
	assert.Equal(t, "≥7", f.Field("elongation"))
	assert.Equal(t, "≥85", f.Field("nodularity"))
	assert.Empty(t, f.Field("pearlite"), "placeholders are not copied")
	assert.Equal(t, "170-230", f.Field("hardness_surface"))
	assert.Equal(t, "Level 2", f.Field("xray"))
}

func TestMetallurgicalPrefillUsesSpecFields(t *testing.T) {
	f := newForm(t, entity.KindMetallurgical)
	f.Prefill(foundryapi.MasterPart{
		PatternCode:         "PC-9",
		ChemicalComposition: json.RawMessage(`{"C": 3.6}`),
		Tensile:             "Tensile: 450 min",
	})

	assert.Equal(t, "3.6", f.Field("spec_chem_c"))
	assert.Equal(t, "≥450", f.Field("spec_tensile_strength"))
	assert.Empty(t, f.Field("chem_c"))
	assert.Equal(t, "PC-9", f.Field("pattern_code"))
	_, hasPartName := f.Fields["part_name"]
	assert.False(t, hasPartName)
}

func TestVisualRejectionUsesRoles(t *testing.T) {
	f := newForm(t, entity.KindVisual)
	_, err := f.AddColumn(visualGrid, "")
	require.NoError(t, err)
	g := f.Grids[visualGrid]

	in, _ := g.RowByRole(roleInspected)
	rej, _ := g.RowByRole(roleRejected)
	require.NoError(t, f.SetCell(visualGrid, in.ID, 0, "100"))
	require.NoError(t, f.SetCell(visualGrid, rej.ID, 0, "5"))
	require.NoError(t, f.SetCell(visualGrid, in.ID, 1, "0"))

	require.NoError(t, f.SetRowLabel(visualGrid, in.ID, "Qty Checked"))
	require.NoError(t, f.SetRowLabel(visualGrid, rej.ID, "Qty Scrapped"))

	pct, _ := g.RowByRole(roleRejectionPct)
	assert.ErrorIs(t, f.SetCell(visualGrid, pct.ID, 0, "99"), grid.ErrReadOnlyRow)

	for _, gv := range f.View().Grids {
		for _, r := range gv.Rows {
			if r.Role == roleRejectionPct {
				assert.Equal(t, []string{"5.00", ""}, r.Values)
			}
		}
	}

	rows := f.Payload("T1")[visualGrid].([]map[string]any)
	for _, r := range rows {
		if r["role"] == roleRejectionPct {
			assert.Equal(t, []any{"5.00", nil}, r["values"])
		}
	}
}

func TestVisualRejectedCannotExceedInspected(t *testing.T) {
	f := newForm(t, entity.KindVisual)
	require.NoError(t, f.SetFields(map[string]any{"inspection_date": "2026-03-01"}))
	g := f.Grids[visualGrid]
	in, _ := g.RowByRole(roleInspected)
	rej, _ := g.RowByRole(roleRejected)
	require.NoError(t, f.SetCell(visualGrid, in.ID, 0, "10"))
	require.NoError(t, f.SetCell(visualGrid, rej.ID, 0, "11"))

	assert.Error(t, f.Validate())
}

func TestStructuralRowsCannotBeRemoved(t *testing.T) {
	f := newForm(t, entity.KindVisual)
	in, _ := f.Grids[visualGrid].RowByRole(roleInspected)
	assert.ErrorIs(t, f.RemoveRow(visualGrid, in.ID), ErrFixedRows)

	r, err := f.AddRow(visualGrid, "Porosity", grid.KindComputed)
	require.NoError(t, err)
	assert.Equal(t, grid.KindValue, r.Kind)
	assert.NoError(t, f.RemoveRow(visualGrid, r.ID))

	sand := newForm(t, entity.KindSand)
	_, err = sand.AddRow(sandGrid, "Extra", grid.KindValue)
	assert.ErrorIs(t, err, ErrFixedRows)
}

func TestMachineShopTotals(t *testing.T) {
	f := newForm(t, entity.KindMachineShop)
	_, err := f.AddColumn(machineShopGrid, "")
	require.NoError(t, err)
	g := f.Grids[machineShopGrid]
	machined, _ := g.RowByRole("machined")
	details, _ := g.RowByRole(roleCavityInfo)
	require.NoError(t, f.SetCell(machineShopGrid, machined.ID, 0, "40"))
	require.NoError(t, f.SetCell(machineShopGrid, machined.ID, 1, "2.5"))
	require.NoError(t, f.SetCell(machineShopGrid, details.ID, 0, "C1"))

	totals := map[string]string{}
	for _, gv := range f.View().Grids {
		for _, r := range gv.Rows {
			totals[r.Role] = r.Total
		}
	}
	assert.Equal(t, "42.5", totals["machined"])
	assert.Equal(t, "-", totals[roleCavityInfo])
	assert.Equal(t, "-", totals[roleRejectionNote])
	assert.Equal(t, "0", totals[roleAccepted])

	var verr *ValidationError
	require.NoError(t, f.SetFields(map[string]any{"inspection_date": "2026-03-03"}))
	require.NoError(t, f.SetCell(machineShopGrid, machined.ID, 1, "many"))
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Len(t, verr.Fields, 1)
}

func TestMaterialCorrectionLines(t *testing.T) {
	f := newForm(t, entity.KindMaterialCorrection)
	require.NoError(t, f.SetFields(map[string]any{
		"correction_date": "2026-03-04", "furnace_no": "F2", "heat_no": "H-88",
	}))

	var verr *ValidationError
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Contains(t, verr.Fields, correctionGrid)

	_, err := f.addCorrectionLine("FeSi", "")
	require.NoError(t, err)
	require.ErrorAs(t, f.Validate(), &verr)
	assert.Len(t, verr.Fields, 2)

	f2 := newForm(t, entity.KindMaterialCorrection)
	require.NoError(t, f2.SetFields(map[string]any{
		"correction_date": "2026-03-04", "furnace_no": "F2", "heat_no": "H-88",
	}))
	_, err = f2.addCorrectionLine("FeSi", "12.5")
	require.NoError(t, err)
	assert.NoError(t, f2.Validate())

	_, err = f2.AddColumn(correctionGrid, "")
	assert.ErrorIs(t, err, ErrFixedColumns)
}

func TestRemarksOnlyOnGroupSections(t *testing.T) {
	f := newForm(t, entity.KindSand)
	require.NoError(t, f.SetRemarks("properties", "Moisture high in sample 2"))
	assert.Error(t, f.SetRemarks("general", "x"))
	assert.Equal(t, "Moisture high in sample 2", f.Payload("")["properties_remarks"])
}

func TestLoadRecordRestoresPayload(t *testing.T) {
	f := newForm(t, entity.KindVisual)
	require.NoError(t, f.SetFields(map[string]any{"inspection_date": "2026-03-05", "shot_blasting": "OK"}))
	require.NoError(t, f.SetRemarks("visual", "minor flash"))
	_, err := f.AddColumn(visualGrid, "Cavity B")
	require.NoError(t, err)
	in, _ := f.Grids[visualGrid].RowByRole(roleInspected)
	require.NoError(t, f.SetCell(visualGrid, in.ID, 1, "50"))
	extra, err := f.AddRow(visualGrid, "Porosity", grid.KindValue)
	require.NoError(t, err)
	require.NoError(t, f.SetCell(visualGrid, extra.ID, 0, "3"))

	record, err := json.Marshal(f.Payload("T1"))
	require.NoError(t, err)

	loaded := newForm(t, entity.KindVisual)
	require.NoError(t, loaded.LoadRecord(record))

	assert.Equal(t, "2026-03-05", loaded.Field("inspection_date"))
	assert.Equal(t, "minor flash", loaded.Remarks["visual"])
	g := loaded.Grids[visualGrid]
	assert.Equal(t, []string{"Cavity 1", "Cavity B"}, g.Columns())
	gotIn, ok := g.RowByRole(roleInspected)
	require.True(t, ok)
	assert.Equal(t, []string{"", "50"}, gotIn.Values)
	assert.Equal(t, []string{"3", ""}, rowByLabel(t, g, "Porosity").Values)
	assert.Len(t, g.Rows(), len(f.Grids[visualGrid].Rows()))
}

func TestLoadRecordAddsMissingStructuralRows(t *testing.T) {
	f := newForm(t, entity.KindVisual)
	record := json.RawMessage(`{"inspection_date":"2026-01-01","cavity_labels":["1"],"inspection_rows":[{"label":"Inspected Quantity","role":"inspected","values":["7"]}]}`)
	require.NoError(t, f.LoadRecord(record))

	_, ok := f.Grids[visualGrid].RowByRole(roleRejectionPct)
	assert.True(t, ok)
	in, _ := f.Grids[visualGrid].RowByRole(roleInspected)
	assert.Equal(t, []string{"7"}, in.Values)
}

func TestBuildDocumentCoversEveryField(t *testing.T) {
	f := newForm(t, entity.KindDimensional)
	require.NoError(t, f.SetFields(map[string]any{"casting_weight": "12.5", "bunch_weight": "60", "inspector": "Asha"}))
	require.NoError(t, f.SetRemarks("dimensions", "All within tolerance"))
	raw, err := json.Marshal(f.Payload("T1"))
	require.NoError(t, err)

	doc, err := BuildDocument(entity.KindDimensional, raw, map[string]string{"dimensions": "report.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "T1", doc.TrialID)
	assert.Equal(t, "Dimensional Inspection", doc.Title)

	schema, _ := SchemaFor(entity.KindDimensional)
	values := doc.Values()
	for _, s := range schema.Sections {
		for _, fd := range s.Fields {
			assert.Contains(t, values, fd.Label)
		}
	}
	assert.Contains(t, values, "83.33")
	assert.Contains(t, values, "Asha")
	assert.Contains(t, values, "All within tolerance")
	assert.Contains(t, values, "report.pdf")
	assert.Contains(t, values, render.Blank)

	var table render.Table
	for _, s := range doc.Sections {
		if len(s.Tables) > 0 {
			table = s.Tables[0]
		}
	}
	assert.Equal(t, []string{"Parameter", "Cavity 1"}, table.Header)
	assert.Len(t, table.Rows, 5)
}

func TestBuildDocumentTotalsColumn(t *testing.T) {
	f := newForm(t, entity.KindMachineShop)
	machined, _ := f.Grids[machineShopGrid].RowByRole("machined")
	require.NoError(t, f.SetCell(machineShopGrid, machined.ID, 0, "9"))
	raw, err := json.Marshal(f.Payload("T2"))
	require.NoError(t, err)

	doc, err := BuildDocument(entity.KindMachineShop, raw, nil)
	require.NoError(t, err)

	table := doc.Sections[1].Tables[0]
	assert.Equal(t, []string{"Parameter", "Sample 1", "Total"}, table.Header)
	assert.Equal(t, []string{"Machined Quantity", "9", "9"}, table.Rows[1])
	assert.Equal(t, []string{"Cavity Details", "-", "-"}, table.Rows[0])
}

func TestBuildDocumentRejectsBadPayload(t *testing.T) {
	_, err := BuildDocument(entity.KindSand, json.RawMessage(`[`), nil)
	assert.Error(t, err)
}
