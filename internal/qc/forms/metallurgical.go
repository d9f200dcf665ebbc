package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
)

// Metallurgical inspection: lab results next to the specification parsed
// from the master part.
var metallurgicalDefinition = &definition{
	kind: entity.KindMetallurgical,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "test_date", Label: "Test Date", Type: TypeDate, Required: true},
			{Key: "pattern_code", Label: "Pattern Code", Type: TypeText},
			{Key: "material_grade", Label: "Material Grade", Type: TypeText},
			{Key: "heat_no", Label: "Heat No.", Type: TypeText, Required: true},
			{Key: "sample_id", Label: "Sample ID", Type: TypeText},
		}},
		{Key: "specification", Title: "Specification", Fields: concat(
			chemicalFields("spec_chem_", TypeText),
			mechanicalFields("spec_", TypeText),
			microFields("spec_", TypeText),
			hardnessFields("spec_", TypeText),
			[]Field{
				{Key: "spec_xray", Label: "X-Ray Grade", Type: TypeText},
				{Key: "spec_mpi", Label: "MPI", Type: TypeText},
			},
		)},
		{Key: "chemical", Title: "Chemical Analysis", Fields: chemicalFields("chem_", TypeNumber)},
		{Key: "mechanical", Title: "Mechanical Test", Fields: mechanicalFields("", TypeNumber)},
		{Key: "microstructure", Title: "Microstructure", Group: true, Fields: concat(
			microFields("", TypeNumber),
			[]Field{{Key: "nodule_count", Label: "Nodule Count (/mm²)", Type: TypeNumber}},
		)},
		{Key: "hardness", Title: "Hardness", Fields: hardnessFields("", TypeNumber)},
		{Key: "ndt", Title: "Non-Destructive Testing", Group: true, Fields: []Field{
			{Key: "xray_result", Label: "X-Ray Result", Type: TypeSelect, Options: okNotOK},
			{Key: "mpi_result", Label: "MPI Result", Type: TypeSelect, Options: okNotOK},
		}},
	},
	validate: func(f *Form, errs FieldErrors) {
		percentRange(f, errs, "nodularity", "Nodularity %")
		percentRange(f, errs, "pearlite", "Pearlite %")
		percentRange(f, errs, "carbide", "Carbide %")
		percentRange(f, errs, "elongation", "Elongation %")
	},
	prefill: prefillSpecification("spec_"),
}
