package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/specparse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

// ReasonOthers requires a free-text reason.
const ReasonOthers = "Others"

var samplingReasons = []string{
	"New Pattern", "Pattern Modification", "Process Change", "Customer Complaint", ReasonOthers,
}

// Foundry sample card: the specification sheet opened by Methods. Chemical
// and mechanical targets are prefilled from the selected master part.
var sampleCardDefinition = &definition{
	kind: entity.KindSampleCard,
	sections: []Section{
		{Key: "sampling", Title: "Sampling Details", Fields: []Field{
			{Key: "pattern_code", Label: "Pattern Code", Type: TypeText, Required: true},
			{Key: "part_name", Label: "Part Name", Type: TypeText, Required: true},
			{Key: "material_grade", Label: "Material Grade", Type: TypeText},
			{Key: "date_of_sampling", Label: "Date of Sampling", Type: TypeDate, Required: true},
			{Key: "no_of_moulds", Label: "No. of Moulds", Type: TypeNumber},
			{Key: "reason_for_sampling", Label: "Reason for Sampling", Type: TypeSelect, Options: samplingReasons, Required: true},
			{Key: "specify_reason", Label: "Specify Reason", Type: TypeText},
			{Key: "sample_traceability", Label: "Sample Traceability", Type: TypeText},
		}},
		{Key: "chemical", Title: "Chemical Composition", Fields: chemicalFields("chem_", TypeText)},
		{Key: "mechanical", Title: "Mechanical Properties", Fields: concat(
			mechanicalFields("", TypeText),
			microFields("", TypeText),
			hardnessFields("", TypeText),
			[]Field{
				{Key: "xray", Label: "X-Ray Grade", Type: TypeText},
				{Key: "mpi", Label: "MPI", Type: TypeText},
			},
		)},
		{Key: "tooling", Title: "Tooling & Methods", Group: true, Fields: []Field{
			{Key: "pattern_type", Label: "Pattern Type", Type: TypeText},
			{Key: "core_box", Label: "Core Box", Type: TypeText},
			{Key: "moulding_process", Label: "Moulding Process", Type: TypeText},
		}},
	},
	validate: func(f *Form, errs FieldErrors) {
		if f.Field("reason_for_sampling") == ReasonOthers && f.Field("specify_reason") == "" {
			errs.Add("specify_reason", "Please specify the reason for sampling")
		}
	},
	prefill: prefillSpecification(""),
}

// prefillSpecification copies the parsed master-part specification into
// fields named with prefix. Unparsed records leave the fields alone.
func prefillSpecification(prefix string) func(f *Form, part foundryapi.MasterPart) {
	return func(f *Form, part foundryapi.MasterPart) {
		f.setIfParsed("pattern_code", part.PatternCode)
		f.setIfParsed("part_name", part.PartName)
		f.setIfParsed("material_grade", part.MaterialGrade)

		if chem := specparse.ParseChemicalComposition(part.ChemicalInput()); chem.Parsed {
			for k, v := range chem.Map() {
				f.setIfParsed(prefix+"chem_"+k, v)
			}
		}
		if t := specparse.ParseTensileData(part.Tensile); t.Parsed {
			f.setIfParsed(prefix+"tensile_strength", t.TensileStrength)
			f.setIfParsed(prefix+"yield_strength", t.YieldStrength)
			f.setIfParsed(prefix+"elongation", t.Elongation)
		}
		if m := specparse.ParseMicrostructureData(part.MicroStructure); m.Parsed {
			f.setIfParsed(prefix+"nodularity", m.Nodularity)
			f.setIfParsed(prefix+"pearlite", m.Pearlite)
			f.setIfParsed(prefix+"carbide", m.Carbide)
		}
		if h := specparse.ParseHardnessData(part.Hardness); h.Parsed {
			f.setIfParsed(prefix+"hardness_surface", h.Surface)
			f.setIfParsed(prefix+"hardness_core", h.Core)
		}
		if _, ok := f.def.field(prefix + "xray"); ok {
			f.setIfParsed(prefix+"xray", part.Xray)
			f.setIfParsed(prefix+"mpi", part.MPI)
		}
	}
}

func concat(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
