package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/shopspring/decimal"
)

var mouldTypes = []string{"Green Sand", "No-Bake", "Shell"}

// Moulding inspection.
var mouldingDefinition = &definition{
	kind: entity.KindMoulding,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "moulding_date", Label: "Moulding Date", Type: TypeDate, Required: true},
			{Key: "mould_type", Label: "Mould Type", Type: TypeSelect, Options: mouldTypes},
			{Key: "box_size", Label: "Box Size", Type: TypeText},
			{Key: "moulds_prepared", Label: "Moulds Prepared", Type: TypeNumber},
		}},
		{Key: "checks", Title: "Mould Checks", Group: true, Fields: []Field{
			{Key: "mould_hardness_cope", Label: "Mould Hardness Cope", Type: TypeNumber},
			{Key: "mould_hardness_drag", Label: "Mould Hardness Drag", Type: TypeNumber},
			{Key: "core_setting", Label: "Core Setting", Type: TypeSelect, Options: okNotOK},
			{Key: "venting", Label: "Venting", Type: TypeSelect, Options: okNotOK},
			{Key: "mould_coating", Label: "Mould Coating", Type: TypeSelect, Options: okNotOK},
			{Key: "parting_line", Label: "Parting Line", Type: TypeSelect, Options: okNotOK},
		}},
	},
	validate: func(f *Form, errs FieldErrors) {
		percentRange(f, errs, "mould_hardness_cope", "Mould Hardness Cope")
		percentRange(f, errs, "mould_hardness_drag", "Mould Hardness Drag")
	},
}

var hundredPct = decimal.NewFromInt(100)

// percentRange flags numeric values outside 0..100.
func percentRange(f *Form, errs FieldErrors, key, label string) {
	v, err := decimal.NewFromString(f.Field(key))
	if err != nil {
		return
	}
	if v.IsNegative() || v.GreaterThan(hundredPct) {
		errs.Add(key, label+" must be between 0 and 100")
	}
}
