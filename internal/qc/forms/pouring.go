package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/shopspring/decimal"
)

var treatmentMethods = []string{"Sandwich", "Tundish", "Plunging", "Cored Wire"}

var (
	minPourTemp = decimal.NewFromInt(1000)
	maxPourTemp = decimal.NewFromInt(1700)
)

// Pouring details recorded by Melting together with the final chemistry.
var pouringDefinition = &definition{
	kind: entity.KindPouring,
	sections: []Section{
		{Key: "pouring", Title: "Pouring Details", Group: true, Fields: []Field{
			{Key: "pouring_date", Label: "Pouring Date", Type: TypeDate, Required: true},
			{Key: "heat_no", Label: "Heat No.", Type: TypeText, Required: true},
			{Key: "ladle_no", Label: "Ladle No.", Type: TypeText},
			{Key: "pouring_temperature", Label: "Pouring Temperature (°C)", Type: TypeNumber},
			{Key: "pouring_time", Label: "Pouring Time (s)", Type: TypeNumber},
			{Key: "treatment_method", Label: "Mg Treatment", Type: TypeSelect, Options: treatmentMethods},
			{Key: "inoculant", Label: "Inoculant", Type: TypeText},
			{Key: "inoculant_qty", Label: "Inoculant Qty (kg)", Type: TypeNumber},
			{Key: "moulds_poured", Label: "Moulds Poured", Type: TypeNumber},
		}},
		{Key: "final_chemistry", Title: "Final Chemistry", Fields: chemicalFields("final_chem_", TypeNumber)},
	},
	validate: func(f *Form, errs FieldErrors) {
		v := f.Field("pouring_temperature")
		t, err := decimal.NewFromString(v)
		if v == "" || err != nil {
			return
		}
		if t.LessThan(minPourTemp) || t.GreaterThan(maxPourTemp) {
			errs.Add("pouring_temperature", "Pouring Temperature must be between 1000 and 1700 °C")
		}
	},
}
