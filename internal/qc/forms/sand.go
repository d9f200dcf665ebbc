package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
)

const sandGrid = "sand_properties"

// Sand plant inspection: prepared sand properties per sample.
var sandDefinition = &definition{
	kind: entity.KindSand,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "test_date", Label: "Test Date", Type: TypeDate, Required: true},
			{Key: "shift", Label: "Shift", Type: TypeSelect, Options: shifts},
			{Key: "mixer_no", Label: "Mixer No.", Type: TypeText},
			{Key: "tested_by", Label: "Tested By", Type: TypeText},
		}},
		{Key: "properties", Title: "Sand Properties", Group: true},
	},
	grids: []GridDef{
		{
			Name:           sandGrid,
			Title:          "Sand Properties",
			Section:        "properties",
			ColumnsKey:     "sample_labels",
			ColumnPrefix:   "Sample",
			InitialColumns: 1,
			Numeric:        true,
			Rows: []grid.RowSpec{
				{Role: "moisture", Label: "Moisture %"},
				{Role: "compactability", Label: "Compactability %"},
				{Role: "permeability", Label: "Permeability"},
				{Role: "gcs", Label: "Green Compression Strength (g/cm²)"},
				{Role: "active_clay", Label: "Active Clay %"},
				{Role: "loi", Label: "Loss on Ignition %"},
				{Role: "volatile_matter", Label: "Volatile Matter %"},
				{Role: "sand_temperature", Label: "Sand Temperature (°C)"},
			},
		},
	},
}
