package forms

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
)

const machineShopGrid = "machining_rows"

// Machine shop inspection. Value rows carry a total; cavity details and
// reason rows show "-".
var machineShopDefinition = &definition{
	kind: entity.KindMachineShop,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "inspection_date", Label: "Inspection Date", Type: TypeDate, Required: true},
			{Key: "machine_no", Label: "Machine No.", Type: TypeText},
			{Key: "operation", Label: "Operation", Type: TypeText},
			{Key: "operator", Label: "Operator", Type: TypeText},
		}},
		{Key: "machining", Title: "Machining Results", Group: true},
	},
	grids: []GridDef{
		{
			Name:           machineShopGrid,
			Title:          "Machining Results",
			Section:        "machining",
			ColumnsKey:     "sample_labels",
			ColumnPrefix:   "Sample",
			InitialColumns: 1,
			RowsEditable:   true,
			Totals:         true,
			Numeric:        true,
			Rows: []grid.RowSpec{
				{Role: roleCavityInfo, Label: "Cavity Details", Kind: grid.KindText},
				{Role: "machined", Label: "Machined Quantity"},
				{Role: roleAccepted, Label: "Accepted Quantity"},
				{Role: roleRejected, Label: "Rejected Quantity"},
				{Role: roleRejectionNote, Label: "Rejection Reason", Kind: grid.KindReason},
			},
		},
	},
}
