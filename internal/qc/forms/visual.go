package forms

import (
	"fmt"

	"github.com/bitfantasy/nimo-qc/internal/qc/calc"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/shopspring/decimal"
)

const (
	visualGrid        = "inspection_rows"
	roleInspected     = "inspected"
	roleAccepted      = "accepted"
	roleRejected      = "rejected"
	roleRejectionPct  = "rejection_pct"
	roleRejectionNote = "rejection_reason"
)

// Visual inspection. The rejection percentage row is found by role, so
// renaming the quantity rows never breaks it.
var visualDefinition = &definition{
	kind: entity.KindVisual,
	sections: []Section{
		{Key: "general", Title: "General", Fields: []Field{
			{Key: "inspection_date", Label: "Inspection Date", Type: TypeDate, Required: true},
			{Key: "shot_blasting", Label: "Shot Blasting", Type: TypeSelect, Options: okNotOK},
			{Key: "fettling", Label: "Fettling / Grinding", Type: TypeSelect, Options: okNotOK},
			{Key: "surface_finish", Label: "Surface Finish", Type: TypeText},
			{Key: "inspector", Label: "Inspected By", Type: TypeText},
		}},
		{Key: "visual", Title: "Visual Inspection", Group: true},
	},
	grids: []GridDef{
		{
			Name:           visualGrid,
			Title:          "Inspection Summary",
			Section:        "visual",
			ColumnsKey:     "cavity_labels",
			ColumnPrefix:   "Cavity",
			InitialColumns: 1,
			RowsEditable:   true,
			Numeric:        true,
			Rows: []grid.RowSpec{
				{Role: roleInspected, Label: "Inspected Quantity"},
				{Role: roleAccepted, Label: "Accepted Quantity"},
				{Role: roleRejected, Label: "Rejected Quantity"},
				{Role: roleRejectionPct, Label: "Rejection Percentage", Kind: grid.KindComputed},
				{Role: roleRejectionNote, Label: "Rejection Reason", Kind: grid.KindReason},
				{Label: "Blow Holes"},
				{Label: "Sand Inclusion"},
				{Label: "Shrinkage"},
				{Label: "Cold Shut"},
				{Label: "Misrun"},
				{Label: "Cracks"},
			},
			compute: map[string]func(g *grid.Grid) []string{
				roleRejectionPct: rejectionRow,
			},
		},
	},
	validate: func(f *Form, errs FieldErrors) {
		g := f.Grids[visualGrid]
		in, ok1 := g.RowByRole(roleInspected)
		rej, ok2 := g.RowByRole(roleRejected)
		if !ok1 || !ok2 {
			return
		}
		for i := range in.Values {
			a, errA := decimal.NewFromString(in.Values[i])
			b, errB := decimal.NewFromString(rej.Values[i])
			if errA == nil && errB == nil && b.GreaterThan(a) {
				errs.Add(fmt.Sprintf("%s.%s.%d", visualGrid, rej.ID, i), "Rejected Quantity cannot exceed Inspected Quantity")
			}
		}
	},
}

func rejectionRow(g *grid.Grid) []string {
	in, ok := g.RowByRole(roleInspected)
	if !ok {
		return make([]string, g.ColumnCount())
	}
	rej, ok := g.RowByRole(roleRejected)
	if !ok {
		return make([]string, g.ColumnCount())
	}
	return calc.RejectionRow(in.Values, rej.Values)
}
