// Package forms holds the nine inspection form controllers. Each kind is a
// definition (sections, grids, derived values, validation and master-part
// prefill) driving one generic Form state.
package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
)

var (
	ErrUnknownKind  = errors.New("unknown form kind")
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownGrid  = errors.New("unknown grid")
	ErrFixedColumns = errors.New("grid columns are fixed")
	ErrFixedRows    = errors.New("grid rows are fixed")
)

// FieldType controls validation and payload encoding of a field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeTextarea FieldType = "textarea"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
)

// Field is one scalar input.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required,omitempty"`
}

// Section groups fields on screen. Sections with Group set carry a remarks
// text and at most one attachment.
type Section struct {
	Key    string  `json:"key"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
	Group  bool    `json:"group,omitempty"`
}

// RemarksKey is the payload key of a group section's remarks.
func (s Section) RemarksKey() string {
	return s.Key + "_remarks"
}

// GridDef describes a rows × columns table of a form.
type GridDef struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Section string `json:"section"`

	// ColumnsKey is the payload key of the column headers.
	ColumnsKey     string         `json:"columns_key"`
	ColumnPrefix   string         `json:"column_prefix,omitempty"`
	InitialColumns int            `json:"initial_columns,omitempty"`
	FixedColumns   []string       `json:"fixed_columns,omitempty"`
	Rows           []grid.RowSpec `json:"-"`
	RowsEditable   bool           `json:"rows_editable"`
	Totals         bool           `json:"totals"`
	Numeric        bool           `json:"numeric"`

	// compute fills computed rows by role from the rest of the grid.
	compute map[string]func(g *grid.Grid) []string
}

func (d GridDef) columnsKey() string {
	if d.ColumnsKey != "" {
		return d.ColumnsKey
	}
	return d.Name + "_columns"
}

func (d GridDef) columnLabel(n int) string {
	if d.ColumnPrefix == "" {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %d", d.ColumnPrefix, n)
}

func (d GridDef) newGrid() *grid.Grid {
	var g *grid.Grid
	if len(d.FixedColumns) > 0 {
		g = grid.New(d.FixedColumns...)
	} else {
		n := d.InitialColumns
		if n < 1 {
			n = 1
		}
		cols := make([]string, n)
		for i := range cols {
			cols[i] = d.columnLabel(i + 1)
		}
		g = grid.New(cols...)
	}
	for _, r := range d.Rows {
		g.AddRow(r)
	}
	return g
}

// definition is one form controller.
type definition struct {
	kind     entity.FormKind
	sections []Section
	grids    []GridDef
	derived  []Field

	// derive computes the read-only values listed in derived.
	derive func(f *Form) map[string]string
	// validate adds kind-specific messages on top of the generic checks.
	validate func(f *Form, errs FieldErrors)
	// prefill copies master-part data into the form.
	prefill func(f *Form, part foundryapi.MasterPart)
}

func (d *definition) field(key string) (Field, bool) {
	for _, s := range d.sections {
		for _, f := range s.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

func (d *definition) section(key string) (Section, bool) {
	for _, s := range d.sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

func (d *definition) gridDef(name string) (GridDef, bool) {
	for _, g := range d.grids {
		if g.Name == name {
			return g, true
		}
	}
	return GridDef{}, false
}

var definitions = map[entity.FormKind]*definition{
	entity.KindSampleCard:         sampleCardDefinition,
	entity.KindSand:               sandDefinition,
	entity.KindMoulding:           mouldingDefinition,
	entity.KindMaterialCorrection: materialCorrectionDefinition,
	entity.KindPouring:            pouringDefinition,
	entity.KindVisual:             visualDefinition,
	entity.KindMetallurgical:      metallurgicalDefinition,
	entity.KindDimensional:        dimensionalDefinition,
	entity.KindMachineShop:        machineShopDefinition,
}

func lookup(kind entity.FormKind) (*definition, error) {
	d, ok := definitions[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return d, nil
}

// Schema is the public description of a form, served to the screen shell.
type Schema struct {
	Kind     entity.FormKind `json:"kind"`
	Title    string          `json:"title"`
	Sections []Section       `json:"sections"`
	Grids    []GridDef       `json:"grids"`
	Derived  []Field         `json:"derived,omitempty"`
}

// SchemaFor returns the schema of kind.
func SchemaFor(kind entity.FormKind) (Schema, error) {
	d, err := lookup(kind)
	if err != nil {
		return Schema{}, err
	}
	return Schema{
		Kind:     d.kind,
		Title:    d.kind.Title(),
		Sections: d.sections,
		Grids:    d.grids,
		Derived:  d.derived,
	}, nil
}

// FieldErrors maps a field key to its message.
type FieldErrors map[string]string

// Add records msg for key unless key already has one.
func (e FieldErrors) Add(key, msg string) {
	if _, ok := e[key]; !ok {
		e[key] = msg
	}
}

// ValidationError blocks Save & Continue.
type ValidationError struct {
	Fields FieldErrors `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// shared field sets

var chemicalLabels = map[string]string{
	"c": "C %", "si": "Si %", "mn": "Mn %", "p": "P %",
	"s": "S %", "mg": "Mg %", "cr": "Cr %", "cu": "Cu %",
}

func chemicalFields(prefix string, typ FieldType) []Field {
	keys := []string{"c", "si", "mn", "p", "s", "mg", "cr", "cu"}
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, Field{Key: prefix + k, Label: chemicalLabels[k], Type: typ})
	}
	return out
}

func mechanicalFields(prefix string, typ FieldType) []Field {
	return []Field{
		{Key: prefix + "tensile_strength", Label: "Tensile Strength (N/mm²)", Type: typ},
		{Key: prefix + "yield_strength", Label: "Yield Strength (N/mm²)", Type: typ},
		{Key: prefix + "elongation", Label: "Elongation %", Type: typ},
		{Key: prefix + "impact_cold", Label: "Impact Cold (J)", Type: typ},
		{Key: prefix + "impact_room", Label: "Impact Room Temp (J)", Type: typ},
	}
}

func microFields(prefix string, typ FieldType) []Field {
	return []Field{
		{Key: prefix + "nodularity", Label: "Nodularity %", Type: typ},
		{Key: prefix + "pearlite", Label: "Pearlite %", Type: typ},
		{Key: prefix + "carbide", Label: "Carbide %", Type: typ},
	}
}

func hardnessFields(prefix string, typ FieldType) []Field {
	return []Field{
		{Key: prefix + "hardness_surface", Label: "Surface Hardness (BHN)", Type: typ},
		{Key: prefix + "hardness_core", Label: "Core Hardness (BHN)", Type: typ},
	}
}

var okNotOK = []string{"OK", "Not OK"}

var shifts = []string{"A", "B", "C"}
