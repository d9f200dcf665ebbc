// Package grid is the rows × dynamic-columns table used by the multi-cavity
// inspection forms. Every row always holds exactly one value per column;
// the grid owns that invariant so callers never touch value slices directly.
package grid

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
)

var (
	ErrColumnOutOfRange = errors.New("column index out of range")
	ErrRowNotFound      = errors.New("row not found")
	ErrReadOnlyRow      = errors.New("row is computed and cannot be edited")
)

// RowKind decides how a row is edited and totalled.
type RowKind string

const (
	KindValue    RowKind = "value"    // numeric per-column entries
	KindText     RowKind = "text"     // free text per column (cavity details)
	KindReason   RowKind = "reason"   // rejection reasons
	KindComputed RowKind = "computed" // derived on read, never entered
)

// Row is one labelled parameter of the table.
type Row struct {
	ID     string   `json:"id"`
	Role   string   `json:"role,omitempty"`
	Label  string   `json:"label"`
	Kind   RowKind  `json:"kind"`
	Values []string `json:"values"`
	Text   string   `json:"text,omitempty"`
}

// Totalled reports whether the row participates in row totals.
func (r Row) Totalled() bool {
	return r.Kind == KindValue
}

// RowSpec describes a row to add.
type RowSpec struct {
	Role  string
	Label string
	Kind  RowKind
}

// Grid rows × columns.
type Grid struct {
	columns []string
	rows    []*Row
}

// New creates a grid with the given column headers (at least one).
func New(columns ...string) *Grid {
	g := &Grid{}
	if len(columns) == 0 {
		columns = []string{"1"}
	}
	g.columns = append([]string(nil), columns...)
	return g
}

// ColumnCount current number of columns.
func (g *Grid) ColumnCount() int {
	return len(g.columns)
}

// Columns returns a copy of the column headers.
func (g *Grid) Columns() []string {
	return append([]string(nil), g.columns...)
}

// AddColumn appends a column and a blank cell to every row. An empty label
// becomes the 1-based column number.
func (g *Grid) AddColumn(label string) int {
	if label == "" {
		label = strconv.Itoa(len(g.columns) + 1)
	}
	g.columns = append(g.columns, label)
	for _, r := range g.rows {
		r.Values = append(r.Values, "")
	}
	return len(g.columns) - 1
}

// RemoveColumn drops column i from the headers and from every row. Removing
// the last remaining column is a no-op.
func (g *Grid) RemoveColumn(i int) error {
	if i < 0 || i >= len(g.columns) {
		return ErrColumnOutOfRange
	}
	if len(g.columns) == 1 {
		return nil
	}
	g.columns = removeAt(g.columns, i)
	for _, r := range g.rows {
		r.Values = removeAt(r.Values, i)
	}
	return nil
}

// SetColumnLabel renames column i.
func (g *Grid) SetColumnLabel(i int, label string) error {
	if i < 0 || i >= len(g.columns) {
		return ErrColumnOutOfRange
	}
	g.columns[i] = label
	return nil
}

// AddRow appends a row with one blank value per column.
func (g *Grid) AddRow(spec RowSpec) Row {
	kind := spec.Kind
	if kind == "" {
		kind = KindValue
	}
	r := &Row{
		ID:     uuid.New().String(),
		Role:   spec.Role,
		Label:  spec.Label,
		Kind:   kind,
		Values: make([]string, len(g.columns)),
	}
	g.rows = append(g.rows, r)
	return copyRow(r)
}

// RemoveRow deletes a row by id.
func (g *Grid) RemoveRow(id string) error {
	for i, r := range g.rows {
		if r.ID == id {
			g.rows = append(g.rows[:i], g.rows[i+1:]...)
			return nil
		}
	}
	return ErrRowNotFound
}

// SetCell writes one cell. Computed rows are read-only.
func (g *Grid) SetCell(rowID string, col int, value string) error {
	r := g.find(rowID)
	if r == nil {
		return ErrRowNotFound
	}
	if r.Kind == KindComputed {
		return ErrReadOnlyRow
	}
	if col < 0 || col >= len(g.columns) {
		return ErrColumnOutOfRange
	}
	r.Values[col] = value
	return nil
}

// SetRowLabel renames a row.
func (g *Grid) SetRowLabel(rowID, label string) error {
	r := g.find(rowID)
	if r == nil {
		return ErrRowNotFound
	}
	r.Label = label
	return nil
}

// SetRowText sets the free-text note of a row.
func (g *Grid) SetRowText(rowID, text string) error {
	r := g.find(rowID)
	if r == nil {
		return ErrRowNotFound
	}
	r.Text = text
	return nil
}

// Row returns a copy of the row with the given id.
func (g *Grid) Row(id string) (Row, bool) {
	r := g.find(id)
	if r == nil {
		return Row{}, false
	}
	return copyRow(r), true
}

// RowByRole finds a row by its stable role, independent of its label.
func (g *Grid) RowByRole(role string) (Row, bool) {
	for _, r := range g.rows {
		if r.Role == role {
			return copyRow(r), true
		}
	}
	return Row{}, false
}

// Rows returns copies of all rows in order.
func (g *Grid) Rows() []Row {
	out := make([]Row, 0, len(g.rows))
	for _, r := range g.rows {
		out = append(out, copyRow(r))
	}
	return out
}

// Clone deep-copies the grid.
func (g *Grid) Clone() *Grid {
	c := &Grid{columns: g.Columns()}
	for _, r := range g.rows {
		cr := copyRow(r)
		c.rows = append(c.rows, &cr)
	}
	return c
}

func (g *Grid) find(id string) *Row {
	for _, r := range g.rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

type gridJSON struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Columns: g.columns, Rows: g.Rows()})
}

// UnmarshalJSON restores a grid and re-pads rows to the column count, so a
// stored grid can never violate the row/column invariant.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Columns) == 0 {
		raw.Columns = []string{"1"}
	}
	g.columns = raw.Columns
	g.rows = g.rows[:0]
	for i := range raw.Rows {
		r := raw.Rows[i]
		switch {
		case len(r.Values) < len(g.columns):
			r.Values = append(r.Values, make([]string, len(g.columns)-len(r.Values))...)
		case len(r.Values) > len(g.columns):
			r.Values = r.Values[:len(g.columns)]
		}
		if r.Kind == "" {
			r.Kind = KindValue
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		g.rows = append(g.rows, &r)
	}
	return nil
}

func copyRow(r *Row) Row {
	c := *r
	c.Values = append([]string(nil), r.Values...)
	return c
}

func removeAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
