package forms

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/calc"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Form is the editable state of one inspection screen.
type Form struct {
	Kind    entity.FormKind       `json:"kind"`
	Fields  map[string]string     `json:"fields"`
	Remarks map[string]string     `json:"remarks"`
	Grids   map[string]*grid.Grid `json:"grids"`

	def *definition
}

// New returns a blank form of kind.
func New(kind entity.FormKind) (*Form, error) {
	d, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	f := &Form{
		Kind:    kind,
		Fields:  map[string]string{},
		Remarks: map[string]string{},
		Grids:   map[string]*grid.Grid{},
		def:     d,
	}
	for _, gd := range d.grids {
		f.Grids[gd.Name] = gd.newGrid()
	}
	return f, nil
}

// Decode restores a form stored with its session. Grids missing from the
// stored copy are recreated blank.
func Decode(raw json.RawMessage) (*Form, error) {
	var f Form
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	d, err := lookup(f.Kind)
	if err != nil {
		return nil, err
	}
	f.def = d
	if f.Fields == nil {
		f.Fields = map[string]string{}
	}
	if f.Remarks == nil {
		f.Remarks = map[string]string{}
	}
	if f.Grids == nil {
		f.Grids = map[string]*grid.Grid{}
	}
	for _, gd := range d.grids {
		if f.Grids[gd.Name] == nil {
			f.Grids[gd.Name] = gd.newGrid()
		}
	}
	return &f, nil
}

// Encode serialises the form for the session store.
func (f *Form) Encode() (json.RawMessage, error) {
	return json.Marshal(f)
}

// Field returns the trimmed value of key.
func (f *Form) Field(key string) string {
	return strings.TrimSpace(f.Fields[key])
}

// SetFields applies a patch of scalar values. null clears a field. Unknown
// keys reject the whole patch.
func (f *Form) SetFields(patch map[string]any) error {
	values := make(map[string]string, len(patch))
	for k, v := range patch {
		if _, ok := f.def.field(k); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		s, err := scalar(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", k, err)
		}
		values[k] = s
	}
	for k, v := range values {
		f.Fields[k] = v
	}
	return nil
}

// SetRemarks sets the remarks of a group section.
func (f *Form) SetRemarks(section, text string) error {
	s, ok := f.def.section(section)
	if !ok || !s.Group {
		return fmt.Errorf("%w: %s has no remarks", ErrUnknownField, section)
	}
	f.Remarks[section] = text
	return nil
}

// HasGroup reports whether section accepts remarks and an attachment.
func (f *Form) HasGroup(section string) bool {
	s, ok := f.def.section(section)
	return ok && s.Group
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case json.Number:
		return t.String(), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// Grid returns a named grid.
func (f *Form) Grid(name string) (*grid.Grid, GridDef, error) {
	gd, ok := f.def.gridDef(name)
	if !ok {
		return nil, GridDef{}, fmt.Errorf("%w: %s", ErrUnknownGrid, name)
	}
	return f.Grids[name], gd, nil
}

// AddColumn appends a column to a dynamic grid. An empty label takes the
// grid's numbering.
func (f *Form) AddColumn(gridName, label string) (int, error) {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return 0, err
	}
	if len(gd.FixedColumns) > 0 {
		return 0, ErrFixedColumns
	}
	if label == "" {
		label = gd.columnLabel(g.ColumnCount() + 1)
	}
	return g.AddColumn(label), nil
}

// RemoveColumn removes column i; it is a no-op on the last column.
func (f *Form) RemoveColumn(gridName string, i int) error {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	if len(gd.FixedColumns) > 0 {
		return ErrFixedColumns
	}
	return g.RemoveColumn(i)
}

// SetColumnLabel renames column i.
func (f *Form) SetColumnLabel(gridName string, i int, label string) error {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	if len(gd.FixedColumns) > 0 {
		return ErrFixedColumns
	}
	return g.SetColumnLabel(i, label)
}

// SetCell writes one cell.
func (f *Form) SetCell(gridName, rowID string, col int, value string) error {
	g, _, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	return g.SetCell(rowID, col, value)
}

// SetRowLabel renames a row of a grid whose rows are editable. Rows keep
// their role, so computed values do not depend on labels.
func (f *Form) SetRowLabel(gridName, rowID, label string) error {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	if !gd.RowsEditable {
		return ErrFixedRows
	}
	return g.SetRowLabel(rowID, label)
}

// SetRowText sets the note column of a row.
func (f *Form) SetRowText(gridName, rowID, text string) error {
	g, _, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	return g.SetRowText(rowID, text)
}

// AddRow appends a value row to a grid whose rows are editable.
func (f *Form) AddRow(gridName, label string, kind grid.RowKind) (grid.Row, error) {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return grid.Row{}, err
	}
	if !gd.RowsEditable {
		return grid.Row{}, ErrFixedRows
	}
	if kind == grid.KindComputed {
		kind = grid.KindValue
	}
	return g.AddRow(grid.RowSpec{Label: label, Kind: kind}), nil
}

// RemoveRow deletes a user-added row. Rows with a role are structural.
func (f *Form) RemoveRow(gridName, rowID string) error {
	g, gd, err := f.Grid(gridName)
	if err != nil {
		return err
	}
	if !gd.RowsEditable {
		return ErrFixedRows
	}
	r, ok := g.Row(rowID)
	if !ok {
		return grid.ErrRowNotFound
	}
	if r.Role != "" {
		return ErrFixedRows
	}
	return g.RemoveRow(rowID)
}

// Derived returns the computed read-only values, recomputed on every call.
func (f *Form) Derived() map[string]string {
	if f.def.derive == nil {
		return map[string]string{}
	}
	return f.def.derive(f)
}

// computedRows returns the rows of a grid with computed rows filled in.
func (f *Form) computedRows(gd GridDef) []grid.Row {
	g := f.Grids[gd.Name]
	rows := g.Rows()
	for i, r := range rows {
		if r.Kind != grid.KindComputed {
			continue
		}
		fn := gd.compute[r.Role]
		if fn == nil {
			rows[i].Values = make([]string, g.ColumnCount())
			continue
		}
		rows[i].Values = fn(g)
	}
	return rows
}

// Validate runs the generic field checks followed by the kind's own rules.
func (f *Form) Validate() error {
	errs := FieldErrors{}
	for _, s := range f.def.sections {
		for _, fd := range s.Fields {
			v := f.Field(fd.Key)
			if v == "" {
				if fd.Required {
					errs.Add(fd.Key, fd.Label+" is required")
				}
				continue
			}
			switch fd.Type {
			case TypeNumber:
				if !isNumber(v) {
					errs.Add(fd.Key, fd.Label+" must be a number")
				}
			case TypeDate:
				if _, err := time.Parse(dateLayout, v); err != nil {
					errs.Add(fd.Key, fd.Label+" must be a date (YYYY-MM-DD)")
				}
			case TypeSelect:
				if !contains(fd.Options, v) {
					errs.Add(fd.Key, fd.Label+" must be one of "+strings.Join(fd.Options, ", "))
				}
			}
		}
	}
	for _, gd := range f.def.grids {
		if !gd.Numeric {
			continue
		}
		for _, r := range f.Grids[gd.Name].Rows() {
			if r.Kind != grid.KindValue {
				continue
			}
			for i, v := range r.Values {
				if v = strings.TrimSpace(v); v != "" && !isNumber(v) {
					errs.Add(fmt.Sprintf("%s.%s.%d", gd.Name, r.ID, i), r.Label+" must be a number")
				}
			}
		}
	}
	if f.def.validate != nil {
		f.def.validate(f, errs)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func isNumber(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// Prefill copies master-part data into the form when the kind uses it.
func (f *Form) Prefill(part foundryapi.MasterPart) {
	if f.def.prefill != nil {
		f.def.prefill(f, part)
	}
}

// setIfParsed writes v into key unless v is blank or the parser placeholder.
// Keys the form does not have are ignored.
func (f *Form) setIfParsed(key, v string) {
	if _, ok := f.def.field(key); !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "--" {
		return
	}
	f.Fields[key] = v
}

// Payload assembles the submission object. Blank fields and cells are
// null; number fields are JSON numbers; derived values are recomputed.
func (f *Form) Payload(trialID string) map[string]any {
	p := map[string]any{
		"form_type": string(f.Kind),
		"trial_id":  nullable(trialID),
	}
	for _, s := range f.def.sections {
		for _, fd := range s.Fields {
			v := f.Field(fd.Key)
			switch {
			case v == "":
				p[fd.Key] = nil
			case fd.Type == TypeNumber && isNumber(v):
				p[fd.Key] = json.Number(v)
			default:
				p[fd.Key] = v
			}
		}
		if s.Group {
			p[s.RemarksKey()] = nullable(strings.TrimSpace(f.Remarks[s.Key]))
		}
	}
	for _, gd := range f.def.grids {
		g := f.Grids[gd.Name]
		p[gd.columnsKey()] = g.Columns()
		rows := f.computedRows(gd)
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			row := map[string]any{
				"id":     r.ID,
				"label":  r.Label,
				"kind":   string(r.Kind),
				"values": nullableAll(r.Values),
			}
			if r.Role != "" {
				row["role"] = r.Role
			}
			if r.Text != "" {
				row["text"] = r.Text
			}
			if gd.Totals {
				if r.Totalled() {
					row["total"] = calc.RowTotal(r.Values)
				} else {
					row["total"] = calc.NoTotal
				}
			}
			out = append(out, row)
		}
		p[gd.Name] = out
	}
	for k, v := range f.Derived() {
		p[k] = nullable(v)
	}
	return p
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullableAll(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = nullable(v)
	}
	return out
}

// LoadRecord fills the form from a record previously saved to the foundry
// API, the inverse of Payload. Derived values are ignored and recomputed.
func (f *Form) LoadRecord(record json.RawMessage) error {
	dec := json.NewDecoder(strings.NewReader(string(record)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	for _, s := range f.def.sections {
		for _, fd := range s.Fields {
			if v, ok := m[fd.Key]; ok {
				if str, err := scalar(v); err == nil {
					f.Fields[fd.Key] = str
				}
			}
		}
		if s.Group {
			if v, ok := m[s.RemarksKey()].(string); ok {
				f.Remarks[s.Key] = v
			}
		}
	}

	for _, gd := range f.def.grids {
		rows, ok := m[gd.Name].([]any)
		if !ok {
			continue
		}
		cols := stringList(m[gd.columnsKey()])
		g := restoreGrid(gd, cols, rows)
		f.Grids[gd.Name] = g
	}
	return nil
}

func restoreGrid(gd GridDef, cols []string, rows []any) *grid.Grid {
	if len(gd.FixedColumns) > 0 || len(cols) == 0 {
		cols = gd.newGrid().Columns()
	}
	g := grid.New(cols...)
	seen := map[string]bool{}
	for _, item := range rows {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		role, _ := obj["role"].(string)
		label, _ := obj["label"].(string)
		kind, _ := obj["kind"].(string)
		r := g.AddRow(grid.RowSpec{Role: role, Label: label, Kind: grid.RowKind(kind)})
		if role != "" {
			seen[role] = true
		}
		if text, ok := obj["text"].(string); ok {
			g.SetRowText(r.ID, text)
		}
		if r.Kind == grid.KindComputed {
			continue
		}
		for i, v := range stringList(obj["values"]) {
			if i < g.ColumnCount() {
				g.SetCell(r.ID, i, v)
			}
		}
	}
	for _, spec := range gd.Rows {
		if spec.Role != "" && !seen[spec.Role] {
			g.AddRow(spec)
		}
	}
	return g
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, _ := scalar(item)
		out[i] = s
	}
	return out
}

// GridView is a grid as shown on screen, computed rows filled in.
type GridView struct {
	Name    string    `json:"name"`
	Title   string    `json:"title"`
	Columns []string  `json:"columns"`
	Rows    []RowView `json:"rows"`
	Def     GridDef   `json:"def"`
}

// RowView is one row with its total when the grid shows totals.
type RowView struct {
	grid.Row
	Total string `json:"total,omitempty"`
}

// View is the live state served to the screen.
type View struct {
	Kind    entity.FormKind   `json:"kind"`
	Fields  map[string]string `json:"fields"`
	Remarks map[string]string `json:"remarks"`
	Grids   []GridView        `json:"grids"`
	Derived map[string]string `json:"derived"`
}

// View renders the current state, derived values recomputed.
func (f *Form) View() View {
	v := View{
		Kind:    f.Kind,
		Fields:  map[string]string{},
		Remarks: map[string]string{},
		Derived: f.Derived(),
	}
	for k, val := range f.Fields {
		v.Fields[k] = val
	}
	for k, val := range f.Remarks {
		v.Remarks[k] = val
	}
	for _, gd := range f.def.grids {
		gv := GridView{Name: gd.Name, Title: gd.Title, Columns: f.Grids[gd.Name].Columns(), Def: gd}
		for _, r := range f.computedRows(gd) {
			rv := RowView{Row: r}
			if gd.Totals {
				rv.Total = calc.NoTotal
				if r.Totalled() {
					rv.Total = calc.RowTotal(r.Values)
				}
			}
			gv.Rows = append(gv.Rows, rv)
		}
		v.Grids = append(v.Grids, gv)
	}
	return v
}
