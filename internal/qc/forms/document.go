package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/render"
)

// BuildDocument lays a frozen payload out as the preview document, using
// the kind's labels. attachments maps a section key to its file name.
func BuildDocument(kind entity.FormKind, payload json.RawMessage, attachments map[string]string) (render.Document, error) {
	d, err := lookup(kind)
	if err != nil {
		return render.Document{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var p map[string]any
	if err := dec.Decode(&p); err != nil {
		return render.Document{}, fmt.Errorf("decode payload: %w", err)
	}

	doc := render.Document{
		Kind:    string(kind),
		Title:   kind.Title(),
		TrialID: display(p["trial_id"]),
	}
	if doc.TrialID == render.Blank {
		doc.TrialID = ""
	}

	for _, s := range d.sections {
		sec := render.Section{Title: s.Title}
		for _, fd := range s.Fields {
			sec.Fields = append(sec.Fields, render.Pair{Label: fd.Label, Value: display(p[fd.Key])})
		}
		for _, gd := range d.grids {
			if gd.Section == s.Key {
				sec.Tables = append(sec.Tables, buildTable(gd, p))
			}
		}
		if s.Group {
			if r := display(p[s.RemarksKey()]); r != render.Blank {
				sec.Remarks = r
			}
			sec.Attachment = attachments[s.Key]
		}
		doc.Sections = append(doc.Sections, sec)
	}

	if len(d.derived) > 0 {
		sec := render.Section{Title: "Calculated Values"}
		for _, fd := range d.derived {
			sec.Fields = append(sec.Fields, render.Pair{Label: fd.Label, Value: display(p[fd.Key])})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return doc, nil
}

func buildTable(gd GridDef, p map[string]any) render.Table {
	t := render.Table{Title: gd.Title}
	cols := stringList(p[gd.columnsKey()])
	rows, _ := p[gd.Name].([]any)

	hasText := false
	for _, item := range rows {
		if obj, ok := item.(map[string]any); ok {
			if s, _ := obj["text"].(string); s != "" {
				hasText = true
			}
		}
	}

	t.Header = append([]string{"Parameter"}, cols...)
	if gd.Totals {
		t.Header = append(t.Header, "Total")
	}
	if hasText {
		t.Header = append(t.Header, "Notes")
	}

	for _, item := range rows {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, _ := obj["label"].(string)
		if strings.TrimSpace(label) == "" {
			label = render.Blank
		}
		line := []string{label}
		values, _ := obj["values"].([]any)
		for i := range cols {
			var v any
			if i < len(values) {
				v = values[i]
			}
			line = append(line, display(v))
		}
		if gd.Totals {
			line = append(line, display(obj["total"]))
		}
		if hasText {
			line = append(line, display(obj["text"]))
		}
		t.Rows = append(t.Rows, line)
	}
	return t
}

func display(v any) string {
	s, err := scalar(v)
	if err != nil || strings.TrimSpace(s) == "" {
		return render.Blank
	}
	return s
}
