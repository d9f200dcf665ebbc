// Package render turns a frozen preview payload into the read-only preview
// model, a printable HTML document and an xlsx workbook. All three come
// from the same Document, so the printout carries every preview field.
package render

import "time"

// Blank is displayed for empty values.
const Blank = "-"

// Pair is one labelled value.
type Pair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a grid as shown on previews.
type Table struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// Section is one titled block of the document.
type Section struct {
	Title      string  `json:"title"`
	Fields     []Pair  `json:"fields,omitempty"`
	Tables     []Table `json:"tables,omitempty"`
	Remarks    string  `json:"remarks,omitempty"`
	Attachment string  `json:"attachment,omitempty"`
}

// Document is the preview model of one form submission.
type Document struct {
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	TrialID  string    `json:"trial_id,omitempty"`
	Sections []Section `json:"sections"`
}

// Header is printed above the document.
type Header struct {
	TrialID     string
	PatternCode string
	PartName    string
	Username    string
	Role        string
	PublicIP    string
	PrintedAt   time.Time
}

// Values lists every displayed value of the document in order, used to
// check that an output carries the whole preview.
func (d Document) Values() []string {
	var out []string
	for _, s := range d.Sections {
		for _, p := range s.Fields {
			out = append(out, p.Label, p.Value)
		}
		for _, t := range s.Tables {
			out = append(out, t.Header...)
			for _, r := range t.Rows {
				out = append(out, r...)
			}
		}
		if s.Remarks != "" {
			out = append(out, s.Remarks)
		}
		if s.Attachment != "" {
			out = append(out, s.Attachment)
		}
	}
	return out
}
