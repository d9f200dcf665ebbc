package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/theme"
)

const printTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}}{{if .Doc.TrialID}} - {{.Doc.TrialID}}{{end}}</title>
<style>
body { font-family: {{.Font}}; font-size: {{.FontSize}}; color: {{.Text}}; background: {{.Surface}}; margin: 16px; }
h1 { font-size: {{.TitleSize}}; color: {{.Primary}}; margin: 0 0 8px 0; }
h2 { font-size: {{.FontSize}}; color: {{.HeaderText}}; background: {{.HeaderBg}}; padding: 4px 6px; margin: 12px 0 4px 0; }
table { border-collapse: collapse; width: 100%; margin-bottom: 6px; }
th, td { border: 1px solid {{.Border}}; padding: 3px 6px; text-align: left; vertical-align: top; }
th { background: {{.HeaderBg}}; color: {{.HeaderText}}; }
td.label { width: 35%; color: {{.Muted}}; }
caption { text-align: left; font-weight: bold; padding: 2px 0; }
.meta td { border: none; padding: 1px 6px 1px 0; }
</style>
</head>
<body>
<h1>{{.Doc.Title}}</h1>
<table class="meta">
<tr><td>Trial ID</td><td>{{or .Header.TrialID "-"}}</td><td>Pattern Code</td><td>{{or .Header.PatternCode "-"}}</td></tr>
<tr><td>Part Name</td><td>{{or .Header.PartName "-"}}</td><td>Prepared By</td><td>{{.Header.Username}}{{if .Header.Role}} ({{.Header.Role}}){{end}}</td></tr>
<tr><td>Public IP</td><td>{{or .Header.PublicIP "-"}}</td><td>Printed At</td><td>{{.PrintedAt}}</td></tr>
</table>
{{range .Doc.Sections}}
<h2>{{.Title}}</h2>
{{if .Fields}}<table>
{{range .Fields}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>
{{end}}</table>{{end}}
{{range .Tables}}<table>
{{if .Title}}<caption>{{.Title}}</caption>{{end}}
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{end}}{{if .Remarks}}<table><tr><td class="label">Remarks</td><td>{{.Remarks}}</td></tr></table>{{end}}
{{if .Attachment}}<table><tr><td class="label">Attachment</td><td>{{.Attachment}}</td></tr></table>{{end}}
{{end}}
</body>
</html>
`

var printTmpl = template.Must(template.New("print").Parse(printTemplate))

type printData struct {
	Doc       Document
	Header    Header
	PrintedAt string

	Font       template.CSS
	FontSize   template.CSS
	TitleSize  template.CSS
	Text       template.CSS
	Muted      template.CSS
	Surface    template.CSS
	Primary    template.CSS
	Border     template.CSS
	HeaderBg   template.CSS
	HeaderText template.CSS
}

// PrintHTML renders doc as a plain-table document for the browser's print
// function. The output depends only on its inputs.
func PrintHTML(doc Document, header Header, palette theme.Palette) ([]byte, error) {
	printedAt := header.PrintedAt
	if printedAt.IsZero() {
		printedAt = time.Unix(0, 0)
	}
	data := printData{
		Doc:        doc,
		Header:     header,
		PrintedAt:  printedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		Font:       template.CSS(palette.Get(theme.FontFamily)),
		FontSize:   template.CSS(palette.Get(theme.FontSizeBody)),
		TitleSize:  template.CSS(palette.Get(theme.FontSizeTitle)),
		Text:       template.CSS(palette.Get(theme.Text)),
		Muted:      template.CSS(palette.Get(theme.MutedText)),
		Surface:    template.CSS(palette.Get(theme.Surface)),
		Primary:    template.CSS(palette.Get(theme.Primary)),
		Border:     template.CSS(palette.Get(theme.Border)),
		HeaderBg:   template.CSS(palette.Get(theme.HeaderBg)),
		HeaderText: template.CSS(palette.Get(theme.HeaderText)),
	}
	var buf bytes.Buffer
	if err := printTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render print html: %w", err)
	}
	return buf.Bytes(), nil
}
