// Package theme is the single set of visual tokens used by rendered
// previews and printouts. The palette is a value: callers get a copy and
// cannot change what other screens see.
package theme

// Token names a recognised style value.
type Token string

const (
	Primary       Token = "primary"
	PrimaryText   Token = "primary_text"
	Surface       Token = "surface"
	Border        Token = "border"
	HeaderBg      Token = "header_bg"
	HeaderText    Token = "header_text"
	Text          Token = "text"
	MutedText     Token = "muted_text"
	Danger        Token = "danger"
	Warning       Token = "warning"
	Success       Token = "success"
	ComputedBg    Token = "computed_bg"
	FontFamily    Token = "font_family"
	FontSizeBody  Token = "font_size_body"
	FontSizeTitle Token = "font_size_title"
)

// tokens in their stable order.
var tokens = [...]Token{
	Primary, PrimaryText, Surface, Border, HeaderBg, HeaderText, Text,
	MutedText, Danger, Warning, Success, ComputedBg, FontFamily,
	FontSizeBody, FontSizeTitle,
}

// Tokens returns the recognised tokens.
func Tokens() []Token {
	return append([]Token(nil), tokens[:]...)
}

// Palette maps every token to a CSS value.
type Palette struct {
	values [len(tokens)]string
}

// Default is the foundry palette.
func Default() Palette {
	return Palette{values: [len(tokens)]string{
		"#1d4e89",
		"#ffffff",
		"#ffffff",
		"#c7cdd6",
		"#e8eef6",
		"#1d2a3a",
		"#1f2933",
		"#6b7785",
		"#b42318",
		"#b54708",
		"#027a48",
		"#f4f6f8",
		"Arial, Helvetica, sans-serif",
		"12px",
		"16px",
	}}
}

// Get returns the value of t, or "" for an unknown token.
func (p Palette) Get(t Token) string {
	for i, tok := range tokens {
		if tok == t {
			return p.values[i]
		}
	}
	return ""
}

// With returns a copy of p with t set to v. Unknown tokens are ignored.
func (p Palette) With(t Token, v string) Palette {
	for i, tok := range tokens {
		if tok == t {
			p.values[i] = v
		}
	}
	return p
}

// CSSVars renders the palette as CSS custom properties.
func (p Palette) CSSVars() map[string]string {
	out := make(map[string]string, len(tokens))
	for i, tok := range tokens {
		out["--qc-"+string(tok)] = p.values[i]
	}
	return out
}
