// Package specparse turns the loosely formatted specification fields of a
// master part (chemical composition, tensile, microstructure, hardness) into
// fixed-shape records that pre-fill inspection forms.
//
// Every parser is total: malformed input degrades to blank or placeholder
// fields and never returns an error. The Parsed flag on each record tells the
// caller whether anything was extracted so it can decide on defaulting.
package specparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// ChemicalComposition element percentages, kept as display strings.
type ChemicalComposition struct {
	C  string `json:"c"`
	Si string `json:"si"`
	Mn string `json:"mn"`
	P  string `json:"p"`
	S  string `json:"s"`
	Mg string `json:"mg"`
	Cr string `json:"cr"`
	Cu string `json:"cu"`

	Parsed bool `json:"-"`
}

// ChemicalKeys is the fixed key order of a composition record.
var ChemicalKeys = []string{"c", "si", "mn", "p", "s", "mg", "cr", "cu"}

var chemicalAliases = map[string][]string{
	"c":  {"c", "carbon"},
	"si": {"si", "silicon"},
	"mn": {"mn", "manganese"},
	"p":  {"p", "phosphorus", "phosphorous"},
	"s":  {"s", "sulphur", "sulfur"},
	"mg": {"mg", "magnesium"},
	"cr": {"cr", "chromium"},
	"cu": {"cu", "copper"},
}

// Map returns the record as exactly the eight element keys.
func (c ChemicalComposition) Map() map[string]string {
	return map[string]string{
		"c": c.C, "si": c.Si, "mn": c.Mn, "p": c.P,
		"s": c.S, "mg": c.Mg, "cr": c.Cr, "cu": c.Cu,
	}
}

// Get returns the value for an element key; unknown keys are blank.
func (c ChemicalComposition) Get(key string) string {
	return c.Map()[key]
}

func (c *ChemicalComposition) set(key, value string) {
	switch key {
	case "c":
		c.C = value
	case "si":
		c.Si = value
	case "mn":
		c.Mn = value
	case "p":
		c.P = value
	case "s":
		c.S = value
	case "mg":
		c.Mg = value
	case "cr":
		c.Cr = value
	case "cu":
		c.Cu = value
	default:
		return
	}
	if value != "" {
		c.Parsed = true
	}
}

// ChemicalFromMap builds a record from already-keyed values, e.g. a form
// submission.
func ChemicalFromMap(m map[string]string) ChemicalComposition {
	var out ChemicalComposition
	for _, k := range ChemicalKeys {
		out.set(k, strings.TrimSpace(m[k]))
	}
	return out
}

// element: value[%] with an optional comparator, range and max/min qualifier
var chemicalPair = regexp.MustCompile(`(?i)\b([a-z]+)\s*:\s*((?:[<>≤≥=]+\s*)?\d*\.?\d+(?:\s*%)?(?:\s*[-–~]\s*\d*\.?\d+(?:\s*%)?)?(?:\s*(?:max|min)\b)?)`)

// ParseChemicalComposition accepts nil, a JSON or free-text string, or a
// decoded JSON object.
func ParseChemicalComposition(input any) ChemicalComposition {
	switch v := input.(type) {
	case nil:
		return ChemicalComposition{}
	case string:
		return parseChemicalString(v)
	case []byte:
		return parseChemicalString(string(v))
	case json.RawMessage:
		return parseChemicalString(string(v))
	case map[string]any:
		return chemicalFromObject(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = val
		}
		return chemicalFromObject(m)
	default:
		return ChemicalComposition{}
	}
}

func parseChemicalString(s string) ChemicalComposition {
	s = strings.TrimSpace(s)
	if s == "" {
		return ChemicalComposition{}
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err == nil {
		switch d := decoded.(type) {
		case map[string]any:
			return chemicalFromObject(d)
		case string:
			return parseChemicalText(d)
		}
	}
	return parseChemicalText(s)
}

func parseChemicalText(s string) ChemicalComposition {
	var out ChemicalComposition

	for _, m := range chemicalPair.FindAllStringSubmatch(s, -1) {
		target := resolveElement(normalizeKey(m[1]))
		if target == "" || out.Get(target) != "" {
			continue
		}
		out.set(target, cleanValue(m[2]))
	}
	return out
}

func cleanValue(v string) string {
	v = strings.ReplaceAll(v, "%", " ")
	v = strings.Join(strings.Fields(v), " ")
	v = strings.ReplaceAll(v, " - ", "-")
	return strings.ReplaceAll(v, " – ", "–")
}

func resolveElement(key string) string {
	for _, target := range ChemicalKeys {
		for _, alias := range chemicalAliases[target] {
			if key == alias {
				return target
			}
		}
	}
	return ""
}

func normalizeKey(k string) string {
	return strings.Join(strings.Fields(strings.ToLower(k)), "")
}

func chemicalFromObject(obj map[string]any) ChemicalComposition {
	lookup := make(map[string]any, len(obj))
	for k, v := range obj {
		lookup[normalizeKey(k)] = v
	}

	var out ChemicalComposition
	for _, target := range ChemicalKeys {
		for _, alias := range chemicalAliases[target] {
			v, ok := lookup[alias]
			if !ok || v == nil {
				continue
			}
			out.set(target, stringify(v))
			break
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
