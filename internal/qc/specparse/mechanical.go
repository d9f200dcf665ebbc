package specparse

import (
	"regexp"
	"strings"
)

// Placeholder is shown for microstructure and hardness fields the
// specification does not mention.
const Placeholder = "--"

// Tensile mechanical properties. Impact fields are reserved and filled from
// the lab record, never from the specification text.
type Tensile struct {
	TensileStrength string `json:"tensileStrength"`
	YieldStrength   string `json:"yieldStrength"`
	Elongation      string `json:"elongation"`
	ImpactCold      string `json:"impactCold"`
	ImpactRoom      string `json:"impactRoom"`

	Parsed bool `json:"-"`
}

// Microstructure acceptance values.
type Microstructure struct {
	Nodularity string `json:"nodularity"`
	Pearlite   string `json:"pearlite"`
	Carbide    string `json:"carbide"`

	Parsed bool `json:"-"`
}

// Hardness values, each a single number or a range.
type Hardness struct {
	Surface string `json:"surface"`
	Core    string `json:"core"`

	Parsed bool `json:"-"`
}

var (
	positionalToken = regexp.MustCompile(`(?:>=|[≥>=])?\d+(?:\.\d+)?`)
	operatorNumber  = regexp.MustCompile(`([≥≤<>=]+)?\s*(\d+(?:\.\d+)?)`)
	percentNumber   = regexp.MustCompile(`([≥≤<>=]+)?\s*(\d+(?:\.\d+)?)\s*%`)
	hardnessRange   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[-–]\s*(\d+(?:\.\d+)?)`)
	hardnessSingle  = regexp.MustCompile(`\d+(?:\.\d+)?`)

	kwTensile    = regexp.MustCompile(`(?i)tensile`)
	kwYield      = regexp.MustCompile(`(?i)yield`)
	kwElongation = regexp.MustCompile(`(?i)elongation`)
	kwSurface    = regexp.MustCompile(`(?i)surface`)
	kwCore       = regexp.MustCompile(`(?i)core`)
	kwNodularity = regexp.MustCompile(`(?i)nodularity|spheroidi[sz]ation`)
	kwShape      = regexp.MustCompile(`(?i)shape`)
	kwPearlite   = regexp.MustCompile(`(?i)pearlit(?:e|ic)`)
	kwMatrix     = regexp.MustCompile(`(?i)matrix`)
	kwCarbide    = regexp.MustCompile(`(?i)carbide`)
)

// ParseTensileData reads either a single line of two or three operator
// tokens ("≥450 ≥310 ≥10%", positional: tensile, yield, elongation) or
// multi-line text with Tensile / Yield / Elongation keywords.
func ParseTensileData(input string) Tensile {
	var out Tensile
	text := strings.TrimSpace(input)
	if text == "" {
		return out
	}

	if !strings.ContainsAny(text, "\r\n") && !hasTensileKeyword(strings.ToLower(text)) {
		tokens := positionalToken.FindAllString(text, -1)
		if len(tokens) >= 2 && len(tokens) <= 3 {
			out.TensileStrength = tokens[0]
			out.YieldStrength = tokens[1]
			if len(tokens) == 3 {
				out.Elongation = tokens[2]
			}
			out.Parsed = true
			return out
		}
	}

	for _, line := range splitLines(text) {
		lower := strings.ToLower(line)
		hasMin := strings.Contains(lower, "min")

		if out.TensileStrength == "" {
			if loc := kwTensile.FindStringIndex(line); loc != nil {
				out.TensileStrength = valueAfter(line, loc[1], hasMin)
			}
		}
		if out.YieldStrength == "" {
			if loc := kwYield.FindStringIndex(line); loc != nil {
				out.YieldStrength = valueAfter(line, loc[1], hasMin)
			}
		}
		if out.Elongation == "" {
			if loc := kwElongation.FindStringIndex(line); loc != nil {
				out.Elongation = valueAfter(line, loc[1], hasMin)
			} else if strings.Contains(line, "%") && !strings.Contains(lower, "tensile") && !strings.Contains(lower, "yield") {
				if m := percentNumber.FindStringSubmatch(line); m != nil {
					out.Elongation = withOperator(m[1], m[2], hasMin)
				}
			}
		}
	}

	out.Parsed = out.TensileStrength != "" || out.YieldStrength != "" || out.Elongation != ""
	return out
}

func hasTensileKeyword(lower string) bool {
	return strings.Contains(lower, "tensile") || strings.Contains(lower, "yield") || strings.Contains(lower, "elongation")
}

// valueAfter takes the first operator+number at or after the keyword,
// falling back to the first one on the line.
func valueAfter(line string, idx int, hasMin bool) string {
	if m := operatorNumber.FindStringSubmatch(line[idx:]); m != nil {
		return withOperator(m[1], m[2], hasMin)
	}
	if m := operatorNumber.FindStringSubmatch(line); m != nil {
		return withOperator(m[1], m[2], hasMin)
	}
	return ""
}

func withOperator(op, num string, hasMin bool) string {
	if op == "" && hasMin {
		op = "≥"
	}
	return op + num
}

// ParseMicrostructureData scans for nodularity, pearlite and carbide
// acceptance values. Fallback keywords only fill fields the primary
// keywords left empty.
func ParseMicrostructureData(input string) Microstructure {
	out := Microstructure{Nodularity: Placeholder, Pearlite: Placeholder, Carbide: Placeholder}
	lines := splitLines(input)

	for _, line := range lines {
		if out.Nodularity == Placeholder {
			out.Nodularity = microValue(line, kwNodularity)
		}
		if out.Pearlite == Placeholder {
			out.Pearlite = microValue(line, kwPearlite)
		}
		if out.Carbide == Placeholder {
			out.Carbide = microValue(line, kwCarbide)
		}
	}

	for _, line := range lines {
		lower := strings.ToLower(line)
		if out.Nodularity == Placeholder && strings.Contains(line, "%") {
			out.Nodularity = microValue(line, kwShape)
		}
		if out.Pearlite == Placeholder && strings.Contains(lower, "ferrite") {
			out.Pearlite = microValue(line, kwMatrix)
		}
	}

	out.Parsed = out.Nodularity != Placeholder || out.Pearlite != Placeholder || out.Carbide != Placeholder
	return out
}

func microValue(line string, kw *regexp.Regexp) string {
	loc := kw.FindStringIndex(line)
	if loc == nil {
		return Placeholder
	}
	if v := valueAfter(line, loc[1], false); v != "" {
		return v
	}
	return Placeholder
}

// ParseHardnessData reads surface and core hardness. Without either keyword
// the first number or range in the text is taken as the surface value.
func ParseHardnessData(input string) Hardness {
	out := Hardness{Surface: Placeholder, Core: Placeholder}
	text := strings.TrimSpace(input)
	if text == "" {
		return out
	}

	lowerAll := strings.ToLower(text)
	if !strings.Contains(lowerAll, "surface") && !strings.Contains(lowerAll, "core") {
		if v := hardnessValue(text); v != "" {
			out.Surface = v
			out.Parsed = true
		}
		return out
	}

	for _, line := range splitLines(text) {
		if out.Surface == Placeholder {
			if loc := kwSurface.FindStringIndex(line); loc != nil {
				if v := hardnessAfter(line, loc[1]); v != "" {
					out.Surface = v
					out.Parsed = true
				}
			}
		}
		if out.Core == Placeholder {
			if loc := kwCore.FindStringIndex(line); loc != nil {
				if v := hardnessAfter(line, loc[1]); v != "" {
					out.Core = v
					out.Parsed = true
				}
			}
		}
	}
	return out
}

func hardnessAfter(line string, idx int) string {
	if v := hardnessValue(line[idx:]); v != "" {
		return v
	}
	return hardnessValue(line)
}

// hardnessValue prefers a range over a single number when the range starts
// first.
func hardnessValue(s string) string {
	r := hardnessRange.FindStringSubmatchIndex(s)
	n := hardnessSingle.FindStringIndex(s)
	if r != nil && (n == nil || r[0] <= n[0]) {
		return s[r[2]:r[3]] + "-" + s[r[4]:r[5]]
	}
	if n != nil {
		return s[n[0]:n[1]]
	}
	return ""
}

func splitLines(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
