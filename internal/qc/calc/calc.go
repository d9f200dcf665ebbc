// Package calc holds the derived display values of the inspection forms.
// Results are strings so a non-computable value is simply "".
package calc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NoTotal is shown in the total column of text and reason rows.
const NoTotal = "-"

var hundred = decimal.NewFromInt(100)

// parse accepts a trimmed decimal string. Anything else is not numeric.
func parse(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Yield is ((castingWeight * cavities) / bunchWeight) * 100 to two decimals.
// It is "" when any input is non-numeric or the bunch weight is zero.
func Yield(castingWeight, cavities, bunchWeight string) string {
	cw, ok := parse(castingWeight)
	if !ok {
		return ""
	}
	n, ok := parse(cavities)
	if !ok {
		return ""
	}
	bw, ok := parse(bunchWeight)
	if !ok || bw.IsZero() {
		return ""
	}
	return cw.Mul(n).Mul(hundred).DivRound(bw, 8).StringFixed(2)
}

// RowTotal sums a row's cells, counting non-numeric cells as zero. Whole
// sums render without decimals.
func RowTotal(values []string) string {
	sum := decimal.Zero
	for _, v := range values {
		if d, ok := parse(v); ok {
			sum = sum.Add(d)
		}
	}
	return sum.String()
}

// RejectionPercentage is (rejected / inspected) * 100 to two decimals, "" if
// either value is non-numeric or inspected is zero.
func RejectionPercentage(inspected, rejected string) string {
	in, ok := parse(inspected)
	if !ok || in.IsZero() {
		return ""
	}
	rej, ok := parse(rejected)
	if !ok {
		return ""
	}
	return rej.Mul(hundred).DivRound(in, 8).StringFixed(2)
}

// RejectionRow applies RejectionPercentage column by column.
func RejectionRow(inspected, rejected []string) []string {
	out := make([]string, len(inspected))
	for i := range inspected {
		var r string
		if i < len(rejected) {
			r = rejected[i]
		}
		out[i] = RejectionPercentage(inspected[i], r)
	}
	return out
}
