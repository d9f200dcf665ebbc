package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYield(t *testing.T) {
	tests := []struct {
		name string
		cw   string
		n    string
		bw   string
		want string
	}{
		{"reference", "12.5", "4", "60", "83.33"},
		{"whole", "10", "2", "20", "100.00"},
		{"spaces", " 12.5 ", "4", " 60", "83.33"},
		{"zero bunch", "12.5", "4", "0", ""},
		{"zero bunch decimal", "12.5", "4", "0.00", ""},
		{"non numeric casting", "abc", "4", "60", ""},
		{"non numeric cavities", "12.5", "four", "60", ""},
		{"blank bunch", "12.5", "4", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Yield(tc.cw, tc.n, tc.bw))
		})
	}
}

func TestRowTotal(t *testing.T) {
	assert.Equal(t, "6", RowTotal([]string{"1", "2", "3"}))
	assert.Equal(t, "3.5", RowTotal([]string{"1.5", "x", "", "2"}))
	assert.Equal(t, "0", RowTotal(nil))
	assert.Equal(t, "-1", RowTotal([]string{"-3", "2"}))
}

func TestRejectionPercentage(t *testing.T) {
	assert.Equal(t, "5.00", RejectionPercentage("100", "5"))
	assert.Equal(t, "33.33", RejectionPercentage("3", "1"))
	assert.Equal(t, "", RejectionPercentage("0", "5"))
	assert.Equal(t, "", RejectionPercentage("", "5"))
	assert.Equal(t, "", RejectionPercentage("100", "n/a"))
}

func TestRejectionRow(t *testing.T) {
	got := RejectionRow([]string{"100", "0", "50"}, []string{"5", "1"})
	assert.Equal(t, []string{"5.00", "", ""}, got)
}
