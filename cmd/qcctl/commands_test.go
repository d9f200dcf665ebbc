package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/testutil"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand("test")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseChemicalTable(t *testing.T) {
	out, err := run(t, "", "parse", "chemical", "C: 3.40-3.80% Si: 2.20-2.60% Mn: 0.30 max")
	require.NoError(t, err)

	assert.Contains(t, out, "3.40-3.80")
	assert.Contains(t, out, "0.30 max")
	assert.Less(t, strings.Index(out, "si"), strings.Index(out, "cu"))
}

func TestParseTensileFromStdinAsJSON(t *testing.T) {
	out, err := run(t, "Tensile: 420\nYield: 280\nA5 = 12 %", "parse", "tensile", "-o", "json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "420", got["tensileStrength"])
	assert.Equal(t, "280", got["yieldStrength"])
}

func TestParseUnknownKind(t *testing.T) {
	_, err := run(t, "", "parse", "xray", "whatever")
	assert.Error(t, err)
}

func TestProgressMarksAssignments(t *testing.T) {
	fake := testutil.NewFakeFoundry(t)
	fake.Progress = []foundryapi.Progress{
		{TrialID: "TR-1", DepartmentID: entity.DepartmentQuality, Username: "inspector", ApprovalStatus: "pending"},
		{TrialID: "TR-2", DepartmentID: entity.DepartmentMoulding, Username: "inspector"},
	}

	out, err := run(t, "", "progress", "--base-url", fake.Server.URL, "--user", "inspector", "--department", "7")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	var tr1, tr2 string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "TR-1"):
			tr1 = l
		case strings.Contains(l, "TR-2"):
			tr2 = l
		}
	}
	assert.Contains(t, tr1, "yes")
	assert.Contains(t, tr1, entity.DepartmentName(entity.DepartmentQuality))
	assert.NotContains(t, tr2, "yes")
}

func TestProgressRequiresUser(t *testing.T) {
	_, err := run(t, "", "progress")
	assert.Error(t, err)
}

func TestPartsShowsParsedSpecs(t *testing.T) {
	fake := testutil.NewFakeFoundry(t)
	fake.Parts = []foundryapi.MasterPart{{
		PatternCode: "PC-100",
		PartName:    "Gear Housing",
		Tensile:     "Tensile: 420\nYield: 280",
		Hardness:    "170-220 BHN",
	}}

	out, err := run(t, "", "parts", "--base-url", fake.Server.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Gear Housing")

	out, err = run(t, "", "parts", "--base-url", fake.Server.URL, "--code", "pc-100")
	require.NoError(t, err)
	assert.Contains(t, out, "420")

	_, err = run(t, "", "parts", "--base-url", fake.Server.URL, "--code", "PC-404")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "qcctl test\n", out)
}
