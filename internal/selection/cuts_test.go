// SPDX-License-Identifier: MIT

package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestCuts_UnmarshalYAML_ListForm(t *testing.T) {
	raw := `
- length: ['>=', 10]
- num_islands: ['<=', 5]
- source: ['==', 'crab']
`
	var cuts Cuts
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cuts))

	require.Len(t, cuts, 3)
	assert.Equal(t, Cut{Column: "length", Operator: OpGE, Value: int64(10)}, cuts[0])
	assert.Equal(t, Cut{Column: "num_islands", Operator: OpLE, Value: int64(5)}, cuts[1])
	assert.Equal(t, Cut{Column: "source", Operator: OpEQ, Value: "crab"}, cuts[2])
}

func TestCuts_UnmarshalYAML_TextOperatorAliases(t *testing.T) {
	raw := `
- width: [lt, 0.3]
- leakage: [le, 0.1]
- label: [ne, 'proton']
`
	var cuts Cuts
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cuts))

	assert.Equal(t, OpLT, cuts[0].Operator)
	assert.Equal(t, OpLE, cuts[1].Operator)
	assert.Equal(t, OpNE, cuts[2].Operator)
}

func TestCuts_UnmarshalYAML_LegacyMappingForm(t *testing.T) {
	raw := `
length: ['>=', 10]
width: ['<', 0.3]
`
	var cuts Cuts
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cuts))

	// mapping form preserves document order
	require.Len(t, cuts, 2)
	assert.Equal(t, "length", cuts[0].Column)
	assert.Equal(t, "width", cuts[1].Column)
}

func TestCuts_UnmarshalYAML_Rejects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"multi-entry item", "- length: ['>=', 10]\n  width: ['<', 0.3]"},
		{"unknown operator", "- length: ['~=', 10]"},
		{"missing value", "- length: ['>=']"},
		{"too many values", "- length: ['>=', 10, 20]"},
		{"scalar", "42"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var cuts Cuts
			assert.Error(t, yaml.Unmarshal([]byte(tc.raw), &cuts))
		})
	}
}

func TestCuts_Query(t *testing.T) {
	cuts := Cuts{
		{Column: "length", Operator: OpGE, Value: int64(10)},
		{Column: "width", Operator: OpLT, Value: 0.3},
		{Column: "source", Operator: OpEQ, Value: "crab"},
	}

	assert.Equal(t, `(length >= 10) & (width < 0.3) & (source == "crab")`, cuts.Query())
	assert.Equal(t, "", Cuts{}.Query())
}

func TestCuts_Match(t *testing.T) {
	cuts := Cuts{
		{Column: "length", Operator: OpGE, Value: int64(10)},
		{Column: "source", Operator: OpEQ, Value: "crab"},
	}

	ok, err := cuts.Match(Row{"length": 12.5, "source": "crab"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cuts.Match(Row{"length": 9, "source": "crab"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cuts.Match(Row{"length": 12.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestCuts_Match_TypeMismatch(t *testing.T) {
	cuts := Cuts{{Column: "source", Operator: OpEQ, Value: "crab"}}

	_, err := cuts.Match(Row{"source": 17})
	assert.Error(t, err)
}

func TestCuts_Filter(t *testing.T) {
	cuts := Cuts{
		{Column: "length", Operator: OpGE, Value: int64(10)},
		{Column: "num_islands", Operator: OpLE, Value: int64(2)},
	}

	rows := []Row{
		{"length": 12.0, "num_islands": 1},
		{"length": 8.0, "num_islands": 1},
		{"length": 15.0, "num_islands": 4},
		{"length": 20.0, "num_islands": 2},
	}

	kept, err := cuts.Filter(rows)
	require.NoError(t, err)

	require.Len(t, kept, 2)
	assert.Equal(t, 12.0, kept[0]["length"])
	assert.Equal(t, 20.0, kept[1]["length"])
}

func TestCuts_MarshalRoundTrip(t *testing.T) {
	cuts := Cuts{
		{Column: "length", Operator: OpGE, Value: int64(10)},
		{Column: "source", Operator: OpNE, Value: "proton"},
	}

	out, err := yaml.Marshal(cuts)
	require.NoError(t, err)

	var roundTrip Cuts
	require.NoError(t, yaml.Unmarshal(out, &roundTrip))
	assert.Equal(t, cuts, roundTrip)
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("=")
	require.NoError(t, err)
	assert.Equal(t, OpEQ, op)

	_, err = ParseOperator("contains")
	assert.Error(t, err)
}

func TestCut_BoolComparison(t *testing.T) {
	cuts := Cuts{{Column: "is_simulation", Operator: OpEQ, Value: true}}

	ok, err := cuts.Match(Row{"is_simulation": true})
	require.NoError(t, err)
	assert.True(t, ok)

	// ordering operators are undefined for booleans
	bad := Cuts{{Column: "is_simulation", Operator: OpGT, Value: true}}
	_, err = bad.Match(Row{"is_simulation": false})
	assert.Error(t, err)
}
