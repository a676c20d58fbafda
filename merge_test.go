package itm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDeduplicatesElements(t *testing.T) {
	pb := &Problem{
		Sense: Minimize,
		Vars: Variables{
			Names: []string{"x1", "x2"},
			Values: []VariableValue{
				{Min: 0, Max: 1, Type: VarBinary},
				{Min: 0, Max: 1, Type: VarBinary},
			},
		},
		Objective: Objective{
			Elements: []ObjectiveElement{{Factor: 1, Variable: 0}},
		},
		EqualConstraints: []Constraint{{
			Label: "c1",
			Elements: []Element{
				{Factor: 1, Variable: 0},
				{Factor: 2, Variable: 0},
				{Factor: 1, Variable: 1},
				{Factor: -1, Variable: 1},
			},
			Value: 3,
		}},
	}

	merged, family, err := MergeConstraints(pb)
	require.NoError(t, err)
	require.Len(t, merged, 1)

	// x1 coefficients sum to 3, x2 cancels out entirely.
	assert.Equal(t, []Element{{Factor: 3, Variable: 0}}, merged[0].Elements)
	assert.Equal(t, 3, merged[0].Min)
	assert.Equal(t, 3, merged[0].Max)
	assert.Equal(t, EqualitiesZ, family)
}

func TestMergeFusesDuplicateRows(t *testing.T) {
	elems := []Element{
		{Factor: 1, Variable: 0},
		{Factor: 1, Variable: 1},
	}
	pb := &Problem{
		Sense: Minimize,
		Vars: Variables{
			Names: []string{"x1", "x2"},
			Values: []VariableValue{
				{Min: 0, Max: 1, Type: VarBinary},
				{Min: 0, Max: 1, Type: VarBinary},
			},
		},
		GreaterConstraints: []Constraint{
			{Label: "g", Elements: elems, Value: 1},
		},
		LessConstraints: []Constraint{
			{Label: "l", Elements: elems, Value: 1},
		},
	}

	merged, family, err := MergeConstraints(pb)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Min)
	assert.Equal(t, 1, merged[0].Max)
	assert.Equal(t, Equalities01, family)
}

func TestMergeIncompatibleBoundsFail(t *testing.T) {
	elems := []Element{
		{Factor: 1, Variable: 0},
		{Factor: 1, Variable: 1},
	}
	pb := &Problem{
		Sense: Minimize,
		Vars: Variables{
			Names: []string{"x1", "x2"},
			Values: []VariableValue{
				{Min: 0, Max: 1, Type: VarBinary},
				{Min: 0, Max: 1, Type: VarBinary},
			},
		},
		GreaterConstraints: []Constraint{
			{Label: "g", Elements: elems, Value: 2},
		},
		LessConstraints: []Constraint{
			{Label: "l", Elements: elems, Value: 1},
		},
	}

	_, _, err := MergeConstraints(pb)
	require.Error(t, err)
	assert.True(t, IsUnrealisable(err))
}

func TestMergeTightensAgainstReach(t *testing.T) {
	pb := &Problem{
		Sense: Minimize,
		Vars: Variables{
			Names: []string{"x1", "x2"},
			Values: []VariableValue{
				{Min: 0, Max: 1, Type: VarBinary},
				{Min: 0, Max: 1, Type: VarBinary},
			},
		},
		EqualConstraints: []Constraint{{
			Label: "c1",
			Elements: []Element{
				{Factor: 1, Variable: 0},
				{Factor: 1, Variable: 1},
			},
			Value: 3,
		}},
	}

	_, _, err := MergeConstraints(pb)
	require.Error(t, err)
	assert.True(t, IsUnrealisable(err),
		"max reach 2 cannot meet target 3")
}

func TestMergeDropsTriviallySatisfiedRows(t *testing.T) {
	pb := &Problem{
		Sense: Minimize,
		Vars: Variables{
			Names: []string{"x1", "x2"},
			Values: []VariableValue{
				{Min: 0, Max: 1, Type: VarBinary},
				{Min: 0, Max: 1, Type: VarBinary},
			},
		},
		LessConstraints: []Constraint{{
			Label: "loose",
			Elements: []Element{
				{Factor: 1, Variable: 0},
				{Factor: 1, Variable: 1},
			},
			Value: 5,
		}},
		GreaterConstraints: []Constraint{{
			Label: "binding",
			Elements: []Element{
				{Factor: 1, Variable: 0},
			},
			Value: 1,
		}},
	}

	merged, _, err := MergeConstraints(pb)
	require.NoError(t, err)
	require.Len(t, merged, 1, "the loose row holds for any 0/1 point")
	assert.Equal(t, []Element{{Factor: 1, Variable: 0}}, merged[0].Elements)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		factors []int
		min     int
		max     int
		family  ProblemFamily
	}{
		{"eq01", []int{1, 1}, 1, 1, Equalities01},
		{"eq101", []int{1, -1}, 0, 0, Equalities101},
		{"eqZ", []int{2, 1}, 2, 2, EqualitiesZ},
		{"ineq01", []int{1, 1}, 0, 1, Inequalities01},
		{"ineq101", []int{-1, 1}, -1, 0, Inequalities101},
		{"ineqZ", []int{3, -2}, -1, 2, InequalitiesZ},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var elems []Element
			for i, f := range tc.factors {
				elems = append(elems, Element{Factor: f, Variable: i})
			}
			merged := []MergedConstraint{{
				Elements: elems,
				Min:      tc.min,
				Max:      tc.max,
			}}
			assert.Equal(t, tc.family, classify(merged))
		})
	}
}

func TestIncidenceRowColumnAgreement(t *testing.T) {
	merged := []MergedConstraint{
		{Elements: []Element{{1, 0}, {1, 2}}, Min: 1, Max: 1},
		{Elements: []Element{{-1, 1}, {1, 2}, {1, 3}}, Min: 0, Max: 1},
		{Elements: []Element{{1, 0}, {1, 3}}, Min: 0, Max: 2},
	}

	ap := NewIncidence(merged, 4)
	assert.Equal(t, 7, ap.Size())
	assert.Equal(t, 3, ap.Rows())
	assert.Equal(t, 4, ap.Columns())

	// Every (row, column, value) triple seen from the row view must be
	// seen identically from the column view.
	fromRows := map[[2]int]int{}
	for k := 0; k < ap.Rows(); k++ {
		for _, e := range ap.Row(k) {
			fromRows[[2]int{k, e.Column}] = e.Value
		}
	}

	count := 0
	for j := 0; j < ap.Columns(); j++ {
		for _, ce := range ap.Column(j) {
			value, ok := fromRows[[2]int{ce.Row, j}]
			require.True(t, ok, "column view found (%d,%d) unknown to rows",
				ce.Row, j)
			assert.Equal(t, value, ce.Value)
			count++
		}
	}
	assert.Equal(t, ap.Size(), count)

	// Slot identifiers are dense and unique.
	seen := make([]bool, ap.Size())
	for _, v := range fromRows {
		assert.False(t, seen[v])
		seen[v] = true
	}
}
