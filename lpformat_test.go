package itm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProblemBasics(t *testing.T) {
	pb := mustRead(t, `
\ a comment line
maximize
  obj: 2.5 x1 - x2 + 3
subject to
  c1: x1 + x2 <= 1
  c2: 2 x1 - x2 >= 0
  x3 = 1
bounds
  0 <= x3 <= 1
binary
  x1
  x2
  x3
end
`)

	assert.Equal(t, Maximize, pb.Sense)
	assert.InDelta(t, 3.0, pb.Objective.Constant, 1e-12)
	require.Len(t, pb.Objective.Elements, 2)
	assert.InDelta(t, 2.5, pb.Objective.Elements[0].Factor, 1e-12)
	assert.InDelta(t, -1.0, pb.Objective.Elements[1].Factor, 1e-12)

	assert.Len(t, pb.LessConstraints, 1)
	assert.Len(t, pb.GreaterConstraints, 1)
	require.Len(t, pb.EqualConstraints, 1)

	// The unlabeled row takes a generated label and its single bare
	// variable an implicit factor of 1.
	assert.Equal(t, "ct2", pb.EqualConstraints[0].Label)
	assert.Equal(t, []Element{{Factor: 1, Variable: 2}},
		pb.EqualConstraints[0].Elements)

	assert.Equal(t, 2, pb.CoefficientClass, "factor 2 forces the Z class")
	assert.Equal(t, []string{"x1", "x2", "x3"}, pb.Vars.Names)
}

func TestReadProblemGluedTokens(t *testing.T) {
	pb := mustRead(t, `
minimize
obj:x1+x2
st
c1:x1+x2>=1
c2:2x1-x2<=1
binary
x1
x2
end
`)

	require.Len(t, pb.GreaterConstraints, 1)
	require.Len(t, pb.LessConstraints, 1)
	assert.Equal(t, []Element{
		{Factor: 2, Variable: 0},
		{Factor: -1, Variable: 1},
	}, pb.LessConstraints[0].Elements)
}

func TestReadProblemOperators(t *testing.T) {
	cases := []struct {
		op      string
		greater bool
		less    bool
		equal   bool
	}{
		{"<", false, true, false},
		{"<=", false, true, false},
		{"=<", false, true, false},
		{">", true, false, false},
		{">=", true, false, false},
		{"=>", true, false, false},
		{"=", false, false, true},
		{"==", false, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.op, func(t *testing.T) {
			pb := mustRead(t, `
minimize
  obj: x1
subject to
  c1: x1 `+tc.op+` 1
binary
  x1
end
`)
			assert.Equal(t, tc.greater, len(pb.GreaterConstraints) == 1)
			assert.Equal(t, tc.less, len(pb.LessConstraints) == 1)
			assert.Equal(t, tc.equal, len(pb.EqualConstraints) == 1)
		})
	}
}

func TestReadProblemQuadraticObjective(t *testing.T) {
	pb := mustRead(t, `
minimize
  obj: x1 + [ 2 x1 * x2 + 4 x2 ^2 ] / 2
subject to
  c1: x1 + x2 >= 1
binary
  x1
  x2
end
`)

	require.Len(t, pb.Objective.QElements, 2)
	assert.InDelta(t, 1.0, pb.Objective.QElements[0].Factor, 1e-12)
	assert.Equal(t, 0, pb.Objective.QElements[0].VariableI)
	assert.Equal(t, 1, pb.Objective.QElements[0].VariableJ)
	assert.InDelta(t, 2.0, pb.Objective.QElements[1].Factor, 1e-12)
	assert.Equal(t, pb.Objective.QElements[1].VariableI,
		pb.Objective.QElements[1].VariableJ)
}

func TestReadProblemErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"bad objective type", "maximise\nobj: x1\nend\n"},
		{"missing end", "minimize\nobj: x1\nsubject to\nc1: x1 >= 1\n"},
		{"bad operator", "minimize\nobj: x1\nsubject to\nc1: x1 ! 1\nend\n"},
		{"undeclared binary", "minimize\nobj: x1\nsubject to\nc1: x1 >= 1\nbinary\nzz\nend\n"},
		{"empty input", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadProblem(strings.NewReader(tc.src))
			require.Error(t, err)
			assert.True(t, IsFileFormatError(err), "got %v", err)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	src := `
minimize
  obj: x1 + 2 x2 - x3 + 1
subject to
  c1: x1 + x2 + x3 = 2
  c2: x1 - x3 >= 0
  c3: 2 x2 + x3 <= 2
binary
  x1
  x2
  x3
end
`
	pb := mustRead(t, src)

	var buf bytes.Buffer
	require.NoError(t, WriteProblem(&buf, pb))

	reread, err := ReadProblem(&buf)
	require.NoError(t, err)

	// The round trip preserves the merged form and the classification.
	merged1, family1, err := MergeConstraints(pb)
	require.NoError(t, err)
	merged2, family2, err := MergeConstraints(reread)
	require.NoError(t, err)

	assert.Equal(t, family1, family2)
	assert.Equal(t, merged1, merged2)
	assert.Equal(t, pb.Vars.Names, reread.Vars.Names)
	assert.InDelta(t, pb.Objective.Constant, reread.Objective.Constant, 1e-12)
	require.Len(t, reread.Objective.Elements, len(pb.Objective.Elements))
	for i := range pb.Objective.Elements {
		assert.Equal(t, pb.Objective.Elements[i].Variable,
			reread.Objective.Elements[i].Variable)
		assert.InDelta(t, pb.Objective.Elements[i].Factor,
			reread.Objective.Elements[i].Factor, 1e-12)
	}
}

func TestValidateProblemDefinition(t *testing.T) {
	t.Run("empty variables", func(t *testing.T) {
		pb := &Problem{Sense: Minimize}
		err := pb.Validate()
		require.Error(t, err)
		assert.True(t, IsProblemError(err))
	})

	t.Run("empty objective", func(t *testing.T) {
		pb := &Problem{
			Sense: Minimize,
			Vars: Variables{
				Names:  []string{"x1"},
				Values: []VariableValue{{Min: 0, Max: 1, Type: VarBinary}},
			},
		}
		err := pb.Validate()
		require.Error(t, err)
		assert.True(t, IsProblemError(err))
	})

	t.Run("unused variable", func(t *testing.T) {
		pb := mustRead(t, `
minimize
  obj: x1
subject to
  c1: x1 >= 1
bounds
  0 <= x2 <= 1
binary
  x1
  x2
end
`)
		err := pb.Validate()
		require.Error(t, err)
		assert.True(t, IsProblemError(err))
	})

	t.Run("bad bound", func(t *testing.T) {
		pb := mustRead(t, `
minimize
  obj: x1
subject to
  c1: x1 >= 0
bounds
  2 <= x1 <= 1
binary
end
`)
		err := pb.Validate()
		require.Error(t, err)
		assert.True(t, IsProblemError(err))
	})
}
