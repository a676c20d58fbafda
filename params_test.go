package itm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptionsDecodesWeaklyTypedValues(t *testing.T) {
	p := DefaultParams()

	err := p.ApplyOptions(map[string]string{
		"limit":            "5000",
		"time_limit":       "10",
		"theta":            "0.5",
		"delta":            "1e-2",
		"kappa_min":        "0.3",
		"order":            "random-sorting",
		"init_policy":      "crossover_cycle",
		"preprocessor":     "all",
		"float_type":       "f32",
		"observer":         "pnm",
		"thread":           "4",
		"debug":            "true",
		"pushes_limit":     "50",
		"pushing_k_factor": "0.9",
	})
	require.NoError(t, err)

	assert.Equal(t, 5000, p.Limit)
	assert.InDelta(t, 10.0, p.TimeLimit, 1e-12)
	assert.InDelta(t, 0.5, p.Theta, 1e-12)
	assert.InDelta(t, 1e-2, p.Delta, 1e-12)
	assert.InDelta(t, 0.3, p.KappaMin, 1e-12)
	assert.Equal(t, OrderRandomSorting, p.Order)
	assert.Equal(t, InitCrossoverCycle, p.InitPolicy)
	assert.Equal(t, PreprocessorAll, p.Preprocessor)
	assert.Equal(t, Float32, p.FloatType)
	assert.Equal(t, ObserverPnm, p.Observer)
	assert.Equal(t, 4, p.Thread)
	assert.True(t, p.Debug)
	assert.Equal(t, 50, p.PushesLimit)
	assert.InDelta(t, 0.9, p.PushingKFactor, 1e-12)
}

func TestApplyOptionsRejectsUnknownKeys(t *testing.T) {
	p := DefaultParams()
	err := p.ApplyOptions(map[string]string{"no_such_option": "1"})
	require.Error(t, err)
}

func TestApplyOptionsRejectsBadEnums(t *testing.T) {
	p := DefaultParams()
	assert.Error(t, p.ApplyOptions(map[string]string{"order": "sideways"}))
	assert.Error(t, p.ApplyOptions(map[string]string{"observer": "jpeg"}))
	assert.Error(t, p.ApplyOptions(map[string]string{"float_type": "f16"}))
}

func TestParamsValidateRanges(t *testing.T) {
	p := DefaultParams()
	p.Theta = 1.5
	assert.Error(t, p.validate())

	p = DefaultParams()
	p.InitRandom = -0.1
	assert.Error(t, p.validate())

	p = DefaultParams()
	p.KappaMin = 0.5
	p.KappaMax = 0.1
	assert.Error(t, p.validate())

	p = DefaultParams()
	p.Limit = -1
	require.NoError(t, p.validate())
	assert.Greater(t, p.Limit, 1<<30, "negative limit means unbounded")
}

func TestParseModeFlags(t *testing.T) {
	m, err := ParseModeFlags("branch+manual")
	require.NoError(t, err)
	assert.Equal(t, ModeBranch|ModeManual, m)
	assert.Equal(t, "branch+manual", m.String())

	m, err = ParseModeFlags("default")
	require.NoError(t, err)
	assert.Equal(t, ModeDefault, m)

	_, err = ParseModeFlags("warp")
	assert.Error(t, err)
}
