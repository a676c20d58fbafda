package itm

// params: solver parameters and their decoding from key=value overrides.
//
// Params is the control structure accepted by Solve and Optimize, in the
// manner of a presolve control block: every tuning knob lives here with a
// documented default, and the caller passes the whole structure by value.

import (
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// OrderType selects the per-sweep constraint ordering policy.
type OrderType int

const (
	OrderNone OrderType = iota
	OrderReversing
	OrderRandomSorting
	OrderInfeasibilityDecr
	OrderInfeasibilityIncr
	OrderLagrangianDecr
	OrderLagrangianIncr
	OrderPiSignChange
)

func (o OrderType) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderReversing:
		return "reversing"
	case OrderRandomSorting:
		return "random-sorting"
	case OrderInfeasibilityDecr:
		return "infeasibility-decr"
	case OrderInfeasibilityIncr:
		return "infeasibility-incr"
	case OrderLagrangianDecr:
		return "lagrangian-decr"
	case OrderLagrangianIncr:
		return "lagrangian-incr"
	case OrderPiSignChange:
		return "pi-sign-change"
	}
	return "none"
}

// ParseOrderType converts a textual order name. Both dash and underscore
// separators are accepted.
func ParseOrderType(s string) (OrderType, error) {
	switch normalizeOption(s) {
	case "", "none":
		return OrderNone, nil
	case "reversing":
		return OrderReversing, nil
	case "random-sorting":
		return OrderRandomSorting, nil
	case "infeasibility-decr":
		return OrderInfeasibilityDecr, nil
	case "infeasibility-incr":
		return OrderInfeasibilityIncr, nil
	case "lagrangian-decr":
		return OrderLagrangianDecr, nil
	case "lagrangian-incr":
		return OrderLagrangianIncr, nil
	case "pi-sign-change":
		return OrderPiSignChange, nil
	}
	return OrderNone, errors.Errorf("unknown constraint order %q", s)
}

// InitPolicyType selects how a worker initializes its assignment.
type InitPolicyType int

const (
	InitBastert InitPolicyType = iota
	InitPessimisticSolve
	InitOptimisticSolve
	InitCycle
	InitCrossoverCycle
)

func (p InitPolicyType) String() string {
	switch p {
	case InitBastert:
		return "bastert"
	case InitPessimisticSolve:
		return "pessimistic-solve"
	case InitOptimisticSolve:
		return "optimistic-solve"
	case InitCycle:
		return "cycle"
	case InitCrossoverCycle:
		return "crossover-cycle"
	}
	return "bastert"
}

// ParseInitPolicyType converts a textual init policy name.
func ParseInitPolicyType(s string) (InitPolicyType, error) {
	switch normalizeOption(s) {
	case "", "bastert":
		return InitBastert, nil
	case "pessimistic-solve":
		return InitPessimisticSolve, nil
	case "optimistic-solve":
		return InitOptimisticSolve, nil
	case "cycle":
		return InitCycle, nil
	case "crossover-cycle":
		return InitCrossoverCycle, nil
	}
	return InitBastert, errors.Errorf("unknown init policy %q", s)
}

// PreprocessorOption controls the pre-affectation pass.
type PreprocessorOption int

const (
	PreprocessorNone PreprocessorOption = iota
	PreprocessorAll
)

func (p PreprocessorOption) String() string {
	if p == PreprocessorAll {
		return "all"
	}
	return "none"
}

// ParsePreprocessorOption converts a textual preprocessor option.
func ParsePreprocessorOption(s string) (PreprocessorOption, error) {
	switch normalizeOption(s) {
	case "", "none":
		return PreprocessorNone, nil
	case "all":
		return PreprocessorAll, nil
	}
	return PreprocessorNone, errors.Errorf("unknown preprocessor option %q", s)
}

// FloatType selects the floating-point width of the solver hot path.
// Float80 maps to float64: Go has no extended-precision type, and the
// widest native float is used instead.
type FloatType int

const (
	Float64 FloatType = iota
	Float32
	Float80
)

func (f FloatType) String() string {
	switch f {
	case Float32:
		return "f32"
	case Float80:
		return "f80"
	}
	return "f64"
}

// ParseFloatType converts a textual float type name.
func ParseFloatType(s string) (FloatType, error) {
	switch normalizeOption(s) {
	case "", "f64", "double":
		return Float64, nil
	case "f32", "float":
		return Float32, nil
	case "f80", "longdouble", "long-double":
		return Float80, nil
	}
	return Float64, errors.Errorf("unknown float type %q", s)
}

// ObserverType selects the multiplier observer attached to worker 0.
type ObserverType int

const (
	ObserverNone ObserverType = iota
	ObserverPnm
	ObserverFile
)

func (o ObserverType) String() string {
	switch o {
	case ObserverPnm:
		return "pnm"
	case ObserverFile:
		return "file"
	}
	return "none"
}

// ParseObserverType converts a textual observer name.
func ParseObserverType(s string) (ObserverType, error) {
	switch normalizeOption(s) {
	case "", "none":
		return ObserverNone, nil
	case "pnm":
		return ObserverPnm, nil
	case "file":
		return ObserverFile, nil
	}
	return ObserverNone, errors.Errorf("unknown observer %q", s)
}

// ModeFlags is a bit set of optimizer behaviors.
type ModeFlags int

const (
	ModeDefault ModeFlags = 0
	ModeBranch  ModeFlags = 1 << iota
	ModeNlopt
	ModeManual
)

func (m ModeFlags) String() string {
	if m == ModeDefault {
		return "default"
	}
	var parts []string
	if m&ModeBranch != 0 {
		parts = append(parts, "branch")
	}
	if m&ModeNlopt != 0 {
		parts = append(parts, "nlopt")
	}
	if m&ModeManual != 0 {
		parts = append(parts, "manual")
	}
	return strings.Join(parts, "+")
}

// ParseModeFlags converts a textual mode list such as "branch+manual".
func ParseModeFlags(s string) (ModeFlags, error) {
	m := ModeDefault
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == '|'
	}) {
		switch normalizeOption(part) {
		case "", "default":
		case "branch":
			m |= ModeBranch
		case "nlopt":
			m |= ModeNlopt
		case "manual":
			m |= ModeManual
		default:
			return ModeDefault, errors.Errorf("unknown mode %q", part)
		}
	}
	return m, nil
}

func normalizeOption(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// Params carries every solver and optimizer tuning knob. Construct it with
// DefaultParams and override the fields of interest, or apply textual
// overrides with ApplyOptions.
type Params struct {
	// TimeLimit bounds the wall-clock duration of a Solve or Optimize
	// call, in seconds. Zero or negative means no limit.
	TimeLimit float64 `mapstructure:"time_limit"`

	// Limit bounds the number of outer iterations of one solve run. A
	// zero limit performs no sweep and returns the initial assignment.
	Limit int `mapstructure:"limit"`

	// KappaMin, KappaStep, and KappaMax govern the escalation of the
	// infeasibility pressure. Kappa starts at KappaMin and, after the
	// warmup W, grows by KappaStep*(remaining/m)^Alpha per iteration;
	// crossing KappaMax terminates the run.
	KappaMin  float64 `mapstructure:"kappa_min"`
	KappaStep float64 `mapstructure:"kappa_step"`
	KappaMax  float64 `mapstructure:"kappa_max"`

	// Alpha controls how strongly kappa growth responds to the remaining
	// violation mass.
	Alpha float64 `mapstructure:"alpha"`

	// Theta is the preference memory in [0,1]: 0 erases the P matrix at
	// every row update, 1 preserves it untouched.
	Theta float64 `mapstructure:"theta"`

	// Delta is the base magnitude of a preference update. A negative
	// value requests automatic computation from the normalized costs.
	Delta float64 `mapstructure:"delta"`

	// W is the warmup iteration count before kappa starts growing.
	W int `mapstructure:"w"`

	// Order selects the per-sweep constraint ordering policy.
	Order OrderType `mapstructure:"order"`

	// InitPolicy and InitRandom govern assignment initialization.
	// InitRandom is the Bernoulli probability of flipping each position
	// after the policy ran.
	InitPolicy InitPolicyType `mapstructure:"init_policy"`
	InitRandom float64        `mapstructure:"init_random"`

	// Push-phase controls: number of pushes, kappa multiplier of the
	// amplified sweep, objective amplification factor, and ordinary
	// sweeps after each push.
	PushesLimit               int     `mapstructure:"pushes_limit"`
	PushingKFactor            float64 `mapstructure:"pushing_k_factor"`
	PushingObjectiveAmplifier float64 `mapstructure:"pushing_objective_amplifier"`
	PushingIterationLimit     int     `mapstructure:"pushing_iteration_limit"`

	// Thread is the optimizer worker count. Zero selects GOMAXPROCS.
	Thread int `mapstructure:"thread"`

	// Seed initializes the root random engine; worker w derives its own
	// engine from Seed+w. Zero selects a clock-based seed.
	Seed int64 `mapstructure:"seed"`

	// Preprocessor enables the pre-affectation pass on Solve/Optimize.
	Preprocessor PreprocessorOption `mapstructure:"preprocessor"`

	// FloatType selects the floating-point width of the solver kernels.
	FloatType FloatType `mapstructure:"float_type"`

	// Observer attaches a multiplier observer to worker 0.
	Observer ObserverType `mapstructure:"observer"`

	// ObserverBase is the file-name base of observer output.
	ObserverBase string `mapstructure:"observer_base"`

	// Debug enables per-sweep trace logging. Expensive.
	Debug bool `mapstructure:"debug"`

	// Mode is the optimizer behavior bit set. Only the default engine is
	// implemented; branch, nlopt, and manual fall back to it with a
	// warning.
	Mode ModeFlags `mapstructure:"mode"`
}

// DefaultParams returns the parameter defaults.
func DefaultParams() Params {
	return Params{
		TimeLimit:                 0,
		Limit:                     1000,
		KappaMin:                  0,
		KappaStep:                 1e-3,
		KappaMax:                  0.6,
		Alpha:                     1.0,
		Theta:                     0.5,
		Delta:                     -1, // auto
		W:                         20,
		Order:                     OrderNone,
		InitPolicy:                InitBastert,
		InitRandom:                0.5,
		PushesLimit:               100,
		PushingKFactor:            0.9,
		PushingObjectiveAmplifier: 5,
		PushingIterationLimit:     20,
		Thread:                    0,
		Seed:                      0,
		Preprocessor:              PreprocessorNone,
		FloatType:                 Float64,
		Observer:                  ObserverNone,
		ObserverBase:              "itm",
		Debug:                     false,
		Mode:                      ModeDefault,
	}
}

// validate checks the parameter ranges that the solver depends on.
func (p *Params) validate() error {
	if p.Theta < 0 || p.Theta > 1 {
		return errors.Errorf("theta %g outside [0,1]", p.Theta)
	}
	if p.InitRandom < 0 || p.InitRandom > 1 {
		return errors.Errorf("init_random %g outside [0,1]", p.InitRandom)
	}
	if p.KappaMin < 0 || p.KappaMax < p.KappaMin {
		return errors.Errorf("kappa bounds [%g,%g] invalid",
			p.KappaMin, p.KappaMax)
	}
	if p.Alpha < 0 {
		return errors.Errorf("alpha %g must be non-negative", p.Alpha)
	}
	if p.PushingObjectiveAmplifier < 0 {
		return errors.Errorf("pushing_objective_amplifier %g must be non-negative",
			p.PushingObjectiveAmplifier)
	}
	if p.Limit < 0 {
		p.Limit = math.MaxInt32
	}
	if p.PushesLimit < 0 || p.PushingIterationLimit <= 0 {
		p.PushesLimit = 0
	}
	return nil
}

// ApplyOptions decodes textual key=value overrides onto the receiver.
// Values decode weakly, so "limit=5000 theta=0.5 order=random-sorting" all
// work from strings. Unknown keys are an error.
func (p *Params) ApplyOptions(options map[string]string) error {
	if len(options) == 0 {
		return nil
	}

	input := make(map[string]interface{}, len(options))
	for k, v := range options {
		input[strings.ToLower(strings.TrimSpace(k))] = v
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       paramDecodeHook,
	})
	if err != nil {
		return errors.Wrap(err, "building parameter decoder")
	}

	if err := decoder.Decode(input); err != nil {
		return errors.Wrap(err, "decoding parameter overrides")
	}

	return nil
}

// paramDecodeHook parses the textual enumeration options of Params.
func paramDecodeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)

	switch to {
	case reflect.TypeOf(OrderType(0)):
		return ParseOrderType(s)
	case reflect.TypeOf(InitPolicyType(0)):
		return ParseInitPolicyType(s)
	case reflect.TypeOf(PreprocessorOption(0)):
		return ParsePreprocessorOption(s)
	case reflect.TypeOf(FloatType(0)):
		return ParseFloatType(s)
	case reflect.TypeOf(ObserverType(0)):
		return ParseObserverType(s)
	case reflect.TypeOf(ModeFlags(0)):
		return ParseModeFlags(s)
	}

	return data, nil
}
