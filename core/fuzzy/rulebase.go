package fuzzy

import "fmt"

// Variable names of the reference HVAC controller.
const (
	TemperatureVar = "Temperature"
	ErrorVar       = "Error"
	PowerVar       = "Power"
)

// Term names of the reference HVAC controller.
const (
	TempVeryCold = "Muy Frío"
	TempCold     = "Frío"
	TempMild     = "Templado"
	TempHot      = "Caliente"
	TempVeryHot  = "Muy Caliente"

	ErrLargeNegative = "Negativo Grande"
	ErrNegative      = "Negativo"
	ErrZero          = "Cero"
	ErrPositive      = "Positivo"
	ErrLargePositive = "Positivo Grande"

	PowerVeryLow  = "Muy Baja"
	PowerLow      = "Baja"
	PowerMedium   = "Media"
	PowerHigh     = "Alta"
	PowerVeryHigh = "Muy Alta"
)

type termDef struct {
	name string
	mf   func() (MembershipFunction, error)
}

func tri(a, b, c float64) func() (MembershipFunction, error) {
	return func() (MembershipFunction, error) { return NewTriangular(a, b, c) }
}

func trap(a, b, c, d float64) func() (MembershipFunction, error) {
	return func() (MembershipFunction, error) { return NewTrapezoidal(a, b, c, d) }
}

func gauss(mean, sigma float64) func() (MembershipFunction, error) {
	return func() (MembershipFunction, error) { return NewGaussian(mean, sigma) }
}

func mustVariable(name string, lo, hi float64, terms []termDef) *Variable {
	v, err := NewVariable(name, lo, hi)
	if err != nil {
		panic(err)
	}
	for _, t := range terms {
		mf, err := t.mf()
		if err != nil {
			panic(fmt.Sprintf("invalid term %q: %v", t.name, err))
		}
		if err := v.AddTerm(t.name, mf); err != nil {
			panic(err)
		}
	}
	return v
}

// TemperatureVariable covers 10..35 °C with five triangular terms.
func TemperatureVariable() *Variable {
	return mustVariable(TemperatureVar, 10, 35, []termDef{
		{TempVeryCold, tri(10, 10, 15)},
		{TempCold, tri(12, 16, 20)},
		{TempMild, tri(18, 22, 26)},
		{TempHot, tri(24, 28, 32)},
		{TempVeryHot, tri(30, 35, 35)},
	})
}

// ErrorVariable covers -10..10 °C of setpoint error with five Gaussian terms.
func ErrorVariable() *Variable {
	return mustVariable(ErrorVar, -10, 10, []termDef{
		{ErrLargeNegative, gauss(-7, 2)},
		{ErrNegative, gauss(-3.5, 1.5)},
		{ErrZero, gauss(0, 1.5)},
		{ErrPositive, gauss(3.5, 1.5)},
		{ErrLargePositive, gauss(7, 2)},
	})
}

// PowerVariable covers 0..100 % of actuator power.
func PowerVariable() *Variable {
	return mustVariable(PowerVar, 0, 100, []termDef{
		{PowerVeryLow, trap(0, 0, 10, 20)},
		{PowerLow, tri(15, 30, 45)},
		{PowerMedium, tri(35, 50, 65)},
		{PowerHigh, tri(55, 70, 85)},
		{PowerVeryHigh, trap(80, 90, 100, 100)},
	})
}

var (
	temperatureTerms = []string{TempVeryCold, TempCold, TempMild, TempHot, TempVeryHot}
	errorTerms       = []string{ErrLargeNegative, ErrNegative, ErrZero, ErrPositive, ErrLargePositive}

	// Rows follow errorTerms, columns follow temperatureTerms.
	hvacRuleMatrix = [5][5]string{
		{PowerVeryHigh, PowerVeryHigh, PowerHigh, PowerMedium, PowerLow},
		{PowerHigh, PowerHigh, PowerMedium, PowerLow, PowerVeryLow},
		{PowerMedium, PowerMedium, PowerMedium, PowerMedium, PowerMedium},
		{PowerVeryHigh, PowerHigh, PowerMedium, PowerLow, PowerVeryLow},
		{PowerMedium, PowerLow, PowerLow, PowerVeryLow, PowerVeryLow},
	}

	simplifiedRules = [5]string{PowerVeryHigh, PowerHigh, PowerMedium, PowerLow, PowerVeryLow}
)

// HVACRuleBase returns the 25 rules over Temperature x Error.
func HVACRuleBase() []Rule {
	rs := make([]Rule, 0, len(errorTerms)*len(temperatureTerms))
	for i, e := range errorTerms {
		for j, t := range temperatureTerms {
			rs = append(rs, NewRule(
				map[string]string{TemperatureVar: t, ErrorVar: e},
				Consequent{Variable: PowerVar, Term: hvacRuleMatrix[i][j]},
			))
		}
	}
	return rs
}

// SimplifiedRuleBase returns five rules that look at the error only.
func SimplifiedRuleBase() []Rule {
	rs := make([]Rule, len(errorTerms))
	for i, e := range errorTerms {
		rs[i] = NewRule(
			map[string]string{ErrorVar: e},
			Consequent{Variable: PowerVar, Term: simplifiedRules[i]},
		)
	}
	return rs
}

func newHVACController(rules []Rule, method Method, implication Implication) (*Controller, error) {
	e := NewEngine(implication)
	e.AddRules(rules...)
	return NewController(
		[]*Variable{TemperatureVariable(), ErrorVariable()},
		PowerVariable(), e, method)
}

// NewHVACController returns a fresh controller with the full rule base.
// Every call builds new variables, engine and history.
func NewHVACController(method Method, implication Implication) (*Controller, error) {
	return newHVACController(HVACRuleBase(), method, implication)
}

// NewSimplifiedHVACController is NewHVACController with the error-only rules.
// Temperature stays registered as an input so both controllers accept the
// same samples.
func NewSimplifiedHVACController(method Method, implication Implication) (*Controller, error) {
	return newHVACController(SimplifiedRuleBase(), method, implication)
}
