package taxlot

import (
	"fmt"
	"math"
)

// FilingStatus selects which bracket schedule applies.
type FilingStatus int

const (
	Single FilingStatus = iota
	MarriedJoint
	MarriedSeparate
	HeadOfHousehold
)

func (s FilingStatus) String() string {
	switch s {
	case Single:
		return "single"
	case MarriedJoint:
		return "married-joint"
	case MarriedSeparate:
		return "married-separate"
	case HeadOfHousehold:
		return "head-of-household"
	default:
		return "unknown"
	}
}

// ParseFilingStatus parses a string into a FilingStatus.
func ParseFilingStatus(s string) (FilingStatus, error) {
	switch s {
	case "single":
		return Single, nil
	case "married-joint", "married":
		return MarriedJoint, nil
	case "married-separate":
		return MarriedSeparate, nil
	case "head-of-household", "hoh":
		return HeadOfHousehold, nil
	default:
		return 0, fmt.Errorf("unknown filing status: %q", s)
	}
}

// TaxTreatment is the tax character of an account. Gains only matter in
// taxable accounts; tax-deferred and tax-free accounts are excluded from
// harvesting altogether.
type TaxTreatment int

const (
	Taxable TaxTreatment = iota
	TaxDeferred
	TaxFree
)

func (t TaxTreatment) String() string {
	switch t {
	case Taxable:
		return "taxable"
	case TaxDeferred:
		return "tax-deferred"
	case TaxFree:
		return "tax-free"
	default:
		return "unknown"
	}
}

// GainsTaxed reports whether realized gains in an account with this
// treatment are taxable events.
func (t TaxTreatment) GainsTaxed() bool { return t == Taxable }

// ParseTaxTreatment parses a string into a TaxTreatment.
func ParseTaxTreatment(s string) (TaxTreatment, error) {
	switch s {
	case "taxable":
		return Taxable, nil
	case "tax-deferred", "deferred":
		return TaxDeferred, nil
	case "tax-free", "free":
		return TaxFree, nil
	default:
		return 0, fmt.Errorf("unknown tax treatment: %q", s)
	}
}

// Bracket is one progressive tax bracket. Max is +Inf for the top bracket.
// The 0% long-term bracket is a first-class bracket like any other.
type Bracket struct {
	Min  float64
	Max  float64
	Rate float64
}

// contains reports whether the bracket covers the given taxable income.
func (b Bracket) contains(income float64) bool { return income >= b.Min && income < b.Max }

// StateTaxFunc computes the total state tax for a taxable income. State
// schedules are supplied as opaque functions so nonlinear shapes (flat
// taxes, surtaxes, bracket jumps) are captured exactly; the engine only
// ever re-queries them.
type StateTaxFunc func(taxableIncome float64, status FilingStatus) float64

// yearTable holds one year's schedules per filing status.
type yearTable struct {
	ordinary  map[FilingStatus][]Bracket
	longTerm  map[FilingStatus][]Bracket
	deduction map[FilingStatus]float64
}

// TaxTables is the year-indexed bracket and deduction registry. Tables are
// static configuration; the engine only looks them up.
type TaxTables struct {
	years  map[int]yearTable
	states map[string]StateTaxFunc
}

// NewTaxTables creates an empty registry. Most callers want DefaultTaxTables.
func NewTaxTables() *TaxTables {
	return &TaxTables{years: make(map[int]yearTable), states: make(map[string]StateTaxFunc)}
}

// AddYear registers the schedules of one tax year.
func (t *TaxTables) AddYear(year int, ordinary, longTerm map[FilingStatus][]Bracket, deduction map[FilingStatus]float64) {
	t.years[year] = yearTable{ordinary: ordinary, longTerm: longTerm, deduction: deduction}
}

// RegisterState registers a per-state tax function under a state code.
func (t *TaxTables) RegisterState(code string, fn StateTaxFunc) { t.states[code] = fn }

// StandardDeduction returns the standard deduction for a year and status.
func (t *TaxTables) StandardDeduction(year int, status FilingStatus) (float64, error) {
	y, ok := t.years[year]
	if !ok {
		return 0, fmt.Errorf("no tax table for year %d", year)
	}
	d, ok := y.deduction[status]
	if !ok {
		return 0, fmt.Errorf("no standard deduction for %s in %d", status, year)
	}
	return d, nil
}

// TaxableIncome converts gross income to taxable income: gross minus the
// standard deduction, floored at zero.
func (t *TaxTables) TaxableIncome(grossIncome float64, status FilingStatus, year int) (float64, error) {
	d, err := t.StandardDeduction(year, status)
	if err != nil {
		return 0, err
	}
	return math.Max(0, grossIncome-d), nil
}

func (t *TaxTables) schedule(year int, status FilingStatus, longTerm bool) ([]Bracket, error) {
	y, ok := t.years[year]
	if !ok {
		return nil, fmt.Errorf("no tax table for year %d", year)
	}
	var brackets []Bracket
	if longTerm {
		brackets = y.longTerm[status]
	} else {
		brackets = y.ordinary[status]
	}
	if len(brackets) == 0 {
		return nil, fmt.Errorf("no bracket schedule for %s in %d", status, year)
	}
	return brackets, nil
}

// marginalRate walks the ordered bracket list and returns the rate of the
// bracket containing the taxable income.
func marginalRate(brackets []Bracket, taxableIncome float64) float64 {
	for _, b := range brackets {
		if b.contains(taxableIncome) {
			return b.Rate
		}
	}
	// income at or beyond the top bracket's open end
	return brackets[len(brackets)-1].Rate
}

// progressiveTax integrates the schedule over [0, taxableIncome].
func progressiveTax(brackets []Bracket, taxableIncome float64) float64 {
	var tax float64
	for _, b := range brackets {
		if taxableIncome <= b.Min {
			break
		}
		tax += (math.Min(taxableIncome, b.Max) - b.Min) * b.Rate
	}
	return tax
}

// OrdinaryRate returns the marginal ordinary-income rate at the given
// taxable income.
func (t *TaxTables) OrdinaryRate(taxableIncome float64, status FilingStatus, year int) (float64, error) {
	brackets, err := t.schedule(year, status, false)
	if err != nil {
		return 0, err
	}
	return marginalRate(brackets, taxableIncome), nil
}

// LTCGRate returns the marginal long-term capital gains rate at the given
// taxable income.
func (t *TaxTables) LTCGRate(taxableIncome float64, status FilingStatus, year int) (float64, error) {
	brackets, err := t.schedule(year, status, true)
	if err != nil {
		return 0, err
	}
	return marginalRate(brackets, taxableIncome), nil
}

// OrdinaryTax returns the total ordinary income tax on a taxable income.
func (t *TaxTables) OrdinaryTax(taxableIncome float64, status FilingStatus, year int) (float64, error) {
	brackets, err := t.schedule(year, status, false)
	if err != nil {
		return 0, err
	}
	return progressiveTax(brackets, taxableIncome), nil
}

// LTCGTax returns the tax on a long-term gain stacked on top of a taxable
// ordinary income: the gain fills the long-term brackets starting where
// ordinary income ends.
func (t *TaxTables) LTCGTax(taxableIncome, gain float64, status FilingStatus, year int) (float64, error) {
	brackets, err := t.schedule(year, status, true)
	if err != nil {
		return 0, err
	}
	return progressiveTax(brackets, taxableIncome+gain) - progressiveTax(brackets, taxableIncome), nil
}

// StateTax returns the state tax on a taxable income, or 0 when the state
// code is empty or unknown.
func (t *TaxTables) StateTax(code string, taxableIncome float64, status FilingStatus) float64 {
	fn, ok := t.states[code]
	if !ok {
		return 0
	}
	return fn(taxableIncome, status)
}

// ZeroBracketCeiling returns the top of the 0% long-term bracket, i.e. the
// taxable income up to which long-term gains are untaxed.
func (t *TaxTables) ZeroBracketCeiling(status FilingStatus, year int) (float64, error) {
	brackets, err := t.schedule(year, status, true)
	if err != nil {
		return 0, err
	}
	for _, b := range brackets {
		if b.Rate == 0 {
			return b.Max, nil
		}
	}
	return 0, nil
}

// EffectiveRateOn computes the combined federal+state effective rate on a
// hypothetical extra gain, by re-querying the total tax at grossIncome and
// at grossIncome+testGain and taking the difference quotient. Re-querying —
// rather than reading a single marginal rate — captures bracket crossings
// and nonlinear state schedules exactly.
func (t *TaxTables) EffectiveRateOn(grossIncome, testGain float64, status FilingStatus, year int, state string, longTerm bool) (float64, error) {
	if testGain == 0 {
		return 0, nil
	}

	total := func(gross float64) (float64, error) {
		taxable, err := t.TaxableIncome(gross, status, year)
		if err != nil {
			return 0, err
		}
		var federal float64
		if longTerm {
			// ordinary income is unchanged, the gain stacks on top
			base, err := t.TaxableIncome(grossIncome, status, year)
			if err != nil {
				return 0, err
			}
			federal, err = t.OrdinaryTax(base, status, year)
			if err != nil {
				return 0, err
			}
			ltcg, err := t.LTCGTax(base, taxable-base, status, year)
			if err != nil {
				return 0, err
			}
			federal += ltcg
		} else {
			var err error
			federal, err = t.OrdinaryTax(taxable, status, year)
			if err != nil {
				return 0, err
			}
		}
		return federal + t.StateTax(state, taxable, status), nil
	}

	before, err := total(grossIncome)
	if err != nil {
		return 0, err
	}
	after, err := total(grossIncome + testGain)
	if err != nil {
		return 0, err
	}
	return (after - before) / testGain, nil
}
