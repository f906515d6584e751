package taxlot

import "math"

// This file carries the static bracket configuration shipped with the tool.
// Figures are IRS revenue-procedure values for the supported years; they are
// data, not logic, and new years are added by AddYear.

// top is the open end of the last bracket of every schedule.
var top = math.Inf(1)

// DefaultTaxTables returns tables loaded with the 2024 and 2025 federal
// schedules and a few state schedules. Callers with other needs start from
// NewTaxTables and register their own data.
func DefaultTaxTables() *TaxTables {
	t := NewTaxTables()

	t.AddYear(2024,
		map[FilingStatus][]Bracket{
			Single:          ordinary(11600, 47150, 100525, 191950, 243725, 609350),
			MarriedJoint:    ordinary(23200, 94300, 201050, 383900, 487450, 731200),
			MarriedSeparate: ordinary(11600, 47150, 100525, 191950, 243725, 365600),
			HeadOfHousehold: ordinary(16550, 63100, 100500, 191950, 243725, 609350),
		},
		map[FilingStatus][]Bracket{
			Single:          longTerm(47025, 518900),
			MarriedJoint:    longTerm(94050, 583750),
			MarriedSeparate: longTerm(47025, 291850),
			HeadOfHousehold: longTerm(63000, 551350),
		},
		map[FilingStatus]float64{
			Single: 14600, MarriedJoint: 29200, MarriedSeparate: 14600, HeadOfHousehold: 21900,
		},
	)

	t.AddYear(2025,
		map[FilingStatus][]Bracket{
			Single:          ordinary(11925, 48475, 103350, 197300, 250525, 626350),
			MarriedJoint:    ordinary(23850, 96950, 206700, 394600, 501050, 751600),
			MarriedSeparate: ordinary(11925, 48475, 103350, 197300, 250525, 375800),
			HeadOfHousehold: ordinary(17000, 64850, 103350, 197300, 250500, 626350),
		},
		map[FilingStatus][]Bracket{
			Single:          longTerm(48350, 533400),
			MarriedJoint:    longTerm(96700, 600050),
			MarriedSeparate: longTerm(48350, 300000),
			HeadOfHousehold: longTerm(64750, 566700),
		},
		map[FilingStatus]float64{
			Single: 15000, MarriedJoint: 30000, MarriedSeparate: 15000, HeadOfHousehold: 22500,
		},
	)

	// California: progressive schedule, married-joint edges are doubled.
	caSingle := []Bracket{
		{0, 10412, 0.01}, {10412, 24684, 0.02}, {24684, 38959, 0.04},
		{38959, 54081, 0.06}, {54081, 68350, 0.08}, {68350, 349137, 0.093},
		{349137, 418961, 0.103}, {418961, 698271, 0.113}, {698271, top, 0.123},
	}
	caJoint := make([]Bracket, len(caSingle))
	for i, b := range caSingle {
		caJoint[i] = Bracket{Min: b.Min * 2, Max: b.Max * 2, Rate: b.Rate}
	}
	t.RegisterState("CA", func(taxableIncome float64, status FilingStatus) float64 {
		if status == MarriedJoint {
			return progressiveTax(caJoint, taxableIncome)
		}
		return progressiveTax(caSingle, taxableIncome)
	})

	// Colorado: flat rate.
	t.RegisterState("CO", func(taxableIncome float64, _ FilingStatus) float64 {
		return taxableIncome * 0.044
	})

	return t
}

// ordinary builds the seven-rate federal ordinary schedule from its six
// inner bracket edges.
func ordinary(e1, e2, e3, e4, e5, e6 float64) []Bracket {
	return []Bracket{
		{0, e1, 0.10}, {e1, e2, 0.12}, {e2, e3, 0.22}, {e3, e4, 0.24},
		{e4, e5, 0.32}, {e5, e6, 0.35}, {e6, top, 0.37},
	}
}

// longTerm builds the three-rate federal long-term gains schedule from its
// two inner bracket edges. The 0% bracket is a bracket like any other.
func longTerm(e1, e2 float64) []Bracket {
	return []Bracket{{0, e1, 0}, {e1, e2, 0.15}, {e2, top, 0.20}}
}
