package taxlot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxTables_TaxableIncome(t *testing.T) {
	tables := DefaultTaxTables()

	taxable, err := tables.TaxableIncome(60000, Single, 2024)
	require.NoError(t, err)
	assert.InDelta(t, 45400, taxable, 0.01, "60000 gross minus the 14600 standard deduction")

	// income below the deduction floors at zero, never negative
	taxable, err = tables.TaxableIncome(10000, Single, 2024)
	require.NoError(t, err)
	assert.Zero(t, taxable)

	_, err = tables.TaxableIncome(60000, Single, 1999)
	assert.Error(t, err, "unknown year must surface, not default")
}

func TestTaxTables_OrdinaryTax(t *testing.T) {
	tables := DefaultTaxTables()

	// 2024 single, taxable 45400: 11600 at 10% + 33800 at 12%
	tax, err := tables.OrdinaryTax(45400, Single, 2024)
	require.NoError(t, err)
	assert.InDelta(t, 1160+4056, tax, 0.01)

	rate, err := tables.OrdinaryRate(45400, Single, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0.12, rate)

	// bracket crossing: one more dollar of income is in the 22% bracket
	rate, err = tables.OrdinaryRate(47150, Single, 2024)
	require.NoError(t, err)
	assert.Equal(t, 0.22, rate)
}

func TestTaxTables_LTCGStacking(t *testing.T) {
	tables := DefaultTaxTables()

	// taxable ordinary income 40000, gain 10000: the gain fills the 0%
	// bracket up to 47025, the rest is taxed at 15%
	tax, err := tables.LTCGTax(40000, 10000, Single, 2024)
	require.NoError(t, err)
	assert.InDelta(t, (40000+10000-47025)*0.15, tax, 0.01)

	// entirely inside the 0% bracket
	tax, err = tables.LTCGTax(30000, 10000, Single, 2024)
	require.NoError(t, err)
	assert.Zero(t, tax)

	ceiling, err := tables.ZeroBracketCeiling(Single, 2024)
	require.NoError(t, err)
	assert.Equal(t, 47025.0, ceiling)
}

func TestTaxTables_StateTax(t *testing.T) {
	tables := DefaultTaxTables()

	assert.InDelta(t, 50000*0.044, tables.StateTax("CO", 50000, Single), 0.01, "flat state")
	assert.Greater(t, tables.StateTax("CA", 50000, Single), 0.0, "progressive state")
	assert.Zero(t, tables.StateTax("", 50000, Single), "no state, no tax")
	assert.Zero(t, tables.StateTax("ZZ", 50000, Single), "unknown state, no tax")
}

func TestTaxTables_EffectiveRateOn(t *testing.T) {
	tables := DefaultTaxTables()

	// well inside the 12% bracket, no state: the effective rate is 12%
	rate, err := tables.EffectiveRateOn(50000, 1000, Single, 2024, "", false)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, rate, 0.001)

	// a gain spanning the 12%->22% boundary blends the two rates
	rate, err = tables.EffectiveRateOn(60000, 10000, Single, 2024, "", false)
	require.NoError(t, err)
	assert.Greater(t, rate, 0.12)
	assert.Less(t, rate, 0.22)

	// long-term gain fully inside the 0% bracket costs nothing
	rate, err = tables.EffectiveRateOn(40000, 5000, Single, 2024, "", true)
	require.NoError(t, err)
	assert.Zero(t, rate)

	// a flat state adds its rate on top
	rate, err = tables.EffectiveRateOn(50000, 1000, Single, 2024, "CO", false)
	require.NoError(t, err)
	assert.InDelta(t, 0.12+0.044, rate, 0.001)

	// zero test gain cannot divide; defined as zero
	rate, err = tables.EffectiveRateOn(50000, 0, Single, 2024, "", false)
	require.NoError(t, err)
	assert.Zero(t, rate)

	// a negative test gain (a deduction) yields the saving rate
	rate, err = tables.EffectiveRateOn(50000, -3000, Single, 2024, "", false)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, rate, 0.001)
}

func TestParseFilingStatus(t *testing.T) {
	for s, want := range map[string]FilingStatus{
		"single": Single, "married-joint": MarriedJoint, "married": MarriedJoint,
		"married-separate": MarriedSeparate, "head-of-household": HeadOfHousehold, "hoh": HeadOfHousehold,
	} {
		got, err := ParseFilingStatus(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
	_, err := ParseFilingStatus("widowed")
	assert.Error(t, err)
}

func TestTaxTreatment(t *testing.T) {
	assert.True(t, Taxable.GainsTaxed())
	assert.False(t, TaxDeferred.GainsTaxed())
	assert.False(t, TaxFree.GainsTaxed())

	got, err := ParseTaxTreatment("deferred")
	require.NoError(t, err)
	assert.Equal(t, TaxDeferred, got)
}
