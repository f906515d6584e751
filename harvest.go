package taxlot

import (
	"fmt"
	"math"
	"slices"
)

// washSaleWindowDays is the span, around a loss sale, within which a
// repurchase of a substantially identical asset risks disallowing the loss.
// The optimizer only flags the risk; it does not enforce wash-sale law.
const washSaleWindowDays = 30

// capitalLossOffsetCap returns the yearly cap on capital losses deducted
// against ordinary income. Losses beyond it carry forward.
func capitalLossOffsetCap(status FilingStatus) float64 {
	if status == MarriedSeparate {
		return 1500
	}
	return 3000
}

// HarvestParams are the inputs for a harvesting recommendation over the lots
// of one asset in one account. Prices are supplied by the caller, never
// fetched here.
type HarvestParams struct {
	Lots      Lots         // the asset's lot book in the account
	Treatment TaxTreatment // the account's tax treatment
	Price     Money        // current market price per unit
	FeeRate   float64      // one-way trading fee, as a fraction of traded value
	On        Date         // evaluation date; zero means today

	GrossIncome float64
	Status      FilingStatus
	Year        int
	State       string
	Tables      *TaxTables

	// Gain harvesting only.
	FutureRate       float64 // caller-supplied expected future long-term rate
	IncludeShortTerm bool    // opt in to realizing short-term gains once long-term room is exhausted
}

// Recommendation is the advisory output of the harvest optimizer. It never
// mutates the ledger.
type Recommendation struct {
	Harvestable  float64  // loss or gain amount worth realizing
	SoldValue    float64  // market value of the positions to trade
	TradingFees  float64  // round-trip cost: 2 * SoldValue * FeeRate
	TaxImpact    float64  // tax benefit (losses) or future tax avoided (gains)
	CarryForward float64  // losses beyond the ordinary-income offset cap
	NetBenefit   float64  // TaxImpact - TradingFees
	Worthwhile   bool     // NetBenefit > 0
	WashSaleRisk bool     // a repurchase within 30 days would risk disallowing the loss
	LotIDs       []string // lots involved, in consumption order
}

// HarvestLossCandidates sums the unrealized losses across the given lots and
// weighs the tax benefit of realizing them against the round-trip trading
// cost. Losses offset ordinary income up to the yearly cap; the excess is
// reported as carryforward, not benefit.
func HarvestLossCandidates(p HarvestParams) (Recommendation, error) {
	if !p.Treatment.GainsTaxed() {
		// no taxable event, nothing to harvest
		return Recommendation{}, nil
	}
	if p.On.IsZero() {
		p.On = Today()
	}
	price := p.Price.Float64()

	var rec Recommendation
	var totalLoss float64
	for _, lot := range p.Lots.Available() {
		value := price * lot.Remaining.Float64()
		basis := lot.CostBasis().Float64()
		if value >= basis {
			continue
		}
		totalLoss += basis - value
		rec.SoldValue += value
		rec.LotIDs = append(rec.LotIDs, lot.ID)

		// A recent buy means the about-to-be-sold shares overlap the window
		// even before any rebuy.
		if p.On.Sub(lot.AcquiredOn) <= washSaleWindowDays {
			rec.WashSaleRisk = true
		}
	}
	if totalLoss == 0 {
		return rec, nil
	}

	offset := math.Min(totalLoss, capitalLossOffsetCap(p.Status))
	rate, err := p.Tables.EffectiveRateOn(p.GrossIncome, -offset, p.Status, p.Year, p.State, false)
	if err != nil {
		return Recommendation{}, fmt.Errorf("cannot estimate loss harvest benefit: %w", err)
	}

	rec.Harvestable = totalLoss
	rec.CarryForward = totalLoss - offset
	rec.TaxImpact = offset * rate
	rec.TradingFees = 2 * rec.SoldValue * p.FeeRate
	rec.NetBenefit = rec.TaxImpact - rec.TradingFees
	rec.Worthwhile = rec.NetBenefit > 0
	return rec, nil
}

// HarvestGainCandidates recommends realizing long-term gains while the
// filer's taxable income leaves room in the 0% long-term bracket. Lots with
// the highest gain ratio come first, minimizing the dollar value traded per
// dollar of gain harvested. Short-term gains carry no rate benefit by
// themselves and are only included once long-term room is exhausted and the
// caller opted in.
func HarvestGainCandidates(p HarvestParams) (Recommendation, error) {
	if !p.Treatment.GainsTaxed() {
		return Recommendation{}, nil
	}
	if p.On.IsZero() {
		p.On = Today()
	}
	price := p.Price.Float64()

	taxable, err := p.Tables.TaxableIncome(p.GrossIncome, p.Status, p.Year)
	if err != nil {
		return Recommendation{}, err
	}
	ceiling, err := p.Tables.ZeroBracketCeiling(p.Status, p.Year)
	if err != nil {
		return Recommendation{}, err
	}
	room := math.Max(0, ceiling-taxable)

	type candidate struct {
		lot   Lot
		gain  float64
		value float64
		ratio float64
	}
	var longs, shorts []candidate
	for _, lot := range p.Lots.Available() {
		value := price * lot.Remaining.Float64()
		gain := value - lot.CostBasis().Float64()
		if gain <= 0 {
			continue
		}
		c := candidate{lot: lot, gain: gain, value: value, ratio: gain / value}
		if lot.LongTermOn(p.On) {
			longs = append(longs, c)
		} else {
			shorts = append(shorts, c)
		}
	}
	byRatio := func(a, b candidate) int {
		switch {
		case a.ratio > b.ratio:
			return -1
		case a.ratio < b.ratio:
			return 1
		default:
			return 0
		}
	}
	slices.SortStableFunc(longs, byRatio)
	slices.SortStableFunc(shorts, byRatio)

	var rec Recommendation
	left := room
	for _, c := range longs {
		if left <= 0 {
			break
		}
		take := math.Min(c.gain, left)
		// a partial harvest sells the lot fraction carrying that much gain
		rec.SoldValue += c.value * take / c.gain
		rec.Harvestable += take
		rec.LotIDs = append(rec.LotIDs, c.lot.ID)
		left -= take
	}

	// Future tax avoided by resetting the basis now, at 0% cost.
	rec.TaxImpact = rec.Harvestable * p.FutureRate

	// Short-term gains get no bracket benefit, so they only come in after
	// long-term harvesting has used up the 0% room.
	var currentTax float64
	if p.IncludeShortTerm && left <= 0 {
		for _, c := range shorts {
			rec.SoldValue += c.value
			rec.Harvestable += c.gain
			rec.LotIDs = append(rec.LotIDs, c.lot.ID)
			// short-term gains are taxed now at the ordinary effective rate
			rate, err := p.Tables.EffectiveRateOn(p.GrossIncome, c.gain, p.Status, p.Year, p.State, false)
			if err != nil {
				return Recommendation{}, err
			}
			currentTax += c.gain * rate
			rec.TaxImpact += c.gain * p.FutureRate
		}
	}

	rec.TradingFees = 2 * rec.SoldValue * p.FeeRate
	rec.NetBenefit = rec.TaxImpact - currentTax - rec.TradingFees
	rec.Worthwhile = rec.Harvestable > 0 && rec.NetBenefit > 0
	return rec, nil
}
