package taxlot

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Selection errors. All are local, recoverable by fixing the request.
var (
	// ErrInsufficientLots means the requested disposal exceeds the available
	// supply. It is always surfaced, never auto-corrected.
	ErrInsufficientLots = errors.New("insufficient lots")
	// ErrInvalidSelection means a specific selection references an unknown or
	// exhausted lot, or asks for more than a lot holds.
	ErrInvalidSelection = errors.New("invalid lot selection")
	// ErrZeroQuantity means the requested quantity is zero or negative.
	ErrZeroQuantity = errors.New("quantity must be positive")
)

// SpecificLot designates a quantity to consume from one lot. Order matters:
// when the designated quantities exceed the requested total, lots are
// consumed in caller order until the total is covered.
type SpecificLot struct {
	LotID    string
	Quantity Quantity
}

// Select resolves a requested quantity into an ordered consumption plan
// against the given lot book, under the given method. It is a pure function:
// it never mutates the book and the same inputs always produce the same plan.
//
// The specific argument is only consulted for the Specific method.
func Select(book Lots, quantity Quantity, method Method, specific []SpecificLot) ([]LotConsumption, error) {
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrZeroQuantity, quantity)
	}

	open := book.Available()
	if method != Specific && open.TotalRemaining().LessThan(quantity) {
		return nil, fmt.Errorf("%w: requested %s but only %s available", ErrInsufficientLots, quantity, open.TotalRemaining())
	}

	switch method {
	case FIFO, LIFO, HIFO, LOFO:
		return walk(orderLots(open, method), quantity), nil
	case AverageCost:
		return proRata(open, quantity), nil
	case Specific:
		return specificPlan(book, quantity, specific)
	default:
		return nil, fmt.Errorf("unsupported selection method %v", method)
	}
}

// orderLots returns the open lots sorted per the method's policy. Ties break
// deterministically: by lot identity for the date-ordered methods, by
// earliest acquisition date for the cost-ordered ones (preferring the longer
// holding period when costs tie).
func orderLots(open Lots, method Method) Lots {
	ordered := slices.Clone(open)
	byID := func(a, b Lot) int { return strings.Compare(a.ID, b.ID) }
	byDate := func(a, b Lot) int {
		if a.AcquiredOn.Before(b.AcquiredOn) {
			return -1
		}
		if a.AcquiredOn.After(b.AcquiredOn) {
			return 1
		}
		return byID(a, b)
	}
	byCost := func(a, b Lot) int {
		if a.UnitCost.LessThan(b.UnitCost) {
			return -1
		}
		if a.UnitCost.GreaterThan(b.UnitCost) {
			return 1
		}
		return byDate(a, b)
	}

	switch method {
	case FIFO:
		slices.SortStableFunc(ordered, byDate)
	case LIFO:
		slices.SortStableFunc(ordered, func(a, b Lot) int {
			if a.AcquiredOn.After(b.AcquiredOn) {
				return -1
			}
			if a.AcquiredOn.Before(b.AcquiredOn) {
				return 1
			}
			return byID(a, b)
		})
	case HIFO:
		slices.SortStableFunc(ordered, func(a, b Lot) int {
			if a.UnitCost.GreaterThan(b.UnitCost) {
				return -1
			}
			if a.UnitCost.LessThan(b.UnitCost) {
				return 1
			}
			return byDate(a, b)
		})
	case LOFO:
		slices.SortStableFunc(ordered, byCost)
	}
	return ordered
}

// walk consumes the ordered lots front to back until the requested quantity
// is exhausted. The caller guarantees the total remaining covers the request.
func walk(ordered Lots, quantity Quantity) []LotConsumption {
	var plan []LotConsumption
	left := quantity
	for _, lot := range ordered {
		if left.IsZero() {
			break
		}
		take := left.Min(lot.Remaining)
		plan = append(plan, LotConsumption{
			LotID:      lot.ID,
			Quantity:   take,
			UnitCost:   lot.UnitCost,
			AcquiredOn: lot.AcquiredOn,
		})
		left = left.Sub(take)
	}
	return plan
}

// proRata implements the average-cost method: the sale consumes a slice of
// every open lot proportional to its share of the total remaining quantity,
// all at the weighted-average unit cost. The last lot absorbs the division
// residue so the plan sums to the requested quantity, clamped to that lot's
// remaining quantity: rounding in the earlier shares must never overdraw it.
func proRata(open Lots, quantity Quantity) []LotConsumption {
	total := open.TotalRemaining()

	var weighted Money
	for _, lot := range open {
		weighted = weighted.Add(lot.UnitCost.Mul(lot.Remaining))
	}
	average := weighted.Div(total)

	plan := make([]LotConsumption, 0, len(open))
	var allocated Quantity
	for i, lot := range open {
		var take Quantity
		if i == len(open)-1 {
			take = quantity.Sub(allocated).Min(lot.Remaining)
		} else {
			take = quantity.Mul(lot.Remaining).Div(total)
		}
		allocated = allocated.Add(take)
		plan = append(plan, LotConsumption{
			LotID:      lot.ID,
			Quantity:   take,
			UnitCost:   average,
			AcquiredOn: lot.AcquiredOn,
		})
	}
	return plan
}

// specificPlan validates the caller-designated lots and consumes them in
// caller order until the requested quantity is covered. Designating more
// than the request is allowed; the excess is clipped. Designating less is
// ErrInsufficientLots.
func specificPlan(book Lots, quantity Quantity, specific []SpecificLot) ([]LotConsumption, error) {
	if len(specific) == 0 {
		return nil, fmt.Errorf("%w: no lots designated", ErrInvalidSelection)
	}

	var covered Quantity
	seen := make(map[string]struct{}, len(specific))
	for _, s := range specific {
		lot := book.Get(s.LotID)
		if lot == nil {
			return nil, fmt.Errorf("%w: lot %s does not exist", ErrInvalidSelection, s.LotID)
		}
		if lot.Remaining.IsZero() {
			return nil, fmt.Errorf("%w: lot %s is exhausted", ErrInvalidSelection, s.LotID)
		}
		if !s.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: lot %s designated with non-positive quantity %s", ErrInvalidSelection, s.LotID, s.Quantity)
		}
		if s.Quantity.GreaterThan(lot.Remaining) {
			return nil, fmt.Errorf("%w: lot %s has %s remaining, %s requested", ErrInvalidSelection, s.LotID, lot.Remaining, s.Quantity)
		}
		if _, dup := seen[s.LotID]; dup {
			return nil, fmt.Errorf("%w: lot %s designated twice", ErrInvalidSelection, s.LotID)
		}
		seen[s.LotID] = struct{}{}
		covered = covered.Add(s.Quantity)
	}
	if covered.LessThan(quantity) {
		return nil, fmt.Errorf("%w: designated lots cover %s of requested %s", ErrInsufficientLots, covered, quantity)
	}

	var plan []LotConsumption
	left := quantity
	for _, s := range specific {
		if left.IsZero() {
			break
		}
		lot := book.Get(s.LotID)
		take := left.Min(s.Quantity)
		plan = append(plan, LotConsumption{
			LotID:      lot.ID,
			Quantity:   take,
			UnitCost:   lot.UnitCost,
			AcquiredOn: lot.AcquiredOn,
		})
		left = left.Sub(take)
	}
	return plan, nil
}
