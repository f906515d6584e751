package taxlot

import (
	"fmt"

	"github.com/google/uuid"
)

// SaleRequest describes an intended disposal, before any lot has been chosen.
type SaleRequest struct {
	Asset     string
	Account   string
	Date      Date // zero means today
	Quantity  Quantity
	UnitPrice Money
	Fee       Money
	Method    Method
	Specific  []SpecificLot // consulted only for the Specific method
	Memo      string
}

// ResolveSale resolves a sale request into a fully-populated Dispose draft:
// the consumption plan, proceeds, cost basis, realized gain/loss and holding
// period. It is pure and side-effect free, so the same request against the
// same ledger always produces the same draft, and the UI can preview several
// methods before committing one.
//
// The draft is not recorded; pass it to Mutator.CommitSale to make it so.
func (l *Ledger) ResolveSale(req SaleRequest) (Dispose, error) {
	if req.Date.IsZero() {
		req.Date = Today()
	}

	book := l.Lots(req.Asset, req.Account)
	plan, err := Select(book, req.Quantity, req.Method, req.Specific)
	if err != nil {
		return Dispose{}, fmt.Errorf("cannot resolve sale of %s %s: %w", req.Quantity, req.Asset, err)
	}

	proceeds := req.UnitPrice.Mul(req.Quantity).Sub(req.Fee)
	var costBasis Money
	for _, c := range plan {
		costBasis = costBasis.Add(c.UnitCost.Mul(c.Quantity))
	}

	draft := Dispose{
		assetTx: assetTx{
			baseTx:  baseTx{Command: CmdDispose, Date: req.Date, Memo: req.Memo},
			ID:      uuid.NewString(),
			Asset:   req.Asset,
			Account: req.Account,
		},
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Fee:       req.Fee,
		Method:    req.Method,
		Consumed:  plan,
		Proceeds:  proceeds,
		CostBasis: costBasis,
		Gain:      proceeds.Sub(costBasis),
		Holding:   classifyHolding(plan, req.Date, req.Method),
	}
	return draft, nil
}

// classifyHolding labels a whole plan's holding period.
//
// The default rule is conservative: the sale is short-term as soon as any
// consumed lot was held 365 days or less, so mixed-period sales are reported
// at the less favorable rate. The manifest keeps each lot's acquisition date,
// so a per-lot breakdown stays derivable.
//
// Average cost has no discrete consumed lot: it classifies long-term only if
// the quantity-weighted majority of the consumed mix is long-term.
func classifyHolding(plan []LotConsumption, saleDate Date, method Method) Holding {
	if method == AverageCost {
		var longQty, total Quantity
		for _, c := range plan {
			if saleDate.Sub(c.AcquiredOn) > longTermDays {
				longQty = longQty.Add(c.Quantity)
			}
			total = total.Add(c.Quantity)
		}
		if longQty.Add(longQty).GreaterThan(total) {
			return LongTerm
		}
		return ShortTerm
	}

	for _, c := range plan {
		if saleDate.Sub(c.AcquiredOn) <= longTermDays {
			return ShortTerm
		}
	}
	return LongTerm
}

// PreviewMethods resolves the same request under every automatic method (and
// Specific too when the request designates lots), returning one draft per
// method that succeeds. Methods that cannot be satisfied are skipped.
func (l *Ledger) PreviewMethods(req SaleRequest) map[Method]Dispose {
	methods := Methods()
	if len(req.Specific) > 0 {
		methods = append(methods, Specific)
	}

	previews := make(map[Method]Dispose, len(methods))
	for _, m := range methods {
		r := req
		r.Method = m
		draft, err := l.ResolveSale(r)
		if err != nil {
			continue
		}
		previews[m] = draft
	}
	return previews
}
