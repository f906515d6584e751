package taxlot

import "fmt"

// Lot is one historical acquisition of an asset, tracked until fully
// disposed. It is derived from the ledger, never stored.
type Lot struct {
	ID          string   // ID is the identity of the originating Acquire.
	Asset       string   // Asset is the fungible asset symbol.
	Account     string   // Account holding the lot; empty means unassigned.
	AcquiredOn  Date     // AcquiredOn is the acquisition date.
	Original    Quantity // Original is the quantity acquired.
	Remaining   Quantity // Remaining is the quantity not yet consumed by disposals.
	UnitCost    Money    // UnitCost is the acquisition cost per unit.
	FeeIncluded bool     // FeeIncluded is true when UnitCost already nets the acquisition fee.
}

// CostBasis returns the cost attributed to the lot's remaining quantity.
func (lot Lot) CostBasis() Money { return lot.UnitCost.Mul(lot.Remaining) }

// LongTermOn reports whether the lot qualifies for long-term treatment if
// disposed on the given date.
func (lot Lot) LongTermOn(on Date) bool { return on.Sub(lot.AcquiredOn) > longTermDays }

// Lots is the ordered book of lots for one (asset, account) key, in
// acquisition order. Exhausted lots stay present so a reversal can find them
// by identity.
type Lots []Lot

// Get returns a pointer to the lot with the given identity, or nil.
func (ls Lots) Get(id string) *Lot {
	for i := range ls {
		if ls[i].ID == id {
			return &ls[i]
		}
	}
	return nil
}

// Available returns the lots that still have quantity to consume.
func (ls Lots) Available() Lots {
	var open Lots
	for _, lot := range ls {
		if lot.Remaining.IsPositive() {
			open = append(open, lot)
		}
	}
	return open
}

// TotalRemaining returns the total quantity available across all lots.
func (ls Lots) TotalRemaining() Quantity {
	var total Quantity
	for _, lot := range ls {
		total = total.Add(lot.Remaining)
	}
	return total
}

// Lots derives the lot book for a given (asset, account) key by folding all
// acquisitions and disposal manifests in chronological order.
//
// Disposals decrement lots by their recorded manifest, not by re-running the
// selection, so the book always reflects exactly what was committed.
// Manifest lines referencing an unknown lot are skipped here; Reconcile
// reports them and ReconstructLots can synthesize the missing acquisitions.
func (l *Ledger) Lots(assetSymbol, account string) Lots {
	var book Lots
	for _, tx := range l.Transactions(ByKey(assetSymbol, account)) {
		switch v := tx.(type) {
		case Acquire:
			book = append(book, Lot{
				ID:          v.ID,
				Asset:       v.Asset,
				Account:     v.Account,
				AcquiredOn:  v.Date,
				Original:    v.Quantity,
				Remaining:   v.Quantity,
				UnitCost:    v.UnitCost,
				FeeIncluded: v.FeeIncluded,
			})
		case Dispose:
			for _, c := range v.Consumed {
				if lot := book.Get(c.LotID); lot != nil {
					lot.Remaining = lot.Remaining.Sub(c.Quantity)
				}
			}
		}
	}
	return book
}

// TotalRemaining returns the total quantity held for a (asset, account) key.
func (l *Ledger) TotalRemaining(assetSymbol, account string) Quantity {
	return l.Lots(assetSymbol, account).TotalRemaining()
}

// ConsistencyFault describes a violation of the ledger's central conservation
// property, found after the fact. Faults are never fixed silently: a negative
// remaining quantity is a programming error, an orphan manifest reference is
// a candidate for reconstruction.
type ConsistencyFault struct {
	Asset   string
	Account string
	LotID   string
	Detail  string
}

func (f ConsistencyFault) String() string {
	return fmt.Sprintf("%s/%s lot %s: %s", f.Asset, f.Account, f.LotID, f.Detail)
}

// Reconcile verifies, for every (asset, account) key, that each lot's
// remaining quantity stays within [0, original] and that every disposal
// manifest line references a known lot. It returns the list of faults found.
func (l *Ledger) Reconcile() []ConsistencyFault {
	var faults []ConsistencyFault
	for assetSymbol, account := range l.AllKeys() {
		book := l.Lots(assetSymbol, account)
		for _, lot := range book {
			if lot.Remaining.IsNegative() {
				faults = append(faults, ConsistencyFault{
					Asset: assetSymbol, Account: account, LotID: lot.ID,
					Detail: fmt.Sprintf("remaining quantity is negative (%s), ledger reconciliation required", lot.Remaining),
				})
			}
			if lot.Remaining.GreaterThan(lot.Original) {
				faults = append(faults, ConsistencyFault{
					Asset: assetSymbol, Account: account, LotID: lot.ID,
					Detail: fmt.Sprintf("remaining quantity %s exceeds original %s", lot.Remaining, lot.Original),
				})
			}
		}
		for _, tx := range l.Transactions(ByKey(assetSymbol, account)) {
			sale, ok := tx.(Dispose)
			if !ok {
				continue
			}
			for _, c := range sale.Consumed {
				if book.Get(c.LotID) == nil {
					faults = append(faults, ConsistencyFault{
						Asset: assetSymbol, Account: account, LotID: c.LotID,
						Detail: fmt.Sprintf("disposal %s references an unknown lot", sale.ID),
					})
				}
			}
		}
	}
	return faults
}
