package taxlot

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"
)

// ErrDuplicateTransaction is returned when an identical acquisition or
// disposal (same asset, account, date, quantity and price) is already
// recorded. Duplicates are rejected before they reach the ledger.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

// Ledger represents the append-only list of acquisitions and disposals.
//
// In a Ledger transactions are always in chronological order.
type Ledger struct {
	name         string
	transactions []Transaction
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{transactions: make([]Transaction, 0)}
}

// Name returns the ledger's name, set by the loader from its file path.
func (l *Ledger) Name() string { return l.name }

// Len returns the number of transactions in the ledger.
func (l *Ledger) Len() int { return len(l.transactions) }

// Append appends transactions to this ledger and maintains the chronological
// order of transactions. It rejects duplicates with ErrDuplicateTransaction.
func (l *Ledger) Append(txs ...Transaction) error {
	for _, tx := range txs {
		if dup := l.findDuplicate(tx); dup != nil {
			return fmt.Errorf("%w: %s of %s on %s already recorded", ErrDuplicateTransaction, tx.What(), asset(tx), tx.When())
		}
		l.transactions = append(l.transactions, tx)
	}
	// The sort is stable: transactions on the same day keep their insertion order.
	l.stableSort()
	return nil
}

// findDuplicate returns a previously recorded transaction that duplicates tx,
// or nil. Two transactions are duplicates when they share command, date,
// asset, account, quantity and unit price/cost, regardless of identity.
func (l *Ledger) findDuplicate(tx Transaction) Transaction {
	for _, existing := range l.transactions {
		if existing.What() != tx.What() || existing.When() != tx.When() {
			continue
		}
		switch v := tx.(type) {
		case Acquire:
			e, ok := existing.(Acquire)
			if ok && e.Asset == v.Asset && e.Account == v.Account &&
				e.Quantity.Equal(v.Quantity) && e.UnitCost.Equal(v.UnitCost) {
				return existing
			}
		case Dispose:
			e, ok := existing.(Dispose)
			if ok && e.Asset == v.Asset && e.Account == v.Account &&
				e.Quantity.Equal(v.Quantity) && e.UnitPrice.Equal(v.UnitPrice) {
				return existing
			}
		}
	}
	return nil
}

// asset returns the asset symbol of a transaction, for error messages.
func asset(tx Transaction) string {
	switch v := tx.(type) {
	case Acquire:
		return v.Asset
	case Dispose:
		return v.Asset
	default:
		return "?"
	}
}

// stableSort sorts the ledger by transaction date. The sort is stable, meaning
// transactions on the same day maintain their original relative order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		return l.transactions[i].When().Before(l.transactions[j].When())
	})
}

// AcceptAll is a predicate accepting every transaction.
func AcceptAll(Transaction) bool { return true }

// ByKey returns a predicate that filters transactions by (asset, account) key.
func ByKey(assetSymbol, account string) func(Transaction) bool {
	return func(tx Transaction) bool {
		switch v := tx.(type) {
		case Acquire:
			return v.Asset == assetSymbol && v.Account == account
		case Dispose:
			return v.Asset == assetSymbol && v.Account == account
		default:
			return false
		}
	}
}

// ByAsset returns a predicate that filters transactions by asset symbol,
// regardless of account.
func ByAsset(assetSymbol string) func(Transaction) bool {
	return func(tx Transaction) bool { return asset(tx) == assetSymbol }
}

// ByAccount returns a predicate that filters transactions by account,
// regardless of asset.
func ByAccount(account string) func(Transaction) bool {
	return func(tx Transaction) bool {
		switch v := tx.(type) {
		case Acquire:
			return v.Account == account
		case Dispose:
			return v.Account == account
		default:
			return false
		}
	}
}

// Transactions returns an iterator that yields each transaction accepted by
// at least one of the filters, in chronological order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			accept := false
			for _, filter := range filters {
				if filter(tx) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Get returns the transaction with the given identity, or nil if unknown.
func (l *Ledger) Get(id string) Transaction {
	for _, tx := range l.transactions {
		switch v := tx.(type) {
		case Acquire:
			if v.ID == id {
				return v
			}
		case Dispose:
			if v.ID == id {
				return v
			}
		}
	}
	return nil
}

// remove deletes the transaction with the given identity and reports whether
// it was present. It is only called from the mutator, which enforces the
// reversal discipline before any deletion.
func (l *Ledger) remove(id string) bool {
	for i, tx := range l.transactions {
		switch v := tx.(type) {
		case Acquire:
			if v.ID == id {
				l.transactions = slices.Delete(l.transactions, i, i+1)
				return true
			}
		case Dispose:
			if v.ID == id {
				l.transactions = slices.Delete(l.transactions, i, i+1)
				return true
			}
		}
	}
	return false
}

// AllKeys iterates over all distinct (asset, account) keys present in the
// ledger, in sorted order.
func (l *Ledger) AllKeys() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		type key struct{ asset, account string }
		visited := make(map[key]struct{})
		for _, tx := range l.transactions {
			var k key
			switch v := tx.(type) {
			case Acquire:
				k = key{v.Asset, v.Account}
			case Dispose:
				k = key{v.Asset, v.Account}
			default:
				continue
			}
			visited[k] = struct{}{}
		}
		keys := slices.Collect(maps.Keys(visited))
		slices.SortFunc(keys, func(a, b key) int {
			if a.asset != b.asset {
				if a.asset < b.asset {
					return -1
				}
				return 1
			}
			if a.account < b.account {
				return -1
			} else if a.account > b.account {
				return 1
			}
			return 0
		})
		for _, k := range keys {
			if !yield(k.asset, k.account) {
				return
			}
		}
	}
}

// OldestTransactionDate returns the date of the earliest transaction in the
// ledger, or the zero date if the ledger is empty.
func (l *Ledger) OldestTransactionDate() Date {
	if len(l.transactions) == 0 {
		return Date{}
	}
	return l.transactions[0].When()
}
