package taxlot

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrInconsistentReversal means a sale's consumed-lot manifest references a
// lot that no longer exists in the ledger. The reversal cannot restore what
// it cannot find; it fails as a whole, nothing is skipped silently.
var ErrInconsistentReversal = errors.New("inconsistent reversal")

// Store persists a ledger. The mutator calls Save after every successful
// mutation batch; a Save failure rolls the in-memory ledger back to its
// pre-mutation state.
type Store interface {
	Save(*Ledger) error
}

// Mutator applies commits, reversals, reconstruction and bulk reassignment
// to a ledger. All operations are serialized per (asset, account) key:
// two commits against the same key can never interleave or observe an
// intermediate state. Resolution and harvesting are read-only and never need
// these locks.
type Mutator struct {
	ledger *Ledger
	store  Store

	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

// NewMutator creates a mutator over the given ledger. The store may be nil
// for an in-memory ledger.
func NewMutator(ledger *Ledger, store Store) *Mutator {
	return &Mutator{ledger: ledger, store: store, keys: make(map[string]*sync.Mutex)}
}

// Ledger returns the ledger under mutation, for read-only use.
func (m *Mutator) Ledger() *Ledger { return m.ledger }

// keyLock returns the mutex serializing mutations for one (asset, account) key.
func (m *Mutator) keyLock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mu, ok := m.keys[key]; ok {
		return mu
	}
	mu := new(sync.Mutex)
	m.keys[key] = mu
	return mu
}

// lockKeys acquires the locks of all given keys in sorted order, so that two
// operations spanning the same keys can never deadlock. It returns the
// unlock function.
func (m *Mutator) lockKeys(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	// dedupe, keys may repeat when asset/account pairs collide
	locks := make([]*sync.Mutex, 0, len(sorted))
	var prev string
	for i, k := range sorted {
		if i > 0 && k == prev {
			continue
		}
		prev = k
		locks = append(locks, m.keyLock(k))
	}
	for _, mu := range locks {
		mu.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// persist saves the ledger, or undoes the batch when saving fails. A failed
// commit must leave the ledger exactly as it was before the attempt.
func (m *Mutator) persist(undo func()) error {
	if m.store == nil {
		return nil
	}
	if err := m.store.Save(m.ledger); err != nil {
		undo()
		return fmt.Errorf("could not persist ledger, mutation rolled back: %w", err)
	}
	return nil
}

// CommitSale records a resolved Dispose draft. The draft is re-checked
// against the current lot book under the key lock, so a draft resolved
// before a concurrent commit on the same key cannot oversell.
func (m *Mutator) CommitSale(draft Dispose) (Dispose, error) {
	tx, err := draft.Validate()
	if err != nil {
		return Dispose{}, fmt.Errorf("invalid sale draft: %w", err)
	}
	draft = tx.(Dispose)

	unlock := m.lockKeys(draft.Key())
	defer unlock()

	book := m.ledger.Lots(draft.Asset, draft.Account)
	for _, c := range draft.Consumed {
		lot := book.Get(c.LotID)
		if lot == nil {
			return Dispose{}, fmt.Errorf("%w: lot %s does not exist", ErrInvalidSelection, c.LotID)
		}
		if lot.Remaining.LessThan(c.Quantity) {
			return Dispose{}, fmt.Errorf("%w: lot %s has %s remaining, draft consumes %s",
				ErrInsufficientLots, c.LotID, lot.Remaining, c.Quantity)
		}
	}

	if err := m.ledger.Append(draft); err != nil {
		return Dispose{}, err
	}
	if err := m.persist(func() { m.ledger.remove(draft.ID) }); err != nil {
		return Dispose{}, err
	}

	log.Info().Str("sale", draft.ID).Str("asset", draft.Asset).
		Str("method", draft.Method.String()).Stringer("quantity", draft.Quantity).
		Stringer("gain", draft.Gain).Msg("sale committed")
	return draft, nil
}

// ReverseSale undoes a committed sale: every lot referenced by the sale's
// manifest gets its consumed quantity back, and the sale record is removed.
// Because the lot book is derived by folding the ledger, removing the record
// restores each remaining quantity bit-for-bit.
func (m *Mutator) ReverseSale(saleID string) error {
	tx := m.ledger.Get(saleID)
	if tx == nil {
		return fmt.Errorf("sale %s not found", saleID)
	}
	sale, ok := tx.(Dispose)
	if !ok {
		return fmt.Errorf("transaction %s is not a sale", saleID)
	}

	unlock := m.lockKeys(sale.Key())
	defer unlock()

	book := m.ledger.Lots(sale.Asset, sale.Account)
	for _, c := range sale.Consumed {
		if book.Get(c.LotID) == nil {
			log.Error().Str("sale", saleID).Str("lot", c.LotID).
				Msg("cannot reverse sale, manifest references a missing lot")
			return fmt.Errorf("%w: sale %s consumed lot %s which no longer exists", ErrInconsistentReversal, saleID, c.LotID)
		}
	}

	m.ledger.remove(saleID)
	if err := m.persist(func() { m.ledger.Append(sale) }); err != nil {
		return err
	}

	log.Info().Str("sale", saleID).Str("asset", sale.Asset).Msg("sale reversed")
	return nil
}

// DeleteAcquire removes an acquisition from the ledger. This is only legal
// while the lot is untouched: a lot with consumed quantity must first have
// every consuming sale reversed.
func (m *Mutator) DeleteAcquire(lotID string) error {
	tx := m.ledger.Get(lotID)
	if tx == nil {
		return fmt.Errorf("acquisition %s not found", lotID)
	}
	buy, ok := tx.(Acquire)
	if !ok {
		return fmt.Errorf("transaction %s is not an acquisition", lotID)
	}

	unlock := m.lockKeys(buy.Key())
	defer unlock()

	lot := m.ledger.Lots(buy.Asset, buy.Account).Get(lotID)
	if lot != nil && !lot.Remaining.Equal(lot.Original) {
		return fmt.Errorf("lot %s has consumed quantity, reverse its sales before deleting", lotID)
	}

	m.ledger.remove(lotID)
	if err := m.persist(func() { m.ledger.Append(buy) }); err != nil {
		return err
	}

	log.Info().Str("lot", lotID).Str("asset", buy.Asset).Msg("acquisition deleted")
	return nil
}

// ReconstructLots synthesizes acquisition lots for sale manifests that
// reference lot identities with no corresponding acquisition, as happens
// after a partial data import. The synthesized lot's original quantity is
// exactly the total historically consumed, so its remaining quantity folds
// to zero: reconstruction explains already-consumed supply, it never
// fabricates available supply.
//
// It is idempotent: lots that already exist are left alone, and re-running
// it creates nothing new. It returns the number of lots created.
func (m *Mutator) ReconstructLots() (int, error) {
	var created []Acquire

	for assetSymbol, account := range m.ledger.AllKeys() {
		unlock := m.lockKeys(assetSymbol + "/" + account)

		book := m.ledger.Lots(assetSymbol, account)
		type missing struct {
			total      Quantity
			unitCost   Money
			acquiredOn Date
		}
		orphans := make(map[string]*missing)
		var order []string

		for _, tx := range m.ledger.Transactions(ByKey(assetSymbol, account)) {
			sale, ok := tx.(Dispose)
			if !ok {
				continue
			}
			for _, c := range sale.Consumed {
				if book.Get(c.LotID) != nil {
					continue
				}
				o, ok := orphans[c.LotID]
				if !ok {
					o = &missing{unitCost: c.UnitCost, acquiredOn: c.AcquiredOn}
					orphans[c.LotID] = o
					order = append(order, c.LotID)
				}
				o.total = o.total.Add(c.Quantity)
			}
		}

		for _, lotID := range order {
			o := orphans[lotID]
			buy := Acquire{
				assetTx: assetTx{
					baseTx:  baseTx{Command: CmdAcquire, Date: o.acquiredOn, Memo: "reconstructed from sale history"},
					ID:      lotID,
					Asset:   assetSymbol,
					Account: account,
				},
				Quantity: o.total,
				UnitCost: o.unitCost,
			}
			if err := m.ledger.Append(buy); err != nil {
				unlock()
				for _, b := range created {
					m.ledger.remove(b.ID)
				}
				return 0, err
			}
			created = append(created, buy)
			log.Info().Str("lot", lotID).Str("asset", assetSymbol).
				Stringer("quantity", o.total).Msg("lot reconstructed from sale history")
		}
		unlock()
	}

	if len(created) == 0 {
		return 0, nil
	}
	if err := m.persist(func() {
		for _, b := range created {
			m.ledger.remove(b.ID)
		}
	}); err != nil {
		return 0, err
	}
	return len(created), nil
}

// BulkReassign moves every transaction of an asset from one account to
// another as a single batch: the affected lot books are only recomputed once
// the whole batch has been applied, so no transient state is observable. It
// returns the number of transactions moved.
func (m *Mutator) BulkReassign(assetSymbol, fromAccount, toAccount string) (int, error) {
	if fromAccount == toAccount {
		return 0, nil
	}
	unlock := m.lockKeys(assetSymbol+"/"+fromAccount, assetSymbol+"/"+toAccount)
	defer unlock()

	var moved []string
	undo := func() {
		for _, id := range moved {
			m.reassign(id, fromAccount)
		}
	}
	for _, tx := range m.ledger.Transactions(ByKey(assetSymbol, fromAccount)) {
		switch v := tx.(type) {
		case Acquire:
			moved = append(moved, v.ID)
		case Dispose:
			moved = append(moved, v.ID)
		}
	}
	for _, id := range moved {
		m.reassign(id, toAccount)
	}
	if err := m.persist(undo); err != nil {
		return 0, err
	}

	log.Info().Str("asset", assetSymbol).Str("from", fromAccount).Str("to", toAccount).
		Int("transactions", len(moved)).Msg("account reassigned")
	return len(moved), nil
}

// reassign rewrites the account of one transaction in place.
func (m *Mutator) reassign(id, account string) {
	for i, tx := range m.ledger.transactions {
		switch v := tx.(type) {
		case Acquire:
			if v.ID == id {
				v.Account = account
				m.ledger.transactions[i] = v
			}
		case Dispose:
			if v.ID == id {
				v.Account = account
				m.ledger.transactions[i] = v
			}
		}
	}
}
