package taxlot

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create a date from an ISO string.
func day(s string) Date { return MustParse(s) }

// testBuy opens a lot with a fixed identity, so tests can assert on plans
// without chasing generated identifiers.
func testBuy(id, on string, qty, cost float64) Acquire {
	return Acquire{
		assetTx: assetTx{
			baseTx:  baseTx{Command: CmdAcquire, Date: day(on)},
			ID:      id,
			Asset:   "AAPL",
			Account: "broker",
		},
		Quantity: Q(qty),
		UnitCost: USD(cost),
	}
}

// testLedger builds a ledger from transactions, failing the build on error is
// not possible here, so it panics; tests feed it known-good transactions.
func testLedger(txs ...Transaction) *Ledger {
	l := NewLedger()
	if err := l.Append(txs...); err != nil {
		panic(err)
	}
	return l
}
