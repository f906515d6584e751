package taxlot

import (
	"errors"
	"testing"
)

func TestLedger_AppendKeepsChronologicalOrder(t *testing.T) {
	l := testLedger(
		testBuy("B", "2023-05-01", 1, 10),
		testBuy("A", "2021-05-01", 1, 10),
		testBuy("C", "2024-05-01", 1, 10),
	)

	var got []string
	for _, tx := range l.Transactions(AcceptAll) {
		got = append(got, tx.(Acquire).ID)
	}
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transactions order %v, want %v", got, want)
		}
	}
	if d := l.OldestTransactionDate(); d != day("2021-05-01") {
		t.Errorf("OldestTransactionDate() = %s, want 2021-05-01", d)
	}
}

func TestLedger_RejectsDuplicates(t *testing.T) {
	l := testLedger(testBuy("A", "2024-01-01", 10, 100))

	// same asset, account, date, quantity and cost: a duplicate, identity aside
	dup := testBuy("A2", "2024-01-01", 10, 100)
	if err := l.Append(dup); !errors.Is(err, ErrDuplicateTransaction) {
		t.Fatalf("Append(duplicate) error = %v, want ErrDuplicateTransaction", err)
	}

	// a different quantity is a different transaction
	if err := l.Append(testBuy("A3", "2024-01-01", 11, 100)); err != nil {
		t.Fatalf("Append(different quantity) error = %v", err)
	}
}

func TestLedger_GetAndKeys(t *testing.T) {
	other := testBuy("X", "2024-01-01", 3, 50)
	other.Asset = "BTC"
	other.Account = "cold"
	l := testLedger(testBuy("A", "2024-01-01", 10, 100), other)

	if tx := l.Get("X"); tx == nil || tx.(Acquire).Asset != "BTC" {
		t.Fatalf("Get(X) = %v, want the BTC acquisition", tx)
	}
	if tx := l.Get("nope"); tx != nil {
		t.Fatalf("Get(nope) = %v, want nil", tx)
	}

	var keys []string
	for asset, account := range l.AllKeys() {
		keys = append(keys, asset+"/"+account)
	}
	want := []string{"AAPL/broker", "BTC/cold"}
	if len(keys) != len(want) {
		t.Fatalf("AllKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("AllKeys()[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestLedger_LotsFold(t *testing.T) {
	l := testLedger(
		testBuy("A", "2021-01-10", 10, 100),
		testBuy("B", "2022-03-05", 10, 150),
	)
	sale := Dispose{
		assetTx:  assetTx{baseTx: baseTx{Command: CmdDispose, Date: day("2024-02-01")}, ID: "S1", Asset: "AAPL", Account: "broker"},
		Quantity: Q(12), UnitPrice: USD(200), Method: FIFO,
		Consumed: []LotConsumption{
			{LotID: "A", Quantity: Q(10), UnitCost: USD(100), AcquiredOn: day("2021-01-10")},
			{LotID: "B", Quantity: Q(2), UnitCost: USD(150), AcquiredOn: day("2022-03-05")},
		},
		Proceeds: USD(2400), CostBasis: USD(1300), Gain: USD(1100),
	}
	if err := l.Append(sale); err != nil {
		t.Fatalf("Append(sale) error = %v", err)
	}

	book := l.Lots("AAPL", "broker")
	if got := book.Get("A").Remaining; !got.IsZero() {
		t.Errorf("lot A remaining = %s, want 0", got)
	}
	if got := book.Get("B").Remaining; !got.Equal(Q(8)) {
		t.Errorf("lot B remaining = %s, want 8", got)
	}
	// remaining = original - consumption, summed over the key
	if got := l.TotalRemaining("AAPL", "broker"); !got.Equal(Q(8)) {
		t.Errorf("TotalRemaining() = %s, want 8", got)
	}
	// exhausted lots stay in the book so reversals can find them
	if len(book) != 2 {
		t.Errorf("book has %d lots, want 2 (exhausted lots stay)", len(book))
	}
	if len(book.Available()) != 1 {
		t.Errorf("Available() has %d lots, want 1", len(book.Available()))
	}
}

func TestLedger_ReconcileReportsOrphans(t *testing.T) {
	l := NewLedger()
	sale := Dispose{
		assetTx:  assetTx{baseTx: baseTx{Command: CmdDispose, Date: day("2024-02-01")}, ID: "S1", Asset: "AAPL", Account: "broker"},
		Quantity: Q(5), UnitPrice: USD(200), Method: FIFO,
		Consumed: []LotConsumption{
			{LotID: "ghost", Quantity: Q(5), UnitCost: USD(100), AcquiredOn: day("2021-01-10")},
		},
		Proceeds: USD(1000), CostBasis: USD(500), Gain: USD(500),
	}
	if err := l.Append(sale); err != nil {
		t.Fatalf("Append(sale) error = %v", err)
	}

	faults := l.Reconcile()
	if len(faults) != 1 {
		t.Fatalf("Reconcile() found %d faults, want 1: %v", len(faults), faults)
	}
	if faults[0].LotID != "ghost" {
		t.Errorf("fault lot = %s, want ghost", faults[0].LotID)
	}
}

func TestLedger_ReconcileCleanLedger(t *testing.T) {
	l := testLedger(
		testBuy("A", "2021-01-10", 10, 100),
		testBuy("B", "2022-03-05", 10, 150),
	)
	if faults := l.Reconcile(); len(faults) != 0 {
		t.Fatalf("Reconcile() on a clean ledger found %v", faults)
	}
}
