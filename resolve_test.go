package taxlot

import (
	"testing"
)

// twoLotLedger is the canonical two-lot scenario: 1 BTC at 20000 held long,
// 1 BTC at 60000 held short, relative to the saleDate.
func twoLotLedger() (*Ledger, Date) {
	saleDate := day("2024-06-01")
	old := testBuy("OLD", "2021-02-01", 1, 20000)
	old.Asset = "BTC"
	recent := testBuy("NEW", "2024-03-01", 1, 60000)
	recent.Asset = "BTC"
	return testLedger(old, recent), saleDate
}

func TestResolveSale_MethodChangesOutcome(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	req := SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1), UnitPrice: USD(50000), Method: FIFO,
	}

	fifo, err := ledger.ResolveSale(req)
	if err != nil {
		t.Fatalf("ResolveSale(fifo) error = %v", err)
	}
	if !fifo.Gain.Equal(USD(30000)) {
		t.Errorf("fifo gain = %s, want +30000", fifo.Gain)
	}
	if fifo.Holding != LongTerm {
		t.Errorf("fifo holding = %s, want long-term", fifo.Holding)
	}

	req.Method = HIFO
	hifo, err := ledger.ResolveSale(req)
	if err != nil {
		t.Fatalf("ResolveSale(hifo) error = %v", err)
	}
	if !hifo.Gain.Equal(USD(-10000)) {
		t.Errorf("hifo gain = %s, want -10000", hifo.Gain)
	}
	if hifo.Holding != ShortTerm {
		t.Errorf("hifo holding = %s, want short-term", hifo.Holding)
	}
}

func TestResolveSale_PartialConsumptionAcrossLots(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	sale, err := ledger.ResolveSale(SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1.5), UnitPrice: USD(50000), Method: FIFO,
	})
	if err != nil {
		t.Fatalf("ResolveSale() error = %v", err)
	}

	if len(sale.Consumed) != 2 {
		t.Fatalf("consumed %d lots, want 2", len(sale.Consumed))
	}
	if c := sale.Consumed[0]; c.LotID != "OLD" || !c.Quantity.Equal(Q(1)) {
		t.Errorf("first consumption %s:%s, want OLD:1", c.LotID, c.Quantity)
	}
	if c := sale.Consumed[1]; c.LotID != "NEW" || !c.Quantity.Equal(Q(0.5)) {
		t.Errorf("second consumption %s:%s, want NEW:0.5", c.LotID, c.Quantity)
	}
	if !sale.Proceeds.Equal(USD(75000)) {
		t.Errorf("proceeds = %s, want 75000", sale.Proceeds)
	}
	if !sale.CostBasis.Equal(USD(50000)) {
		t.Errorf("cost basis = %s, want 50000", sale.CostBasis)
	}
	if !sale.Gain.Equal(USD(25000)) {
		t.Errorf("gain = %s, want +25000", sale.Gain)
	}
	// one consumed lot is held short: the whole sale is labeled short-term
	if sale.Holding != ShortTerm {
		t.Errorf("holding = %s, want short-term", sale.Holding)
	}
}

func TestResolveSale_FeeReducesProceeds(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	sale, err := ledger.ResolveSale(SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1), UnitPrice: USD(50000), Fee: USD(25), Method: FIFO,
	})
	if err != nil {
		t.Fatalf("ResolveSale() error = %v", err)
	}
	if !sale.Proceeds.Equal(USD(49975)) {
		t.Errorf("proceeds = %s, want 49975", sale.Proceeds)
	}
	if !sale.Gain.Equal(USD(29975)) {
		t.Errorf("gain = %s, want +29975", sale.Gain)
	}
}

func TestResolveSale_DraftValidates(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	sale, err := ledger.ResolveSale(SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1.5), UnitPrice: USD(50000), Method: AverageCost,
	})
	if err != nil {
		t.Fatalf("ResolveSale() error = %v", err)
	}
	if _, err := sale.Validate(); err != nil {
		t.Errorf("resolved draft fails its own validation: %v", err)
	}
}

func TestResolveSale_IsDeterministic(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	req := SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1.5), UnitPrice: USD(50000), Method: HIFO,
	}
	s1, err := ledger.ResolveSale(req)
	if err != nil {
		t.Fatalf("ResolveSale() error = %v", err)
	}
	s2, err := ledger.ResolveSale(req)
	if err != nil {
		t.Fatalf("ResolveSale() error = %v", err)
	}
	// identities differ per draft; everything else must match exactly
	if len(s1.Consumed) != len(s2.Consumed) {
		t.Fatalf("plans differ in length: %d vs %d", len(s1.Consumed), len(s2.Consumed))
	}
	for i := range s1.Consumed {
		if !s1.Consumed[i].equal(s2.Consumed[i]) {
			t.Errorf("consumption[%d] differs between identical requests", i)
		}
	}
	if !s1.Gain.Equal(s2.Gain) || !s1.CostBasis.Equal(s2.CostBasis) || s1.Holding != s2.Holding {
		t.Errorf("outcome differs between identical requests")
	}
}

func TestClassifyHolding_AverageMajority(t *testing.T) {
	saleDate := day("2024-06-01")
	longC := LotConsumption{LotID: "L", Quantity: Q(3), AcquiredOn: day("2020-01-01")}
	shortC := LotConsumption{LotID: "S", Quantity: Q(1), AcquiredOn: day("2024-05-01")}

	if got := classifyHolding([]LotConsumption{longC, shortC}, saleDate, AverageCost); got != LongTerm {
		t.Errorf("3 long vs 1 short by quantity: got %s, want long-term", got)
	}

	// an exact split is not a majority: conservative short-term
	even := []LotConsumption{
		{LotID: "L", Quantity: Q(2), AcquiredOn: day("2020-01-01")},
		{LotID: "S", Quantity: Q(2), AcquiredOn: day("2024-05-01")},
	}
	if got := classifyHolding(even, saleDate, AverageCost); got != ShortTerm {
		t.Errorf("even split: got %s, want short-term", got)
	}
}

func TestClassifyHolding_BoundaryDay(t *testing.T) {
	saleDate := day("2024-06-01")
	// held exactly 365 days: still short-term; 366 days: long-term
	at365 := []LotConsumption{{LotID: "A", Quantity: Q(1), AcquiredOn: saleDate.Add(-365)}}
	if got := classifyHolding(at365, saleDate, FIFO); got != ShortTerm {
		t.Errorf("365 days: got %s, want short-term", got)
	}
	at366 := []LotConsumption{{LotID: "A", Quantity: Q(1), AcquiredOn: saleDate.Add(-366)}}
	if got := classifyHolding(at366, saleDate, FIFO); got != LongTerm {
		t.Errorf("366 days: got %s, want long-term", got)
	}
}

func TestPreviewMethods(t *testing.T) {
	ledger, saleDate := twoLotLedger()
	req := SaleRequest{
		Asset: "BTC", Account: "broker", Date: saleDate,
		Quantity: Q(1), UnitPrice: USD(50000),
	}
	previews := ledger.PreviewMethods(req)
	if len(previews) != len(Methods()) {
		t.Fatalf("got %d previews, want %d", len(previews), len(Methods()))
	}
	// previewing must not touch the ledger
	if ledger.Len() != 2 {
		t.Errorf("preview mutated the ledger: %d transactions", ledger.Len())
	}
	if !previews[FIFO].Gain.Equal(USD(30000)) || !previews[HIFO].Gain.Equal(USD(-10000)) {
		t.Errorf("preview gains fifo=%s hifo=%s, want +30000 and -10000",
			previews[FIFO].Gain, previews[HIFO].Gain)
	}

	// with designated lots, the specific method joins the preview
	req.Specific = []SpecificLot{{LotID: "NEW", Quantity: Q(1)}}
	previews = ledger.PreviewMethods(req)
	if _, ok := previews[Specific]; !ok {
		t.Errorf("specific preview missing despite designated lots")
	}
}
