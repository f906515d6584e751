package renderer

import (
	"strings"
	"testing"

	"github.com/corbel/taxlot"
)

func usd(v float64) taxlot.Money { return taxlot.M(v, "USD") }

func TestLotsMarkdown(t *testing.T) {
	lots := taxlot.Lots{
		{ID: "A", Asset: "AAPL", AcquiredOn: taxlot.MustParse("2021-01-10"),
			Original: taxlot.Q(10), Remaining: taxlot.Q(8), UnitCost: usd(100)},
		{ID: "B", Asset: "AAPL", AcquiredOn: taxlot.MustParse("2022-03-05"),
			Original: taxlot.Q(5), Remaining: taxlot.Q(0), UnitCost: usd(150)},
	}
	md := LotsMarkdown("AAPL", "broker", lots)

	if !strings.Contains(md, "# Lots of AAPL in broker") {
		t.Errorf("missing title:\n%s", md)
	}
	if !strings.Contains(md, "| A |") {
		t.Errorf("missing open lot row:\n%s", md)
	}
	// exhausted lots are not listed
	if strings.Contains(md, "| B |") {
		t.Errorf("exhausted lot listed:\n%s", md)
	}
	if !strings.Contains(md, "Total remaining: 8") {
		t.Errorf("missing total:\n%s", md)
	}
}

func TestLotsMarkdown_Empty(t *testing.T) {
	md := LotsMarkdown("AAPL", "", nil)
	if !strings.Contains(md, "No open lots.") {
		t.Errorf("empty book not reported:\n%s", md)
	}
}

func TestResolutionMarkdown(t *testing.T) {
	ledger := taxlot.NewLedger()
	buy := taxlot.NewAcquire(taxlot.MustParse("2021-01-10"), "", "AAPL", "broker", taxlot.Q(10), usd(100), false)
	if err := ledger.Append(buy); err != nil {
		t.Fatal(err)
	}
	sale, err := ledger.ResolveSale(taxlot.SaleRequest{
		Asset: "AAPL", Account: "broker", Date: taxlot.MustParse("2024-06-01"),
		Quantity: taxlot.Q(4), UnitPrice: usd(150), Method: taxlot.FIFO,
	})
	if err != nil {
		t.Fatal(err)
	}

	md := ResolutionMarkdown(sale)
	if !strings.Contains(md, "# Sale of 4 AAPL on 2024-06-01 (fifo)") {
		t.Errorf("missing title:\n%s", md)
	}
	if !strings.Contains(md, "long-term") {
		t.Errorf("missing holding period:\n%s", md)
	}
}

func TestPreviewMarkdown_MethodOrderIsStable(t *testing.T) {
	ledger := taxlot.NewLedger()
	if err := ledger.Append(
		taxlot.NewAcquire(taxlot.MustParse("2021-01-10"), "", "AAPL", "", taxlot.Q(10), usd(100), false),
		taxlot.NewAcquire(taxlot.MustParse("2023-01-10"), "", "AAPL", "", taxlot.Q(10), usd(200), false),
	); err != nil {
		t.Fatal(err)
	}
	previews := ledger.PreviewMethods(taxlot.SaleRequest{
		Asset: "AAPL", Date: taxlot.MustParse("2024-06-01"),
		Quantity: taxlot.Q(5), UnitPrice: usd(150),
	})

	md := PreviewMarkdown(previews)
	// rows follow the canonical method order, not map iteration order
	fifo := strings.Index(md, "| fifo |")
	avg := strings.Index(md, "| average |")
	if fifo < 0 || avg < 0 || fifo > avg {
		t.Errorf("method rows missing or out of order:\n%s", md)
	}
}

func TestHarvestMarkdown(t *testing.T) {
	rec := taxlot.Recommendation{
		Harvestable: 4000, SoldValue: 6000, TradingFees: 12,
		TaxImpact: 360, CarryForward: 1000, NetBenefit: 348,
		Worthwhile: true, WashSaleRisk: true, LotIDs: []string{"L1"},
	}
	md := HarvestMarkdown("Loss", rec)
	for _, want := range []string{"Loss Harvest", "carryforward", "Wash-sale risk", "L1"} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}

	if md := HarvestMarkdown("Gain", taxlot.Recommendation{}); !strings.Contains(md, "Nothing to harvest.") {
		t.Errorf("empty recommendation not reported:\n%s", md)
	}
}
