package renderer

import (
	"fmt"
	"strings"

	"github.com/corbel/taxlot"
)

// HarvestMarkdown renders a harvesting recommendation. The kind is a free
// title fragment, "Loss" or "Gain".
func HarvestMarkdown(kind string, rec taxlot.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Harvest Recommendation\n\n", kind)

	if rec.Harvestable == 0 {
		fmt.Fprintln(&b, "Nothing to harvest.")
		return b.String()
	}

	fmt.Fprintf(&b, "- Harvestable: %.2f\n", rec.Harvestable)
	fmt.Fprintf(&b, "- Value to trade: %.2f\n", rec.SoldValue)
	fmt.Fprintf(&b, "- Trading fees (round trip): %.2f\n", rec.TradingFees)
	fmt.Fprintf(&b, "- Tax impact: %.2f\n", rec.TaxImpact)
	if rec.CarryForward > 0 {
		fmt.Fprintf(&b, "- Loss carryforward: %.2f\n", rec.CarryForward)
	}
	fmt.Fprintf(&b, "- Net benefit: %.2f\n", rec.NetBenefit)
	fmt.Fprintf(&b, "- Lots: %s\n", strings.Join(rec.LotIDs, ", "))

	if rec.WashSaleRisk {
		fmt.Fprint(&b, "\n**Wash-sale risk**: a position was acquired within the last 30 days. Repurchasing a substantially identical asset within 30 days of the sale may disallow the loss.\n")
	}
	if rec.Worthwhile {
		fmt.Fprint(&b, "\nThe expected tax benefit exceeds the trading cost.\n")
	} else {
		fmt.Fprint(&b, "\nThe trading cost exceeds the expected tax benefit; not worthwhile.\n")
	}
	return b.String()
}
