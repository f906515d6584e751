package renderer

import (
	"fmt"
	"strings"

	"github.com/corbel/taxlot"
)

// ResolutionMarkdown renders one resolved disposal: its consumed-lot manifest
// and the realized outcome.
func ResolutionMarkdown(sale taxlot.Dispose) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Sale of %s %s on %s (%s)\n\n", sale.Quantity, sale.Asset, sale.When(), sale.Method)

	fmt.Fprintln(&b, "| Lot | Acquired | Consumed | Unit Cost | Cost Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, c := range sale.Consumed {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			c.LotID, c.AcquiredOn, c.Quantity, c.UnitCost, c.UnitCost.Mul(c.Quantity))
	}

	fmt.Fprintf(&b, "\n- Proceeds: %s\n", sale.Proceeds)
	fmt.Fprintf(&b, "- Cost basis: %s\n", sale.CostBasis)
	fmt.Fprintf(&b, "- Gain: %s (%s)\n", sale.Gain.SignedString(), sale.Holding)
	return b.String()
}

// PreviewMarkdown renders the outcome of one sale request under every
// automatic selection method, side by side.
func PreviewMarkdown(previews map[taxlot.Method]taxlot.Dispose) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Method Preview\n\n")
	fmt.Fprintln(&b, "| Method | Lots | Cost Basis | Gain | Holding |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|")
	for _, method := range taxlot.Methods() {
		sale, ok := previews[method]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n",
			method, len(sale.Consumed), sale.CostBasis, sale.Gain.SignedString(), sale.Holding)
	}
	return b.String()
}
