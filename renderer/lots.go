package renderer

import (
	"fmt"
	"strings"

	"github.com/corbel/taxlot"
)

// LotsMarkdown renders the open lot book of one (asset, account) key as a
// markdown table.
func LotsMarkdown(asset, account string, lots taxlot.Lots) string {
	var b strings.Builder
	if account == "" {
		fmt.Fprintf(&b, "# Lots of %s\n\n", asset)
	} else {
		fmt.Fprintf(&b, "# Lots of %s in %s\n\n", asset, account)
	}

	available := lots.Available()
	if len(available) == 0 {
		fmt.Fprintln(&b, "No open lots.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Lot | Acquired | Original | Remaining | Unit Cost | Cost Basis | Term |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|:---|")
	today := taxlot.Today()
	for _, lot := range available {
		term := "short"
		if lot.LongTermOn(today) {
			term = "long"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
			lot.ID, lot.AcquiredOn, lot.Original, lot.Remaining, lot.UnitCost, lot.CostBasis(), term)
	}
	fmt.Fprintf(&b, "\nTotal remaining: %s\n", lots.TotalRemaining())
	return b.String()
}
