// Package renderer formats ledgers, lot books, sale resolutions and harvest
// recommendations as markdown, to be printed raw or through a terminal
// renderer by the CLI.
package renderer

import (
	"fmt"
	"strings"

	"github.com/corbel/taxlot"
)

// Transaction renders a transaction to a one-line string.
func Transaction(tx taxlot.Transaction) string {
	switch v := tx.(type) {
	case taxlot.Acquire:
		return fmt.Sprintf("Acquired %s of %s at %s in %s", v.Quantity, v.Asset, v.UnitCost, v.Account)
	case taxlot.Dispose:
		return fmt.Sprintf("Disposed %s of %s at %s in %s (%s, %s gain %s)",
			v.Quantity, v.Asset, v.UnitPrice, v.Account, v.Method, v.Holding, v.Gain.SignedString())
	default:
		return string(tx.What())
	}
}

// TransactionsMarkdown renders the ledger's transaction history as a
// markdown table, in chronological order.
func TransactionsMarkdown(ledger *taxlot.Ledger, filter func(taxlot.Transaction) bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions in %s\n\n", ledger.Name())
	fmt.Fprintln(&b, "| Date | Command | Asset | Account | Quantity | Price | Gain |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|")
	for _, tx := range ledger.Transactions(filter) {
		switch v := tx.(type) {
		case taxlot.Acquire:
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | |\n",
				v.When(), v.What(), v.Asset, v.Account, v.Quantity, v.UnitCost)
		case taxlot.Dispose:
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				v.When(), v.What(), v.Asset, v.Account, v.Quantity, v.UnitPrice, v.Gain.SignedString())
		}
	}
	return b.String()
}
