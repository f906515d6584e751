// Package cmd implements the CLI application to manage a tax-lot ledger.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/corbel/taxlot"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&revertCmd{}, "transactions")
	c.Register(&rmCmd{}, "transactions")
	c.Register(&moveCmd{}, "transactions")

	c.Register(&lotsCmd{}, "reports")
	c.Register(&txCmd{}, "reports")
	c.Register(&harvestCmd{}, "reports")

	c.Register(&rebuildCmd{}, "maintenance")
	c.Register(&fmtCmd{}, "maintenance")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerPath = flag.String("ledger-path", ".", "Path to the folder holding ledger files (JSONL format)")

// DecodeLedger loads the ledger matching the query from the app ledger path.
// An empty query selects the only ledger, or an empty default one.
func DecodeLedger(query string) (*taxlot.Ledger, error) {
	return taxlot.FindLedger(*ledgerPath, query)
}

// storeFor returns the file store persisting the given ledger.
func storeFor(ledger *taxlot.Ledger) taxlot.FileStore {
	return taxlot.FileStore{Path: filepath.Join(*ledgerPath, ledger.Name()+".jsonl")}
}

// newMutator loads the queried ledger and wraps it in a mutator persisting to
// its file.
func newMutator(query string) (*taxlot.Mutator, error) {
	ledger, err := DecodeLedger(query)
	if err != nil {
		return nil, err
	}
	return taxlot.NewMutator(ledger, storeFor(ledger)), nil
}

// printMarkdown renders a markdown string to the terminal. When rendering
// fails the raw markdown is printed instead.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Println(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}

// parseDateFlag parses an optional date flag; an empty value means today.
func parseDateFlag(s string) (taxlot.Date, error) {
	if s == "" {
		return taxlot.Today(), nil
	}
	return taxlot.ParseDate(s)
}

// usageError prints the message and returns the usage-error exit status.
func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return subcommands.ExitUsageError
}
