package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// --- Rebuild Command ---

type rebuildCmd struct {
	ledgerFile string
}

func (*rebuildCmd) Name() string     { return "rebuild" }
func (*rebuildCmd) Synopsis() string { return "reconstruct missing lots from the sale history" }
func (*rebuildCmd) Usage() string {
	return `tlt rebuild [-l <ledger>]

  Scans the ledger for sales whose consumed-lot manifest references a lot
  with no corresponding acquisition, as happens after a partial import, and
  synthesizes the missing acquisitions from the manifests. A reconstructed
  lot's quantity is exactly what the sales consumed, so it never adds
  available supply. Running it twice creates nothing new.
`
}

func (c *rebuildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to rebuild. Defaults to the only ledger if one exists.")
}

func (c *rebuildCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	mutator, err := newMutator(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	n, err := mutator.ReconstructLots()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if n == 0 {
		fmt.Println("No lot to reconstruct.")
	} else {
		fmt.Printf("Reconstructed %d lots from the sale history.\n", n)
	}
	return subcommands.ExitSuccess
}

// --- Fmt Command ---

type fmtCmd struct {
	ledgerFile string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `tlt fmt [-l <ledger>]

  Validates and formats the ledger file. This command reads all transactions,
  validates them, sorts them by date, and writes them back in a canonical
  JSONL format with stable key order.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to format. Defaults to the only ledger if one exists.")
}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not load ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if faults := ledger.Reconcile(); len(faults) > 0 {
		for _, fault := range faults {
			fmt.Fprintln(os.Stderr, fault)
		}
		return subcommands.ExitFailure
	}
	if err := storeFor(ledger).Save(ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving formatted ledger %q: %v\n", ledger.Name(), err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted ledger %q.\n", ledger.Name())
	return subcommands.ExitSuccess
}
