package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/corbel/taxlot"
	"github.com/corbel/taxlot/renderer"
	"github.com/google/subcommands"
)

// --- Buy Command ---

type buyCmd struct {
	date        string
	asset       string
	account     string
	quantity    float64
	cost        float64
	currency    string
	feeIncluded bool
	memo        string
	ledgerFile  string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record an acquisition, opening a new cost-basis lot" }
func (*buyCmd) Usage() string {
	return `tlt buy -s <asset> -q <quantity> -c <unit_cost> [-d <date>] [-account <account>] [-m <memo>]

  Records the purchase of a quantity of an asset. Each purchase opens exactly
  one lot; the lot's identity is printed so it can later be designated in a
  specific-lot sale.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.asset, "s", "", "Asset symbol")
	f.StringVar(&c.account, "account", "", "Account holding the asset")
	f.Float64Var(&c.quantity, "q", 0, "Number of units")
	f.Float64Var(&c.cost, "c", 0, "Acquisition cost per unit")
	f.StringVar(&c.currency, "cur", "USD", "Currency of the unit cost")
	f.BoolVar(&c.feeIncluded, "fee-included", false, "The unit cost already nets the acquisition fee")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the transaction")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to record into. Defaults to the only ledger if one exists.")
}

func (c *buyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.quantity <= 0 || c.cost < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := parseDateFlag(c.date)
	if err != nil {
		return usageError("Error parsing date: %v", err)
	}

	ledger, err := DecodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	buy := taxlot.NewAcquire(day, c.memo, c.asset, c.account, taxlot.Q(c.quantity), taxlot.M(c.cost, c.currency), c.feeIncluded)
	tx, err := buy.Validate()
	if err != nil {
		return usageError("Invalid acquisition: %v", err)
	}
	buy = tx.(taxlot.Acquire)

	if err := ledger.Append(buy); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := storeFor(ledger).Save(ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Opened lot %s: %s\n", buy.ID, renderer.Transaction(buy))
	return subcommands.ExitSuccess
}

// --- Sell Command ---

// lotSpecs collects repeated -lot id:qty flags into a specific-lot designation.
type lotSpecs []taxlot.SpecificLot

func (s *lotSpecs) String() string {
	parts := make([]string, 0, len(*s))
	for _, l := range *s {
		parts = append(parts, fmt.Sprintf("%s:%s", l.LotID, l.Quantity))
	}
	return strings.Join(parts, ",")
}

func (s *lotSpecs) Set(v string) error {
	id, qty, ok := strings.Cut(v, ":")
	if !ok || id == "" {
		return fmt.Errorf("expected <lot_id>:<quantity>, got %q", v)
	}
	var q float64
	if _, err := fmt.Sscanf(qty, "%g", &q); err != nil {
		return fmt.Errorf("invalid quantity in %q: %w", v, err)
	}
	*s = append(*s, taxlot.SpecificLot{LotID: id, Quantity: taxlot.Q(q)})
	return nil
}

type sellCmd struct {
	date       string
	asset      string
	account    string
	quantity   float64
	price      float64
	fee        float64
	currency   string
	method     string
	lots       lotSpecs
	preview    bool
	memo       string
	ledgerFile string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "resolve and record a sale against the open lots" }
func (*sellCmd) Usage() string {
	return `tlt sell -s <asset> -q <quantity> -p <price> [-method <method>] [-lot <id>:<qty>]... [-preview]

  Resolves a sale into a consumed-lot plan under the chosen selection method
  (fifo, lifo, hifo, lofo, average, specific) and records it. With -preview,
  the outcome of every method is shown side by side and nothing is recorded.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Transaction date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.asset, "s", "", "Asset symbol")
	f.StringVar(&c.account, "account", "", "Account holding the asset")
	f.Float64Var(&c.quantity, "q", 0, "Number of units to sell")
	f.Float64Var(&c.price, "p", 0, "Sale price per unit")
	f.Float64Var(&c.fee, "fee", 0, "Transaction fee, deducted from proceeds")
	f.StringVar(&c.currency, "cur", "USD", "Currency of the sale price")
	f.StringVar(&c.method, "method", "fifo", "Lot selection method (fifo, lifo, hifo, lofo, average, specific)")
	f.Var(&c.lots, "lot", "Designate a lot as <lot_id>:<quantity>. Repeatable; implies -method specific.")
	f.BoolVar(&c.preview, "preview", false, "Preview the outcome under every method without recording")
	f.StringVar(&c.memo, "m", "", "An optional rationale or note for the transaction")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to record into. Defaults to the only ledger if one exists.")
}

func (c *sellCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.quantity <= 0 || c.price < 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	day, err := parseDateFlag(c.date)
	if err != nil {
		return usageError("Error parsing date: %v", err)
	}
	method, err := taxlot.ParseMethod(c.method)
	if err != nil {
		return usageError("Error parsing method: %v", err)
	}
	if len(c.lots) > 0 {
		method = taxlot.Specific
	}

	req := taxlot.SaleRequest{
		Asset:     c.asset,
		Account:   c.account,
		Date:      day,
		Quantity:  taxlot.Q(c.quantity),
		UnitPrice: taxlot.M(c.price, c.currency),
		Fee:       taxlot.M(c.fee, c.currency),
		Method:    method,
		Specific:  c.lots,
		Memo:      c.memo,
	}

	if c.preview {
		ledger, err := DecodeLedger(c.ledgerFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		printMarkdown(renderer.PreviewMarkdown(ledger.PreviewMethods(req)))
		return subcommands.ExitSuccess
	}

	mutator, err := newMutator(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	draft, err := mutator.Ledger().ResolveSale(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	sale, err := mutator.CommitSale(draft)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.ResolutionMarkdown(sale))
	return subcommands.ExitSuccess
}

// --- Revert Command ---

type revertCmd struct {
	ledgerFile string
}

func (*revertCmd) Name() string     { return "revert" }
func (*revertCmd) Synopsis() string { return "reverse a committed sale, restoring its consumed lots" }
func (*revertCmd) Usage() string {
	return `tlt revert <sale_id>

  Reverses a committed sale: every lot in its consumed-lot manifest gets its
  quantity back, exactly as before the sale, and the sale record is removed.
`
}

func (c *revertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger holding the sale. Defaults to the only ledger if one exists.")
}

func (c *revertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	mutator, err := newMutator(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := mutator.ReverseSale(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Reversed sale %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

// --- Rm Command ---

type rmCmd struct {
	ledgerFile string
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete an untouched acquisition" }
func (*rmCmd) Usage() string {
	return `tlt rm <lot_id>

  Deletes an acquisition. This is only legal while the lot is untouched; a
  lot with consumed quantity must first have every consuming sale reverted.
`
}

func (c *rmCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledgerFile, "l", "", "Ledger holding the acquisition. Defaults to the only ledger if one exists.")
}

func (c *rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	mutator, err := newMutator(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := mutator.DeleteAcquire(f.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted acquisition %s\n", f.Arg(0))
	return subcommands.ExitSuccess
}

// --- Move Command ---

type moveCmd struct {
	asset      string
	from       string
	to         string
	ledgerFile string
}

func (*moveCmd) Name() string     { return "move" }
func (*moveCmd) Synopsis() string { return "move an asset's transactions between accounts" }
func (*moveCmd) Usage() string {
	return `tlt move -s <asset> -from <account> -to <account>

  Moves every transaction of an asset from one account to another, as a
  single batch. Lot books are recomputed once the whole batch is applied.
`
}

func (c *moveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "s", "", "Asset symbol")
	f.StringVar(&c.from, "from", "", "Source account")
	f.StringVar(&c.to, "to", "", "Destination account")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to modify. Defaults to the only ledger if one exists.")
}

func (c *moveCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" || c.from == c.to {
		f.Usage()
		return subcommands.ExitUsageError
	}
	mutator, err := newMutator(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	n, err := mutator.BulkReassign(c.asset, c.from, c.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Moved %d transactions of %s from %q to %q\n", n, c.asset, c.from, c.to)
	return subcommands.ExitSuccess
}
