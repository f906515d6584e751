package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/corbel/taxlot"
	"github.com/corbel/taxlot/renderer"
	"github.com/google/subcommands"
)

// --- Lots Command ---

type lotsCmd struct {
	asset      string
	account    string
	check      bool
	ledgerFile string
}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open cost-basis lots of an asset" }
func (*lotsCmd) Usage() string {
	return `tlt lots -s <asset> [-account <account>] [-check]

  Lists the open lots of an asset, with their remaining quantity, unit cost
  and holding period. With -check, reconciles the whole ledger and reports
  any consistency fault instead.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "s", "", "Asset symbol")
	f.StringVar(&c.account, "account", "", "Account holding the asset")
	f.BoolVar(&c.check, "check", false, "Reconcile the ledger and report consistency faults")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.check {
		faults := ledger.Reconcile()
		if len(faults) == 0 {
			fmt.Println("Ledger is consistent.")
			return subcommands.ExitSuccess
		}
		for _, fault := range faults {
			fmt.Fprintln(os.Stderr, fault)
		}
		return subcommands.ExitFailure
	}

	if c.asset == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	printMarkdown(renderer.LotsMarkdown(c.asset, c.account, ledger.Lots(c.asset, c.account)))
	return subcommands.ExitSuccess
}

// --- Tx Command ---

type txCmd struct {
	asset      string
	account    string
	head       int
	tail       int
	ledgerFile string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list all transactions in the ledger" }
func (*txCmd) Usage() string {
	return `tlt tx [-s <asset>] [-account <account>] [-head <n>] [-tail <n>] [-l <ledger>]

  Lists transactions from the ledger, with options for filtering and limiting the output.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "s", "", "Only transactions of this asset.")
	f.StringVar(&c.account, "account", "", "Only transactions in this account.")
	f.IntVar(&c.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N transactions.")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	ledger, err := DecodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	filter := taxlot.AcceptAll
	switch {
	case c.asset != "" && c.account != "":
		filter = taxlot.ByKey(c.asset, c.account)
	case c.asset != "":
		filter = taxlot.ByAsset(c.asset)
	case c.account != "":
		filter = taxlot.ByAccount(c.account)
	}

	// head/tail limit by position in the accepted sequence
	var accepted int
	for range ledger.Transactions(filter) {
		accepted++
	}
	skip, limit := 0, accepted
	if c.head > 0 && c.head < accepted {
		limit = c.head
	}
	if c.tail > 0 && c.tail < accepted {
		skip = accepted - c.tail
	}
	i := 0
	limited := func(tx taxlot.Transaction) bool {
		if !filter(tx) {
			return false
		}
		ok := i >= skip && i < skip+limit
		i++
		return ok
	}

	printMarkdown(renderer.TransactionsMarkdown(ledger, limited))
	return subcommands.ExitSuccess
}

// --- Harvest Command ---

type harvestCmd struct {
	gains        bool
	asset        string
	account      string
	treatment    string
	price        float64
	currency     string
	quoteURL     string
	quotePath    string
	feeRate      float64
	date         string
	income       float64
	status       string
	year         int
	state        string
	futureRate   float64
	includeShort bool
	ledgerFile   string
}

func (*harvestCmd) Name() string     { return "harvest" }
func (*harvestCmd) Synopsis() string { return "recommend tax-loss or tax-gain harvesting trades" }
func (*harvestCmd) Usage() string {
	return `tlt harvest -s <asset> -p <price> -income <gross> [-gains] [-status <status>] [-year <year>] [-state <code>]

  Recommends realizing losses (default) or gains (-gains) on the open lots of
  an asset, weighing the tax impact against the round-trip trading cost. The
  recommendation is advisory; nothing is recorded.

  The current price comes from -p, or is fetched live when -quote-url and
  -quote-path are given.
`
}

func (c *harvestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.gains, "gains", false, "Harvest gains in the 0% long-term bracket instead of losses")
	f.StringVar(&c.asset, "s", "", "Asset symbol")
	f.StringVar(&c.account, "account", "", "Account holding the asset")
	f.StringVar(&c.treatment, "treatment", "taxable", "Tax treatment of the account (taxable, tax-deferred, tax-free)")
	f.Float64Var(&c.price, "p", 0, "Current market price per unit")
	f.StringVar(&c.currency, "cur", "USD", "Currency of the price")
	f.StringVar(&c.quoteURL, "quote-url", "", "Quote endpoint; the asset symbol is appended as ?symbol=")
	f.StringVar(&c.quotePath, "quote-path", "$.price", "JSONPath to the price in the quote response")
	f.Float64Var(&c.feeRate, "fee-rate", 0, "One-way trading fee, as a fraction of traded value")
	f.StringVar(&c.date, "d", "", "Evaluation date (YYYY-MM-DD), defaults to today")
	f.Float64Var(&c.income, "income", 0, "Gross ordinary income of the filer")
	f.StringVar(&c.status, "status", "single", "Filing status (single, married-joint, married-separate, head-of-household)")
	f.IntVar(&c.year, "year", taxlot.Today().Year(), "Tax year")
	f.StringVar(&c.state, "state", "", "State code for state tax (e.g. CA, CO); empty for none")
	f.Float64Var(&c.futureRate, "future-rate", 0.15, "Expected future long-term rate, for gain harvesting")
	f.BoolVar(&c.includeShort, "include-short", false, "Also realize short-term gains once long-term room is exhausted")
	f.StringVar(&c.ledgerFile, "l", "", "Ledger to report on. Defaults to the only ledger if one exists.")
}

func (c *harvestCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	status, err := taxlot.ParseFilingStatus(c.status)
	if err != nil {
		return usageError("Error parsing filing status: %v", err)
	}
	treatment, err := taxlot.ParseTaxTreatment(c.treatment)
	if err != nil {
		return usageError("Error parsing tax treatment: %v", err)
	}
	day, err := parseDateFlag(c.date)
	if err != nil {
		return usageError("Error parsing date: %v", err)
	}

	price := c.price
	if price == 0 && c.quoteURL != "" {
		price, err = taxlot.NewQuoteClient(c.quoteURL, c.quotePath).CurrentPrice(c.asset)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if price <= 0 {
		return usageError("A current price is required: set -p or -quote-url.")
	}

	ledger, err := DecodeLedger(c.ledgerFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	params := taxlot.HarvestParams{
		Lots:             ledger.Lots(c.asset, c.account),
		Treatment:        treatment,
		Price:            taxlot.M(price, c.currency),
		FeeRate:          c.feeRate,
		On:               day,
		GrossIncome:      c.income,
		Status:           status,
		Year:             c.year,
		State:            c.state,
		Tables:           taxlot.DefaultTaxTables(),
		FutureRate:       c.futureRate,
		IncludeShortTerm: c.includeShort,
	}

	var kind string
	var rec taxlot.Recommendation
	if c.gains {
		kind = "Gain"
		rec, err = taxlot.HarvestGainCandidates(params)
	} else {
		kind = "Loss"
		rec, err = taxlot.HarvestLossCandidates(params)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.HarvestMarkdown(kind, rec))
	return subcommands.ExitSuccess
}
