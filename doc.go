// Package taxlot implements a tax-lot cost-basis ledger for fungible assets.
//
// Every acquisition is tracked as a discrete lot. A sale is resolved into an
// ordered consumption of specific lots under a chosen accounting method
// (FIFO, LIFO, HIFO, LOFO, average cost, or explicit selection), producing a
// realized gain/loss and a holding-period classification. The consumed-lot
// manifest recorded with each sale makes the operation losslessly
// reversible, and allows missing acquisition lots to be reconstructed from
// sale history alone.
//
// The core functionalities are:
//   - Ledger Management: an append-only, chronologically ordered record of
//     acquisitions and disposals, persisted as human-readable JSONL.
//   - Lot Accounting: deriving the open-lot book for any (asset, account)
//     pair by folding the ledger, with exact quantity conservation.
//   - Sale Resolution: a pure, previewable computation of a disposal under
//     any of the six selection policies.
//   - Ledger Mutation: committing, reversing, and reconstructing sales
//     atomically per (asset, account) key.
//   - Tax Mathematics: progressive federal/state bracket lookups and a
//     harvesting optimizer that weighs tax benefit against round-trip
//     trading costs.
//
// This package is the foundational logic for the `tlt` command-line tool.
package taxlot
