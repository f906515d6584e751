package taxlot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes transactions from a stream of JSONL data, one
// transaction per line, and returns a sorted Ledger.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(lineBytes), err)
		}

		var decodedTx Transaction
		switch identifier.Command {
		case CmdAcquire:
			var buy Acquire
			if err := json.Unmarshal(lineBytes, &buy); err != nil {
				return nil, fmt.Errorf("could not decode acquire line %q: %w", string(lineBytes), err)
			}
			decodedTx = buy
		case CmdDispose:
			var sale Dispose
			if err := json.Unmarshal(lineBytes, &sale); err != nil {
				return nil, fmt.Errorf("could not decode dispose line %q: %w", string(lineBytes), err)
			}
			decodedTx = sale
		default:
			return nil, fmt.Errorf("unknown command %q in line %q", identifier.Command, string(lineBytes))
		}

		if err := ledger.Append(decodedTx); err != nil {
			return nil, fmt.Errorf("could not append line %q: %w", string(lineBytes), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger stream: %w", err)
	}
	return ledger, nil
}

// EncodeTransaction writes a single transaction as one JSONL line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("could not marshal %s transaction: %w", tx.What(), err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// EncodeLedger writes the whole ledger in canonical JSONL form: one
// transaction per line, in chronological order, with stable field order.
func EncodeLedger(w io.Writer, l *Ledger) error {
	for _, tx := range l.Transactions(AcceptAll) {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}
