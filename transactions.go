package taxlot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandType is a typed string for identifying transaction commands.
type CommandType string

// Command types used for identifying transactions.
const (
	CmdAcquire CommandType = "acquire"
	CmdDispose CommandType = "dispose"
)

// Transaction defines the common interface for all events recorded in the
// ledger.
type Transaction interface {
	What() CommandType // What returns the command type of the transaction (e.g., "acquire").
	When() Date        // When returns the date on which the transaction occurred.
	Equal(Transaction) bool
}

type baseTx struct {
	Command CommandType `json:"command"`        // Command specifies the type of transaction.
	Date    Date        `json:"date"`           // Date is the date when the transaction took place.
	Memo    string      `json:"memo,omitempty"` // Memo provides an optional rationale for the transaction.
}

// What returns the command name for the transaction.
func (t baseTx) What() CommandType { return t.Command }

// When returns the date of the transaction.
func (t baseTx) When() Date { return t.Date }

// MarshalJSON implements the json.Marshaler interface for baseTx.
func (t baseTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", t.Command)
	w.Append("date", t.Date)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// Validate checks the base command fields. It sets the date to today if it's
// zero. It is meant to be embedded in other transaction validation methods.
func (t *baseTx) Validate() {
	if t.Date == (Date{}) {
		t.Date = Today()
	}
}

// assetTx is a component for transactions scoped to one (asset, account) pair.
type assetTx struct {
	baseTx
	ID      string `json:"id"`                // ID is the stable identity of the transaction.
	Asset   string `json:"asset"`             // Asset is the symbol of the fungible asset.
	Account string `json:"account,omitempty"` // Account holding the asset; empty means unassigned.
}

// Validate checks the asset command fields. It validates the base command,
// ensures an asset symbol is present, and assigns a fresh identity when the
// caller did not provide one.
func (t *assetTx) Validate() error {
	t.baseTx.Validate()
	if t.Asset == "" {
		return errors.New("asset symbol is missing")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Key returns the (asset, account) key this transaction belongs to. All
// mutations are serialized per key.
func (t assetTx) Key() string { return t.Asset + "/" + t.Account }

// MarshalJSON implements the json.Marshaler interface for assetTx.
func (t assetTx) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.baseTx)
	w.Append("id", t.ID)
	w.Append("asset", t.Asset)
	w.Optional("account", t.Account)
	return w.MarshalJSON()
}

// Acquire represents the purchase of a quantity of an asset. Each acquisition
// opens exactly one cost-basis lot.
type Acquire struct {
	assetTx
	Quantity    Quantity // Quantity is the number of units bought.
	UnitCost    Money    // UnitCost is the acquisition cost per unit.
	FeeIncluded bool     // FeeIncluded is true when UnitCost already nets the acquisition fee.
}

// NewAcquire creates a new Acquire transaction.
func NewAcquire(day Date, memo, asset, account string, quantity Quantity, unitCost Money, feeIncluded bool) Acquire {
	return Acquire{
		assetTx:     assetTx{baseTx: baseTx{Command: CmdAcquire, Date: day, Memo: memo}, ID: uuid.NewString(), Asset: asset, Account: account},
		Quantity:    quantity,
		UnitCost:    unitCost,
		FeeIncluded: feeIncluded,
	}
}

// MarshalJSON implements the json.Marshaler interface for Acquire.
func (t Acquire) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.assetTx)
	w.Append("quantity", t.Quantity)
	w.Append("unitCost", t.UnitCost.value)
	w.Optional("currency", t.UnitCost.Currency())
	w.Optional("feeIncluded", t.FeeIncluded)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Acquire. It
// handles the custom structure where amount and currency are separate fields.
func (t *Acquire) UnmarshalJSON(data []byte) error {
	var temp struct {
		assetTx
		Quantity    Quantity        `json:"quantity"`
		UnitCost    decimal.Decimal `json:"unitCost"`
		Currency    string          `json:"currency"`
		FeeIncluded bool            `json:"feeIncluded"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.assetTx = temp.assetTx
	t.Quantity = temp.Quantity
	t.UnitCost = M(temp.UnitCost, temp.Currency)
	t.FeeIncluded = temp.FeeIncluded
	return nil
}

func (t Acquire) Equal(other Transaction) bool {
	o, ok := other.(Acquire)
	return ok && t.assetTx == o.assetTx && t.Quantity.Equal(o.Quantity) &&
		t.UnitCost.Equal(o.UnitCost) && t.FeeIncluded == o.FeeIncluded
}

// Validate checks the Acquire transaction's fields: the quantity must be
// positive and the unit cost non-negative.
func (t Acquire) Validate() (Transaction, error) {
	if err := t.assetTx.Validate(); err != nil {
		return t, err
	}
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("acquire quantity must be positive, got %s", t.Quantity)
	}
	if t.UnitCost.IsNegative() {
		return t, fmt.Errorf("acquire unit cost must not be negative, got %s", t.UnitCost)
	}
	return t, nil
}

// Holding classifies the holding period of a disposal.
type Holding int

const (
	// ShortTerm means at least one consumed lot was held 365 days or less.
	ShortTerm Holding = iota
	// LongTerm means every consumed lot was held more than 365 days.
	LongTerm
)

// longTermDays is the holding period, in days, beyond which a lot qualifies
// for long-term treatment.
const longTermDays = 365

func (h Holding) String() string {
	if h == LongTerm {
		return "long-term"
	}
	return "short-term"
}

// MarshalJSON implements the json.Marshaler interface for Holding.
func (h Holding) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", h.String())), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface for Holding.
func (h *Holding) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"long-term"`:
		*h = LongTerm
	case `"short-term"`:
		*h = ShortTerm
	default:
		return fmt.Errorf("unknown holding period %s", data)
	}
	return nil
}

// LotConsumption is one line of a disposal's consumed-lot manifest: how much
// was taken from which lot, at which recorded unit cost.
type LotConsumption struct {
	LotID      string   // LotID references the consumed Acquire's identity.
	Quantity   Quantity // Quantity consumed from the lot.
	UnitCost   Money    // UnitCost of the lot at consumption time.
	AcquiredOn Date     // AcquiredOn is the lot's acquisition date.
}

// MarshalJSON implements the json.Marshaler interface for LotConsumption.
func (c LotConsumption) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("lot", c.LotID)
	w.Append("quantity", c.Quantity)
	w.Append("unitCost", c.UnitCost.value)
	w.Optional("currency", c.UnitCost.Currency())
	w.Append("acquiredOn", c.AcquiredOn)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for LotConsumption.
func (c *LotConsumption) UnmarshalJSON(data []byte) error {
	var temp struct {
		LotID      string          `json:"lot"`
		Quantity   Quantity        `json:"quantity"`
		UnitCost   decimal.Decimal `json:"unitCost"`
		Currency   string          `json:"currency"`
		AcquiredOn Date            `json:"acquiredOn"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	c.LotID = temp.LotID
	c.Quantity = temp.Quantity
	c.UnitCost = M(temp.UnitCost, temp.Currency)
	c.AcquiredOn = temp.AcquiredOn
	return nil
}

func (c LotConsumption) equal(o LotConsumption) bool {
	return c.LotID == o.LotID && c.Quantity.Equal(o.Quantity) &&
		c.UnitCost.Equal(o.UnitCost) && c.AcquiredOn == o.AcquiredOn
}

// Dispose represents the sale of a quantity of an asset, together with the
// ordered manifest of the lots it consumed and the realized outcome.
type Dispose struct {
	assetTx
	Quantity  Quantity         // Quantity is the number of units sold.
	UnitPrice Money            // UnitPrice is the sale price per unit.
	Fee       Money            // Fee is the transaction fee, deducted from proceeds.
	Method    Method           // Method is the selection policy used at commit time.
	Consumed  []LotConsumption // Consumed is the ordered consumed-lot manifest.
	Proceeds  Money            // Proceeds = Quantity*UnitPrice - Fee.
	CostBasis Money            // CostBasis = sum of consumed quantity * unit cost.
	Gain      Money            // Gain = Proceeds - CostBasis.
	Holding   Holding          // Holding classifies the whole disposal.
}

// MarshalJSON implements the json.Marshaler interface for Dispose.
func (t Dispose) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.EmbedFrom(t.assetTx)
	w.Append("quantity", t.Quantity)
	w.Append("unitPrice", t.UnitPrice.value)
	w.Optional("currency", t.UnitPrice.Currency())
	w.Append("fee", t.Fee.value)
	w.Append("method", t.Method)
	w.Append("consumed", t.Consumed)
	w.Append("proceeds", t.Proceeds.value)
	w.Append("costBasis", t.CostBasis.value)
	w.Append("gain", t.Gain.value)
	w.Append("holding", t.Holding)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Dispose.
func (t *Dispose) UnmarshalJSON(data []byte) error {
	var temp struct {
		assetTx
		Quantity  Quantity         `json:"quantity"`
		UnitPrice decimal.Decimal  `json:"unitPrice"`
		Currency  string           `json:"currency"`
		Fee       decimal.Decimal  `json:"fee"`
		Method    Method           `json:"method"`
		Consumed  []LotConsumption `json:"consumed"`
		Proceeds  decimal.Decimal  `json:"proceeds"`
		CostBasis decimal.Decimal  `json:"costBasis"`
		Gain      decimal.Decimal  `json:"gain"`
		Holding   Holding          `json:"holding"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.assetTx = temp.assetTx
	t.Quantity = temp.Quantity
	t.UnitPrice = M(temp.UnitPrice, temp.Currency)
	t.Fee = M(temp.Fee, temp.Currency)
	t.Method = temp.Method
	t.Consumed = temp.Consumed
	t.Proceeds = M(temp.Proceeds, temp.Currency)
	t.CostBasis = M(temp.CostBasis, temp.Currency)
	t.Gain = M(temp.Gain, temp.Currency)
	t.Holding = temp.Holding
	return nil
}

func (t Dispose) Equal(other Transaction) bool {
	o, ok := other.(Dispose)
	if !ok || t.assetTx != o.assetTx || !t.Quantity.Equal(o.Quantity) ||
		!t.UnitPrice.Equal(o.UnitPrice) || !t.Fee.Equal(o.Fee) ||
		t.Method != o.Method || t.Holding != o.Holding ||
		len(t.Consumed) != len(o.Consumed) {
		return false
	}
	for i := range t.Consumed {
		if !t.Consumed[i].equal(o.Consumed[i]) {
			return false
		}
	}
	return true
}

// quantityTolerance is the relative epsilon within which consumed quantities
// must sum to the disposed quantity. The selector produces exact sums for the
// discrete methods; average-cost pro-rata shares divide inexactly.
var quantityTolerance = decimal.New(1, -9)

// sumsToQuantity reports whether the manifest quantities sum to want within
// the relative tolerance.
func sumsToQuantity(consumed []LotConsumption, want Quantity) bool {
	var sum Quantity
	for _, c := range consumed {
		sum = sum.Add(c.Quantity)
	}
	diff := sum.value.Sub(want.value).Abs()
	return diff.LessThanOrEqual(want.value.Abs().Mul(quantityTolerance))
}

// Validate checks the Dispose transaction's internal consistency: positive
// quantity, a manifest that covers the quantity exactly, and the cost-basis
// and gain identities.
func (t Dispose) Validate() (Transaction, error) {
	if err := t.assetTx.Validate(); err != nil {
		return t, err
	}
	if !t.Quantity.IsPositive() {
		return t, fmt.Errorf("dispose quantity must be positive, got %s", t.Quantity)
	}
	if len(t.Consumed) == 0 {
		return t, errors.New("dispose has an empty consumed-lot manifest")
	}
	if !sumsToQuantity(t.Consumed, t.Quantity) {
		return t, fmt.Errorf("consumed lots do not cover the disposed quantity %s", t.Quantity)
	}
	var basis Money
	for _, c := range t.Consumed {
		basis = basis.Add(c.UnitCost.Mul(c.Quantity))
	}
	if !basis.Equal(t.CostBasis) {
		return t, fmt.Errorf("cost basis %s does not match manifest total %s", t.CostBasis, basis)
	}
	if !t.Proceeds.Sub(t.CostBasis).Equal(t.Gain) {
		return t, fmt.Errorf("gain %s does not equal proceeds minus cost basis", t.Gain)
	}
	return t, nil
}
