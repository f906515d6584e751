package taxlot

import (
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/PaesslerAG/jsonpath"
)

// QuoteClient fetches point-in-time prices from a JSON quote endpoint. The
// core never fetches prices on its own: only the CLI uses this, to feed a
// current price into the harvest optimizer.
//
// Quote APIs disagree wildly on their response shape, so the price is
// extracted with a configurable JSONPath expression instead of a typed
// response struct.
type QuoteClient struct {
	BaseURL   string // endpoint; the asset symbol is appended as ?symbol=
	PricePath string // JSONPath to the price value, e.g. "$.quote.last"
	client    *http.Client
}

// NewQuoteClient creates a quote client with a daily-expiring disk cache, so
// repeated advisory runs in one day do not hammer the provider.
func NewQuoteClient(baseURL, pricePath string) *QuoteClient {
	return &QuoteClient{BaseURL: baseURL, PricePath: pricePath, client: daily()}
}

// CurrentPrice returns the latest price for the asset symbol.
func (q *QuoteClient) CurrentPrice(symbol string) (float64, error) {
	addr := q.BaseURL + "?symbol=" + url.QueryEscape(symbol)

	var jobj any
	if err := jwget(q.client, addr, &jobj); err != nil {
		return math.NaN(), fmt.Errorf("error retrieving quote for %q: %w", symbol, err)
	}

	jval, err := jsonpath.Get(q.PricePath, jobj)
	if err != nil {
		return math.NaN(), fmt.Errorf("error extracting %q from quote for %q: %w", q.PricePath, symbol, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	val, ok := jval.(float64)
	if !ok {
		return math.NaN(), fmt.Errorf("quote for %q at %q is not a number: %v", symbol, q.PricePath, jval)
	}
	if val == 0 {
		return math.NaN(), fmt.Errorf("empty quote for %q", symbol)
	}
	return val, nil
}
