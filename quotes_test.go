package taxlot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuoteClient_CurrentPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"symbol":%q,"quote":{"last":123.45}}`, r.URL.Query().Get("symbol"))
	}))
	defer srv.Close()

	q := &QuoteClient{BaseURL: srv.URL, PricePath: "$.quote.last", client: srv.Client()}
	price, err := q.CurrentPrice("VTI")
	if err != nil {
		t.Fatalf("CurrentPrice() error = %v", err)
	}
	if price != 123.45 {
		t.Errorf("CurrentPrice() = %v, want 123.45", price)
	}
}

func TestQuoteClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quote":{"last":"not-a-number"}}`)
	}))
	defer srv.Close()

	q := &QuoteClient{BaseURL: srv.URL, PricePath: "$.quote.last", client: srv.Client()}
	if _, err := q.CurrentPrice("VTI"); err == nil {
		t.Error("non-numeric quote must error")
	}

	q.PricePath = "$.missing.path"
	if _, err := q.CurrentPrice("VTI"); err == nil {
		t.Error("missing path must error")
	}
}
