package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCurrencyExchange_Execute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("from") != "USD" || q.Get("to") != "EUR" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Write([]byte(`{"amount":100,"base":"USD","date":"2026-08-28","rates":{"EUR":92.41}}`))
	}))
	defer srv.Close()

	c := NewCurrencyExchange(srv.Client())
	c.baseURL = srv.URL

	out, err := c.Execute(context.Background(), json.RawMessage(`{"amount":100,"from":"usd","to":"eur"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "100.00 USD = 92.41 EUR") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "2026-08-28") {
		t.Errorf("rate date missing: %q", out)
	}
}

func TestCurrencyExchange_SameCurrency(t *testing.T) {
	c := NewCurrencyExchange(http.DefaultClient)

	out, err := c.Execute(context.Background(), json.RawMessage(`{"amount":50,"from":"USD","to":"USD"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "50.00 USD = 50.00 USD") {
		t.Errorf("output = %q", out)
	}
}

func TestCurrencyExchange_MissingCodes(t *testing.T) {
	c := NewCurrencyExchange(http.DefaultClient)
	if _, err := c.Execute(context.Background(), json.RawMessage(`{"from":"USD"}`)); err == nil {
		t.Fatal("expected error for missing target currency")
	}
}

func TestCurrencyExchange_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCurrencyExchange(srv.Client())
	c.baseURL = srv.URL

	if _, err := c.Execute(context.Background(), json.RawMessage(`{"from":"XXX","to":"YYY"}`)); err == nil {
		t.Fatal("expected error for bad currency codes")
	}
}
