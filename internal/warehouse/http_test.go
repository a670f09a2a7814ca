package warehouse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/consignd/commerce-backend/pkg/errors"
)

type passLimiter struct{ waits int }

func (l *passLimiter) Wait(ctx context.Context) error {
	l.waits++
	return nil
}

func TestHTTPFetchGrossInventory(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/inventory" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"og-kush-1","quantity":100},{"id":"gelato-1","quantity":120}]}`))
	}))
	defer srv.Close()

	limiter := &passLimiter{}
	client, err := NewHTTP(HTTPConfig{BaseURL: srv.URL, APIKey: "secret", RequestTimeout: time.Second}, limiter)
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	items, err := client.FetchGrossInventory(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "og-kush-1" || items[0].Quantity != 100 {
		t.Fatalf("unexpected items %+v", items)
	}
	if limiter.waits != 1 {
		t.Fatalf("expected one limiter wait, got %d", limiter.waits)
	}
}

func TestHTTPFetchGrossInventoryVendorError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewHTTP(HTTPConfig{BaseURL: srv.URL}, &passLimiter{})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	_, err = client.FetchGrossInventory(context.Background())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestHTTPSubmitOrder(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body["order_id"] != "order-1" {
			t.Errorf("unexpected order id %q", body["order_id"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"vendor_order_id":"vo-9"}`))
	}))
	defer srv.Close()

	client, err := NewHTTP(HTTPConfig{BaseURL: srv.URL}, &passLimiter{})
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	receipt, err := client.SubmitOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	var decoded map[string]string
	if err := json.Unmarshal(receipt, &decoded); err != nil {
		t.Fatalf("receipt not json: %v", err)
	}
	if decoded["vendor_order_id"] != "vo-9" {
		t.Fatalf("unexpected receipt %s", receipt)
	}
}

func TestNewHTTPValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTP(HTTPConfig{}, &passLimiter{}); err == nil {
		t.Fatal("expected error for missing base url")
	}
	if _, err := NewHTTP(HTTPConfig{BaseURL: "http://vendor"}, nil); err == nil {
		t.Fatal("expected error for nil limiter")
	}
}
