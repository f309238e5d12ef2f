package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func testCollectGateway(baseURL string) *CollectGateway {
	return &CollectGateway{
		baseURL:     baseURL,
		apiKey:      "key",
		secret:      "secret",
		callbackURL: "http://localhost:8080/api/v1/webhook/processWebhook",
		client:      &http.Client{Timeout: 2 * time.Second},
	}
}

func TestCollectGatewayCreateCollection(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "key" || pass != "secret" {
			t.Error("missing or wrong basic auth")
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing request id")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"id":"gw-ref-1","payment_url":"https://pay.example/xyz"}`)
	}))
	defer srv.Close()

	g := testCollectGateway(srv.URL)
	resp, err := g.CreateCollection(context.Background(), CollectRequest{
		Amount:       500,
		Receipt:      "ORD1",
		StudentName:  "Alice",
		StudentID:    "STU1",
		StudentEmail: "a@x.com",
		Description:  "Payment for Alice",
	})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if resp.PaymentURL != "https://pay.example/xyz" || resp.GatewayReference != "gw-ref-1" {
		t.Errorf("resp = %+v", resp)
	}

	if captured["receipt"] != "ORD1" {
		t.Errorf("receipt = %v", captured["receipt"])
	}
	// Minor units on the wire.
	if captured["amount"] != float64(50000) {
		t.Errorf("amount = %v, want 50000", captured["amount"])
	}

	// The signature must verify against the shared secret and carry
	// the order id.
	signed, _ := captured["sign"].(string)
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("signature does not verify: %v", err)
	}
	if claims["order_id"] != "ORD1" {
		t.Errorf("signed order_id = %v", claims["order_id"])
	}
}

func TestCollectGatewayMinorUnitAmounts(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode body: %v", err)
		}
		fmt.Fprint(w, `{"id":"ref","payment_url":"u"}`)
	}))
	defer srv.Close()

	g := testCollectGateway(srv.URL)

	// Fractional amounts whose float product lands just under the
	// integer must still round to the exact minor-unit value.
	cases := []struct {
		amount float64
		want   float64
	}{
		{4.35, 435},
		{8.2, 820},
		{1.15, 115},
		{10.10, 1010},
		{500, 50000},
	}
	for _, tc := range cases {
		if _, err := g.CreateCollection(context.Background(), CollectRequest{Amount: tc.amount, Receipt: "ORD1"}); err != nil {
			t.Fatalf("amount %v: %v", tc.amount, err)
		}
		if captured["amount"] != tc.want {
			t.Errorf("amount %v sent as %v, want %v", tc.amount, captured["amount"], tc.want)
		}
	}
}

func TestCollectGatewayFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"upstream down"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := testCollectGateway(srv.URL)
	_, err := g.CreateCollection(context.Background(), CollectRequest{Amount: 100, Receipt: "ORD1"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}

func TestCollectGatewayUnreachable(t *testing.T) {
	g := testCollectGateway("http://127.0.0.1:1")
	_, err := g.CreateCollection(context.Background(), CollectRequest{Amount: 100, Receipt: "ORD1"})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
}
