package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// CollectGateway talks to the default REST collect API. Each request
// carries a signed HS256 token over the order details next to the
// plain body, plus basic auth from the configured key pair.
type CollectGateway struct {
	baseURL     string
	apiKey      string
	secret      string
	callbackURL string
	client      *http.Client
}

func NewCollectGateway() *CollectGateway {
	baseURL := os.Getenv("COLLECT_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}
	return &CollectGateway{
		baseURL:     baseURL,
		apiKey:      os.Getenv("COLLECT_API_KEY"),
		secret:      os.Getenv("COLLECT_API_SECRET"),
		callbackURL: appURL + "/api/v1/webhook/processWebhook",
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// signRequest issues the token the collect API verifies alongside the
// order body.
func (g *CollectGateway) signRequest(req CollectRequest) (string, error) {
	claims := jwt.MapClaims{
		"amount":         req.Amount,
		"order_id":       req.Receipt,
		"customer_id":    req.StudentID,
		"customer_email": req.StudentEmail,
		"description":    req.Description,
		"callback_url":   g.callbackURL,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.secret))
}

func (g *CollectGateway) CreateCollection(ctx context.Context, req CollectRequest) (*CollectResponse, error) {
	sign, err := g.signRequest(req)
	if err != nil {
		return nil, fmt.Errorf("sign collect request: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}
	body := map[string]interface{}{
		// The collect API expects amounts in minor units. Rounded, not
		// truncated: the float product of amounts like 4.35 lands just
		// under the integer and truncation would collect one unit short.
		"amount":   int64(math.Round(req.Amount * 100)),
		"currency": currency,
		"receipt":  req.Receipt,
		"sign":     sign,
		"notes": map[string]string{
			"student_name": req.StudentName,
			"student_id":   req.StudentID,
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal collect request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("build collect request: %w", err)
	}
	httpReq.SetBasicAuth(g.apiKey, g.secret)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var out struct {
		ID         string `json:"id"`
		PaymentURL string `json:"payment_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrGatewayUnavailable, err)
	}

	return &CollectResponse{
		PaymentURL:       out.PaymentURL,
		GatewayReference: out.ID,
	}, nil
}
