package services

import (
	"context"
	"strings"
)

// CollectRequest describes one "create collection" call to a payment
// gateway. Receipt carries the order's CustomOrderID so the gateway
// echoes it back in webhook notifications.
type CollectRequest struct {
	Amount       float64
	Currency     string
	Receipt      string
	StudentName  string
	StudentID    string
	StudentEmail string
	Description  string
}

// CollectResponse is what the caller needs back from a gateway: the
// URL to hand the payer and the gateway's own reference for the
// collection.
type CollectResponse struct {
	PaymentURL       string
	GatewayReference string
}

// Gateway is the external collaborator contract. Implementations own
// authentication and wire format; failures surface as errors wrapping
// ErrGatewayUnavailable.
type Gateway interface {
	CreateCollection(ctx context.Context, req CollectRequest) (*CollectResponse, error)
}

// GatewayRegistry resolves a gateway implementation by name.
type GatewayRegistry struct {
	gateways map[string]Gateway
	fallback Gateway
}

// NewGatewayRegistry creates a registry with a default gateway used for
// any unregistered name.
func NewGatewayRegistry(fallback Gateway) *GatewayRegistry {
	return &GatewayRegistry{
		gateways: make(map[string]Gateway),
		fallback: fallback,
	}
}

// Register binds a gateway implementation to a name.
func (r *GatewayRegistry) Register(name string, g Gateway) {
	r.gateways[strings.ToLower(name)] = g
}

// Resolve returns the gateway registered for name, or the fallback.
func (r *GatewayRegistry) Resolve(name string) Gateway {
	if g, ok := r.gateways[strings.ToLower(name)]; ok {
		return g
	}
	return r.fallback
}
