package services

import "errors"

// Terminal reconciliation and lookup conditions. The message text of
// ErrMissingOrderID and ErrOrderNotFound is recorded verbatim in the
// webhook audit log, so it must stay stable.
var (
	ErrMissingOrderID     = errors.New("order_info.order_id is required")
	ErrOrderNotFound      = errors.New("Order not found")
	ErrStatusNotFound     = errors.New("Order status not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// ValidationError reports malformed input rejected at the boundary,
// before any persistence happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}
