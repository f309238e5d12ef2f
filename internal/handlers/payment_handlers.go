package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"edupay/internal/services"
)

// PaymentHandler exposes collection creation
type PaymentHandler struct {
	collections *services.CollectionService
}

func NewPaymentHandler(collections *services.CollectionService) *PaymentHandler {
	return &PaymentHandler{collections: collections}
}

// CreatePayment registers a collection request and returns the gateway
// redirect URL. A gateway failure still reports the created pending
// order so the caller can retry or wait for reconciliation.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	order, paymentURL, err := h.collections.Create(c.Request().Context(), services.CreateCollectionInput{
		SchoolID:    req.SchoolID,
		TrusteeID:   req.TrusteeID,
		Student:     req.Student,
		GatewayName: req.GatewayName,
		OrderAmount: req.OrderAmount,
	})
	if err != nil {
		var vErr *services.ValidationError
		if errors.As(err, &vErr) {
			return echo.NewHTTPError(http.StatusBadRequest, vErr.Error())
		}
		if errors.Is(err, services.ErrGatewayUnavailable) {
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"success": false,
				"message": "Payment gateway unavailable, order kept pending",
				"data":    map[string]interface{}{"order": order},
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to initiate payment")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Payment initiated successfully",
		"data": map[string]interface{}{
			"order":      order,
			"paymentUrl": paymentURL,
		},
	})
}
