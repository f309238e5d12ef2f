package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"edupay/internal/services"
)

// webhookMaxBodyBytes caps notification bodies; the audit log stores
// them verbatim.
const webhookMaxBodyBytes = 64 * 1024

// WebhookHandler receives gateway notifications
type WebhookHandler struct {
	reconciler *services.ReconcileService
}

func NewWebhookHandler(reconciler *services.ReconcileService) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// ProcessWebhook applies one inbound notification. Every response path
// here corresponds to a finalized audit row, except a failed intake
// itself.
func (h *WebhookHandler) ProcessWebhook(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, webhookMaxBodyBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "Failed to read request body",
		})
	}

	_, err = h.reconciler.ApplyNotification(c.Request().Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingOrderID):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": services.ErrMissingOrderID.Error(),
			})
		case errors.Is(err, services.ErrOrderNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{
				"status":  "error",
				"message": services.ErrOrderNotFound.Error(),
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"status":  "error",
				"message": err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Webhook processed successfully",
	})
}
