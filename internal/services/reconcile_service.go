package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"edupay/internal/models"
)

const statusCacheTTL = 2 * time.Minute

func statusCacheKey(customOrderID string) string {
	return "txstatus:" + customOrderID
}

// WebhookPayload is the notification body a gateway posts back. Field
// names are normalized snake_case at this boundary; upstream payloads
// historically mixed casings for payment_details and payment_message.
type WebhookPayload struct {
	Status    int               `json:"status"`
	OrderInfo *WebhookOrderInfo `json:"order_info"`
}

type WebhookOrderInfo struct {
	OrderID           string  `json:"order_id"`
	OrderAmount       float64 `json:"order_amount"`
	TransactionAmount float64 `json:"transaction_amount"`
	Gateway           string  `json:"gateway"`
	BankReference     string  `json:"bank_reference"`
	Status            string  `json:"status"`
	PaymentMode       string  `json:"payment_mode"`
	PaymentDetails    string  `json:"payment_details"`
	PaymentMessage    string  `json:"payment_message"`
	PaymentTime       string  `json:"payment_time"`
	ErrorMessage      string  `json:"error_message"`
}

// ReconcileService applies inbound gateway notifications to the order
// status ledger. Every notification is journaled to WebhookLog before
// interpretation and the log row is finalized exactly once with the
// outcome, so the audit trail never has a silent gap.
type ReconcileService struct {
	db     *gorm.DB
	locker *OrderLocker
	cache  *RedisCache
}

// NewReconcileService creates the engine. cache may be nil; it is only
// used to invalidate cached status views after an apply.
func NewReconcileService(db *gorm.DB, locker *OrderLocker, cache *RedisCache) *ReconcileService {
	return &ReconcileService{db: db, locker: locker, cache: cache}
}

// ApplyNotification runs one notification through the
// Received → Validated → Matched → Applied pipeline.
//
// The returned WebhookLog is non-nil whenever intake succeeded, even if
// processing then failed; its Processed/Error fields carry the outcome.
// The error is ErrMissingOrderID or ErrOrderNotFound for the terminal
// rejection cases, or a wrapped internal error otherwise.
func (s *ReconcileService) ApplyNotification(ctx context.Context, raw []byte) (*models.WebhookLog, error) {
	// Intake first: the raw payload is durable before anything tries to
	// interpret it. Declared status is best-effort, a broken payload
	// simply records zero.
	var probe struct {
		Status int `json:"status"`
	}
	_ = json.Unmarshal(raw, &probe)

	entry := models.WebhookLog{
		Payload:        datatypes.JSON(raw),
		DeclaredStatus: probe.Status,
		Processed:      false,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("record webhook intake: %w", err)
	}

	applyErr := s.apply(ctx, raw)
	s.finalize(ctx, &entry, applyErr)
	return &entry, applyErr
}

// finalize writes the processing outcome onto the audit row. A failure
// to record the outcome is logged but not surfaced: the caller's error
// (if any) is the one that matters.
func (s *ReconcileService) finalize(ctx context.Context, entry *models.WebhookLog, applyErr error) {
	entry.Processed = applyErr == nil
	if applyErr != nil {
		msg := applyErr.Error()
		entry.Error = &msg
	}
	if err := s.db.WithContext(ctx).Save(entry).Error; err != nil {
		log.Printf("webhook log %d: failed to record outcome: %v", entry.ID, err)
	}
}

func (s *ReconcileService) apply(ctx context.Context, raw []byte) error {
	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ErrMissingOrderID
	}
	if payload.OrderInfo == nil || payload.OrderInfo.OrderID == "" {
		return ErrMissingOrderID
	}
	info := payload.OrderInfo

	var order models.Order
	err := s.db.WithContext(ctx).Where("custom_order_id = ?", info.OrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup order %s: %w", info.OrderID, err)
	}

	release, err := s.locker.Lock(ctx, order.ID)
	if err != nil {
		return err
	}
	defer release()

	var status models.OrderStatus
	err = s.db.WithContext(ctx).Where("order_id = ?", order.ID).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// A pending entry is created together with the order, so
		// reaching this branch means it went missing somewhere.
		log.Printf("order %s has no status ledger entry, creating one from the notification", order.CustomOrderID)
		status = models.OrderStatus{OrderID: order.ID}
	} else if err != nil {
		return fmt.Errorf("load order status: %w", err)
	}

	// Last write wins: the gateway is authoritative and may resend a
	// corrected status. Duplicates and conflicts are visible in the
	// webhook log, not rejected here.
	status.OrderAmount = info.OrderAmount
	status.TransactionAmount = info.TransactionAmount
	status.PaymentMode = info.PaymentMode
	status.PaymentDetails = info.PaymentDetails
	status.BankReference = info.BankReference
	status.PaymentMessage = info.PaymentMessage
	status.Status = models.PaymentStatus(info.Status)
	status.ErrorMessage = info.ErrorMessage
	status.PaymentTime = parsePaymentTime(info.PaymentTime)
	if status.PaymentTime == nil && info.PaymentTime != "" {
		log.Printf("order %s: dropping unparseable payment_time %q", order.CustomOrderID, info.PaymentTime)
	}

	if err := s.db.WithContext(ctx).Save(&status).Error; err != nil {
		return fmt.Errorf("apply order status: %w", err)
	}

	if s.cache != nil {
		// Drop the cached status view so the next lookup re-reads the
		// ledger.
		_ = s.cache.Delete(ctx, statusCacheKey(order.CustomOrderID))
	}
	return nil
}

func parsePaymentTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
