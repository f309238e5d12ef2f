package services

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"gorm.io/gorm"

	"edupay/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// CreateCollectionInput carries everything needed to raise one payment
// collection request.
type CreateCollectionInput struct {
	SchoolID    uint
	TrusteeID   uint
	Student     models.Student
	GatewayName string
	OrderAmount float64
}

func (in CreateCollectionInput) validate() error {
	switch {
	case in.SchoolID == 0:
		return &ValidationError{Field: "schoolId", Reason: "is required"}
	case in.TrusteeID == 0:
		return &ValidationError{Field: "trusteeId", Reason: "is required"}
	case in.GatewayName == "":
		return &ValidationError{Field: "gatewayName", Reason: "is required"}
	case in.OrderAmount <= 0:
		return &ValidationError{Field: "orderAmount", Reason: "must be a positive number"}
	case in.Student.Name == "":
		return &ValidationError{Field: "student.name", Reason: "is required"}
	case in.Student.StudentID == "":
		return &ValidationError{Field: "student.id", Reason: "is required"}
	case !emailPattern.MatchString(in.Student.Email):
		return &ValidationError{Field: "student.email", Reason: "must be a valid email"}
	}
	return nil
}

// CollectionService creates orders and forwards them to the configured
// payment gateway.
type CollectionService struct {
	db       *gorm.DB
	gateways *GatewayRegistry

	// idMu serializes id generation with the order insert, so two
	// creations landing in the same millisecond still read distinct
	// counts. Across instances the timestamp carries uniqueness.
	idMu sync.Mutex
}

func NewCollectionService(db *gorm.DB, gateways *GatewayRegistry) *CollectionService {
	return &CollectionService{db: db, gateways: gateways}
}

// nextCustomOrderID builds the externally facing order identifier:
// fixed prefix, millisecond timestamp, then the current order count
// zero-padded to six digits. Callers hold idMu across this read and
// the insert so same-millisecond creations get distinct counts.
func (s *CollectionService) nextCustomOrderID(ctx context.Context) (string, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}
	return fmt.Sprintf("ORD%d%06d", time.Now().UnixMilli(), count), nil
}

// Create validates the input, persists the Order and its pending
// ledger entry, then asks the gateway for a collection URL.
//
// A gateway failure does not roll anything back: the pending Order and
// OrderStatus stay in place so a redelivered webhook or a manual retry
// can still resolve them. In that case the created order is returned
// together with an error wrapping ErrGatewayUnavailable.
func (s *CollectionService) Create(ctx context.Context, in CreateCollectionInput) (*models.Order, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	s.idMu.Lock()
	customOrderID, err := s.nextCustomOrderID(ctx)
	if err != nil {
		s.idMu.Unlock()
		return nil, "", err
	}

	order := models.Order{
		SchoolID:      in.SchoolID,
		TrusteeID:     in.TrusteeID,
		Student:       in.Student,
		GatewayName:   in.GatewayName,
		CustomOrderID: customOrderID,
		OrderAmount:   in.OrderAmount,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		s.idMu.Unlock()
		return nil, "", fmt.Errorf("create order: %w", err)
	}
	s.idMu.Unlock()

	status := models.OrderStatus{
		OrderID:           order.ID,
		OrderAmount:       in.OrderAmount,
		TransactionAmount: 0,
		Status:            models.PaymentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&status).Error; err != nil {
		return nil, "", fmt.Errorf("create order status: %w", err)
	}

	gateway := s.gateways.Resolve(in.GatewayName)
	resp, err := gateway.CreateCollection(ctx, CollectRequest{
		Amount:       in.OrderAmount,
		Receipt:      customOrderID,
		StudentName:  in.Student.Name,
		StudentID:    in.Student.StudentID,
		StudentEmail: in.Student.Email,
		Description:  fmt.Sprintf("Payment for %s", in.Student.Name),
	})
	if err != nil {
		return &order, "", fmt.Errorf("create collection %s: %w", customOrderID, err)
	}

	return &order, resp.PaymentURL, nil
}
