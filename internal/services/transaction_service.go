package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"edupay/internal/models"
)

// TransactionRow is the flattened Order ⋈ OrderStatus projection served
// by the listing endpoints.
type TransactionRow struct {
	CollectID         uint                 `json:"collect_id"`
	SchoolID          uint                 `json:"school_id"`
	Gateway           string               `json:"gateway"`
	OrderAmount       float64              `json:"order_amount"`
	TransactionAmount float64              `json:"transaction_amount"`
	Status            models.PaymentStatus `json:"status"`
	CustomOrderID     string               `json:"custom_order_id"`
	PaymentTime       *time.Time           `json:"payment_time"`
	CreatedAt         time.Time            `json:"created_at"`
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

type ListParams struct {
	Page     int
	Limit    int
	Sort     string
	Order    string
	SchoolID uint
}

// StatusView is the public shape of one order's settlement state.
type StatusView struct {
	OrderID           string               `json:"order_id"`
	Status            models.PaymentStatus `json:"status"`
	TransactionAmount float64              `json:"transaction_amount"`
	PaymentMode       string               `json:"payment_mode"`
	PaymentTime       *time.Time           `json:"payment_time"`
}

// sortColumns whitelists caller-controlled sort fields. Anything else
// falls back to creation time.
var sortColumns = map[string]string{
	"created_at":         "orders.created_at",
	"payment_time":       "order_statuses.payment_time",
	"order_amount":       "order_statuses.order_amount",
	"transaction_amount": "order_statuses.transaction_amount",
	"status":             "order_statuses.status",
	"custom_order_id":    "orders.custom_order_id",
}

// TransactionService reads joined order/status views.
type TransactionService struct {
	db    *gorm.DB
	cache *RedisCache
}

// NewTransactionService creates the query layer. cache may be nil.
func NewTransactionService(db *gorm.DB, cache *RedisCache) *TransactionService {
	return &TransactionService{db: db, cache: cache}
}

// List returns one page of the flattened transaction view. The total
// is an independent count over orders, filtered by school when given,
// computed without pagination applied.
func (s *TransactionService) List(ctx context.Context, p ListParams) ([]TransactionRow, Pagination, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}

	countQuery := s.db.WithContext(ctx).Model(&models.Order{})
	if p.SchoolID > 0 {
		countQuery = countQuery.Where("school_id = ?", p.SchoolID)
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("count transactions: %w", err)
	}

	query := s.db.WithContext(ctx).Model(&models.Order{}).
		Select(`orders.id AS collect_id,
			orders.school_id,
			orders.gateway_name AS gateway,
			order_statuses.order_amount,
			order_statuses.transaction_amount,
			order_statuses.status,
			orders.custom_order_id,
			order_statuses.payment_time,
			orders.created_at`).
		Joins("LEFT JOIN order_statuses ON order_statuses.order_id = orders.id")
	if p.SchoolID > 0 {
		query = query.Where("orders.school_id = ?", p.SchoolID)
	}

	sortColumn, ok := sortColumns[p.Sort]
	if !ok {
		sortColumn = "orders.created_at"
	}
	direction := "desc"
	if p.Order == "asc" {
		direction = "asc"
	}
	query = query.Order(sortColumn + " " + direction)

	offset := (p.Page - 1) * p.Limit
	var rows []TransactionRow
	if err := query.Limit(p.Limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, Pagination{}, fmt.Errorf("list transactions: %w", err)
	}

	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return rows, Pagination{Current: p.Page, Pages: pages, Total: total}, nil
}

// StatusOf looks up one order's settlement state by its custom order
// id, via a short-lived cache when one is configured. A missing order
// and a missing ledger entry are distinct conditions — they call for
// different operator action.
func (s *TransactionService) StatusOf(ctx context.Context, customOrderID string) (*StatusView, error) {
	if s.cache == nil {
		return s.lookupStatus(ctx, customOrderID)
	}
	return GetOrSet(s.cache, ctx, statusCacheKey(customOrderID), statusCacheTTL, func() (*StatusView, error) {
		return s.lookupStatus(ctx, customOrderID)
	})
}

func (s *TransactionService) lookupStatus(ctx context.Context, customOrderID string) (*StatusView, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("custom_order_id = ?", customOrderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup order %s: %w", customOrderID, err)
	}

	var status models.OrderStatus
	err = s.db.WithContext(ctx).Where("order_id = ?", order.ID).First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup order status %s: %w", customOrderID, err)
	}

	return &StatusView{
		OrderID:           order.CustomOrderID,
		Status:            status.Status,
		TransactionAmount: status.TransactionAmount,
		PaymentMode:       status.PaymentMode,
		PaymentTime:       status.PaymentTime,
	}, nil
}
