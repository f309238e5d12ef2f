package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"edupay/internal/models"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.School{},
		&models.Order{},
		&models.OrderStatus{},
		&models.WebhookLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type stubGateway struct {
	resp *CollectResponse
	err  error

	mu    sync.Mutex
	calls int
	last  CollectRequest
}

func (g *stubGateway) CreateCollection(ctx context.Context, req CollectRequest) (*CollectResponse, error) {
	g.mu.Lock()
	g.calls++
	g.last = req
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

func validInput() CreateCollectionInput {
	return CreateCollectionInput{
		SchoolID:    1,
		TrusteeID:   2,
		Student:     models.Student{Name: "Alice", StudentID: "STU1", Email: "a@x.com"},
		GatewayName: "razorpay",
		OrderAmount: 500,
	}
}

func TestCreateCollection(t *testing.T) {
	db := setupTestDB(t, t.Name())
	gw := &stubGateway{resp: &CollectResponse{PaymentURL: "https://pay.example/abc", GatewayReference: "ref-1"}}
	svc := NewCollectionService(db, NewGatewayRegistry(gw))

	order, paymentURL, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if paymentURL != "https://pay.example/abc" {
		t.Errorf("paymentURL = %q", paymentURL)
	}
	if !strings.HasPrefix(order.CustomOrderID, "ORD") {
		t.Errorf("custom order id %q missing ORD prefix", order.CustomOrderID)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway calls = %d, want 1", gw.calls)
	}
	if gw.last.Receipt != order.CustomOrderID {
		t.Errorf("gateway receipt = %q, want %q", gw.last.Receipt, order.CustomOrderID)
	}

	var status models.OrderStatus
	if err := db.Where("order_id = ?", order.ID).First(&status).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	if status.Status != models.PaymentStatusPending {
		t.Errorf("status = %q, want pending", status.Status)
	}
	if status.TransactionAmount != 0 {
		t.Errorf("transaction amount = %v, want 0", status.TransactionAmount)
	}
	if status.OrderAmount != 500 {
		t.Errorf("order amount = %v, want 500", status.OrderAmount)
	}
}

func TestCreateCollectionValidation(t *testing.T) {
	db := setupTestDB(t, t.Name())
	gw := &stubGateway{resp: &CollectResponse{PaymentURL: "u"}}
	svc := NewCollectionService(db, NewGatewayRegistry(gw))

	tests := []struct {
		name   string
		mutate func(*CreateCollectionInput)
	}{
		{"missing school", func(in *CreateCollectionInput) { in.SchoolID = 0 }},
		{"missing trustee", func(in *CreateCollectionInput) { in.TrusteeID = 0 }},
		{"missing gateway", func(in *CreateCollectionInput) { in.GatewayName = "" }},
		{"zero amount", func(in *CreateCollectionInput) { in.OrderAmount = 0 }},
		{"negative amount", func(in *CreateCollectionInput) { in.OrderAmount = -10 }},
		{"missing student name", func(in *CreateCollectionInput) { in.Student.Name = "" }},
		{"missing student id", func(in *CreateCollectionInput) { in.Student.StudentID = "" }},
		{"bad email", func(in *CreateCollectionInput) { in.Student.Email = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, _, err := svc.Create(context.Background(), in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}

	// Rejected input must leave no side effects behind.
	var orders, statuses int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderStatus{}).Count(&statuses)
	if orders != 0 || statuses != 0 {
		t.Errorf("persisted %d orders, %d statuses after rejected input", orders, statuses)
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times for rejected input", gw.calls)
	}
}

func TestCreateCollectionGatewayFailure(t *testing.T) {
	db := setupTestDB(t, t.Name())
	gw := &stubGateway{err: fmt.Errorf("%w: connection refused", ErrGatewayUnavailable)}
	svc := NewCollectionService(db, NewGatewayRegistry(gw))

	order, paymentURL, err := svc.Create(context.Background(), validInput())
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v, want ErrGatewayUnavailable", err)
	}
	if paymentURL != "" {
		t.Errorf("paymentURL = %q, want empty", paymentURL)
	}
	if order == nil {
		t.Fatal("expected the created order to be reported alongside the failure")
	}

	// The pending order and ledger entry survive the failure so a
	// later webhook or manual retry can resolve them.
	var persisted models.Order
	if err := db.Where("custom_order_id = ?", order.CustomOrderID).First(&persisted).Error; err != nil {
		t.Fatalf("order not retained: %v", err)
	}
	var status models.OrderStatus
	if err := db.Where("order_id = ?", persisted.ID).First(&status).Error; err != nil {
		t.Fatalf("status not retained: %v", err)
	}
	if status.Status != models.PaymentStatusPending {
		t.Errorf("status = %q, want pending", status.Status)
	}
}

func TestCustomOrderIDsDistinctConcurrent(t *testing.T) {
	db := setupTestDB(t, t.Name())
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gw := &stubGateway{resp: &CollectResponse{PaymentURL: "u"}}
	svc := NewCollectionService(db, NewGatewayRegistry(gw))

	const n = 10
	ids := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			order, _, err := svc.Create(context.Background(), validInput())
			if err != nil {
				errs <- err
				return
			}
			ids <- order.CustomOrderID
		}()
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create: %v", err)
	}
	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate custom order id %q", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("created %d distinct ids, want %d", len(seen), n)
	}
}

func TestCustomOrderIDsDistinct(t *testing.T) {
	db := setupTestDB(t, t.Name())
	gw := &stubGateway{resp: &CollectResponse{PaymentURL: "u"}}
	svc := NewCollectionService(db, NewGatewayRegistry(gw))

	seen := make(map[string]bool)
	for i := 0; i < 25; i++ {
		order, _, err := svc.Create(context.Background(), validInput())
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[order.CustomOrderID] {
			t.Fatalf("duplicate custom order id %q", order.CustomOrderID)
		}
		seen[order.CustomOrderID] = true
	}
}
