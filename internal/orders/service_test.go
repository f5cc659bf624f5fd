package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
	"github.com/Saadasw/BookOrderBackend/pkg/enums"
	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
	"github.com/Saadasw/BookOrderBackend/pkg/types"
)

type stubOrdersRepo struct {
	orders   map[uuid.UUID]*models.Order
	items    []models.OrderLineItem
	updates  map[string]any
	findErr  error
	createErr error
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindOrderForPhone(ctx context.Context, id uuid.UUID, phone string) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok || order.PhoneNumber != phone {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	filters = filters.normalized()
	out := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if filters.PhoneNumber != "" && order.PhoneNumber != filters.PhoneNumber {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.updates = updates
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func sampleIntent() types.OrderIntent {
	return types.OrderIntent{
		PhoneNumber:   "+8801712345678",
		Address:       "12 Mirpur Road, Dhaka",
		PaymentMethod: enums.PaymentMethodNagad,
		Books: []types.IntentBook{
			{BookID: "bk-1", Title: "The Go Programming Language", UnitPriceCents: 1250, Quantity: 2, TotalCents: 2500},
			{BookID: "bk-2", Title: "Designing Data-Intensive Applications", UnitPriceCents: 525, Quantity: 1, TotalCents: 525},
		},
		TotalCents: 3025,
	}
}

func seedOrder(repo *stubOrdersRepo, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:               uuid.New(),
		PhoneNumber:      "+8801712345678",
		Address:          "12 Mirpur Road, Dhaka",
		PaymentMethod:    enums.PaymentMethodNagad,
		PaymentStatus:    enums.PaymentStatusPending,
		Status:           status,
		TotalAmountCents: 3025,
		Verified:         true,
	}
	repo.orders[order.ID] = order
	return order
}

func TestCreateFromIntent(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)

	order, err := svc.CreateFromIntent(context.Background(), nil, sampleIntent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != enums.OrderStatusVerified {
		t.Fatalf("orders must be born verified, got %s", order.Status)
	}
	if !order.Verified {
		t.Fatal("verified flag must be set")
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("payment status must default to pending, got %s", order.PaymentStatus)
	}
	if order.TotalAmountCents != 3025 {
		t.Fatalf("unexpected total: %d", order.TotalAmountCents)
	}
	if len(order.Items) != 2 || len(repo.items) != 2 {
		t.Fatalf("line items not snapshotted: %d persisted", len(repo.items))
	}
	if repo.items[0].OrderID != order.ID {
		t.Fatal("line items must reference the order")
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusVerified)

	for _, target := range []enums.OrderStatus{
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
	} {
		updated, err := svc.UpdateStatus(context.Background(), order.ID, target, order.PhoneNumber)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
		if updated.Status != target {
			t.Fatalf("expected status %s, got %s", target, updated.Status)
		}
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusDelivered)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing, order.PhoneNumber)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["current_status"] != enums.OrderStatusDelivered {
		t.Fatalf("expected transition details, got %v", typed.Details())
	}
	if repo.orders[order.ID].Status != enums.OrderStatusDelivered {
		t.Fatal("order must be unchanged after a rejected transition")
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusVerified)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatus("pending"), order.PhoneNumber)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatus_ForeignPhoneLooksMissing(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusVerified)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing, "+8801999999999")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign phone, got %v", err)
	}
	if typed.Message() != "order not found or unauthorized" {
		t.Fatalf("message must not reveal existence, got %q", typed.Message())
	}
}

func TestUpdateStatus_MissingPhone(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusVerified)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusProcessing)

	cancelled, err := svc.Cancel(context.Background(), order.ID, order.PhoneNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if _, ok := repo.updates["cancelled_at"]; !ok {
		t.Fatal("cancelled_at must be recorded")
	}
}

func TestCancel_ShippedRejected(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusShipped)

	_, err := svc.Cancel(context.Background(), order.ID, order.PhoneNumber)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if typed.Message() != "cannot cancel shipped or delivered orders" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestGet(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo)
	order := seedOrder(repo, enums.OrderStatusVerified)

	found, err := svc.Get(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("unexpected order %s", found.ID)
	}

	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
