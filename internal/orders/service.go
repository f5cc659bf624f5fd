package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
	"github.com/Saadasw/BookOrderBackend/pkg/enums"
	pkgerrors "github.com/Saadasw/BookOrderBackend/pkg/errors"
	"github.com/Saadasw/BookOrderBackend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order-level operations beyond repository reads.
type Service interface {
	CreateFromIntent(ctx context.Context, tx *gorm.DB, intent types.OrderIntent) (*models.Order, error)
	List(ctx context.Context, filters ListFilters) ([]models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus, callerPhone string) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, callerPhone string) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

// CreateFromIntent materializes a verified intent inside the caller's
// transaction. Orders are born verified; nothing unverified is ever persisted.
func (s *service) CreateFromIntent(ctx context.Context, tx *gorm.DB, intent types.OrderIntent) (*models.Order, error) {
	if len(intent.Books) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "intent has no books")
	}

	repo := s.repo.WithTx(tx)

	order := &models.Order{
		ID:               uuid.New(),
		PhoneNumber:      intent.PhoneNumber,
		Address:          intent.Address,
		PaymentMethod:    intent.PaymentMethod,
		PaymentStatus:    enums.PaymentStatusPending,
		Status:           enums.OrderStatusVerified,
		TotalAmountCents: intent.TotalCents,
		Verified:         true,
	}
	if _, err := repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	items := make([]models.OrderLineItem, 0, len(intent.Books))
	for _, book := range intent.Books {
		items = append(items, models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			BookID:         book.BookID,
			Title:          book.Title,
			UnitPriceCents: book.UnitPriceCents,
			Quantity:       book.Quantity,
			TotalCents:     book.TotalCents,
		})
	}
	if err := repo.CreateLineItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order line items")
	}
	order.Items = items

	return order, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Order, error) {
	orders, err := s.repo.ListOrders(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// UpdateStatus applies a status transition on behalf of the phone that owns
// the order.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, target enums.OrderStatus, callerPhone string) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := s.loadOwned(ctx, repo, id, callerPhone)
		if err != nil {
			return err
		}

		if !loaded.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition,
				fmt.Sprintf("cannot transition from %s to %s", loaded.Status, target)).
				WithDetails(map[string]any{"current_status": loaded.Status, "requested_status": target})
		}

		updates := map[string]any{"status": target}
		if target == enums.OrderStatusCancelled {
			updates["cancelled_at"] = s.now()
		}
		if err := repo.UpdateOrder(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		loaded.Status = target
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel is the thin special case of UpdateStatus targeting cancelled.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, callerPhone string) (*models.Order, error) {
	order, err := s.UpdateStatus(ctx, id, enums.OrderStatusCancelled, callerPhone)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeInvalidTransition {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot cancel shipped or delivered orders")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) loadOwned(ctx context.Context, repo Repository, id uuid.UUID, phone string) (*models.Order, error) {
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "phone identity missing")
	}
	order, err := repo.FindOrderForPhone(ctx, id, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Do not reveal whether the order exists for someone else.
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found or unauthorized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
