package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// FindOrderForPhone loads an order only when it belongs to phone. Missing
	// and foreign orders are indistinguishable to the caller.
	FindOrderForPhone(ctx context.Context, id uuid.UUID, phone string) (*models.Order, error)
	ListOrders(ctx context.Context, filters ListFilters) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
