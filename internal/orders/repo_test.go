package orders

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Saadasw/BookOrderBackend/pkg/db/models"
	"github.com/Saadasw/BookOrderBackend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersSchema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  phone_number TEXT NOT NULL,
  address TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'verified',
  total_amount_cents INTEGER NOT NULL,
  verified INTEGER NOT NULL DEFAULT 1,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsSchema := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  book_id TEXT NOT NULL,
  title TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersSchema).Error)
	require.NoError(t, db.Exec(itemsSchema).Error)
	return db
}

func createTestOrder(t *testing.T, repo Repository, phone string, createdAt time.Time) *models.Order {
	t.Helper()
	ctx := context.Background()

	order := &models.Order{
		ID:               uuid.New(),
		PhoneNumber:      phone,
		Address:          "12 Mirpur Road, Dhaka",
		PaymentMethod:    enums.PaymentMethodCashOnDelivery,
		PaymentStatus:    enums.PaymentStatusPending,
		Status:           enums.OrderStatusVerified,
		TotalAmountCents: 2500,
		Verified:         true,
		CreatedAt:        createdAt,
	}
	_, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)

	items := []models.OrderLineItem{
		{
			ID:             uuid.New(),
			OrderID:        order.ID,
			BookID:         "bk-1",
			Title:          "The Go Programming Language",
			UnitPriceCents: 1250,
			Quantity:       2,
			TotalCents:     2500,
		},
	}
	require.NoError(t, repo.CreateLineItems(ctx, items))
	return order
}

func TestCreateAndFindOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "+8801712345678", time.Now().UTC())

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, enums.OrderStatusVerified, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "bk-1", found.Items[0].BookID)
	assert.Equal(t, 2500, found.Items[0].TotalCents)

	_, err = repo.FindOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindOrderForPhone(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "+8801712345678", time.Now().UTC())

	found, err := repo.FindOrderForPhone(ctx, order.ID, "+8801712345678")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	// A foreign phone is indistinguishable from a missing order.
	_, err = repo.FindOrderForPhone(ctx, order.ID, "+8801999999999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	first := createTestOrder(t, repo, "+8801712345678", base)
	second := createTestOrder(t, repo, "+8801712345678", base.Add(10*time.Minute))
	other := createTestOrder(t, repo, "+8801999999999", base.Add(20*time.Minute))

	all, err := repo.ListOrders(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, other.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)

	filtered, err := repo.ListOrders(ctx, ListFilters{PhoneNumber: "+8801712345678"})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, order := range filtered {
		assert.Equal(t, "+8801712345678", order.PhoneNumber)
	}

	paged, err := repo.ListOrders(ctx, ListFilters{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, second.ID, paged[0].ID)
}

func TestUpdateOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "+8801712345678", time.Now().UTC())

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateOrder(ctx, order.ID, map[string]any{
		"status":       enums.OrderStatusCancelled,
		"cancelled_at": now,
	}))

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, found.Status)
	require.NotNil(t, found.CancelledAt)
	assert.WithinDuration(t, now, *found.CancelledAt, time.Second)
}
