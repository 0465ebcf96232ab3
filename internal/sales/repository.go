package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/pixfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pagination"
)

const (
	cartListLimit  = 200
	orderListLimit = 150
)

// CartStats aggregates every tracked cart.
type CartStats struct {
	Total      int64 `json:"total"`
	Open       int64 `json:"open"`
	Converted  int64 `json:"converted"`
	TotalValue int64 `json:"total_value"`
}

// OrderStats aggregates every recorded order.
type OrderStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Paid        int64 `json:"paid"`
	TotalAmount int64 `json:"total_amount"`
}

// Repository persists carts and orders.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// UpsertCart inserts the cart or refreshes its snapshot by cart key. Status is only set on insert.
func (r *Repository) UpsertCart(ctx context.Context, cart *models.CheckoutCart) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer", "summary", "attribution", "stage", "total_cents", "last_seen", "updated_at"}),
		}).
		Create(cart).Error
}

// MarkCartConverted flips the cart to converted at the pix stage.
func (r *Repository) MarkCartConverted(ctx context.Context, cartKey string, seen time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CheckoutCart{}).
		Where("cart_key = ?", cartKey).
		Updates(map[string]any{
			"status":     enums.CartStatusConverted,
			"stage":      enums.CartStagePixGenerated,
			"last_seen":  seen,
			"updated_at": seen,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateOrder inserts an order row.
func (r *Repository) CreateOrder(ctx context.Context, order *models.CheckoutOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListCarts returns up to limit carts seen before the cursor, newest first, plus the
// cursor of the next page when more rows exist.
func (r *Repository) ListCarts(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.CheckoutCart, *pagination.Cursor, error) {
	limit = pagination.PageSize(limit, cartListLimit)
	query := r.db.WithContext(ctx).Model(&models.CheckoutCart{})
	if cursor != nil {
		query = query.Where("(last_seen, id) < (?, ?)", cursor.At, cursor.ID)
	}

	var rows []models.CheckoutCart
	if err := query.Order("last_seen DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > limit {
		last := rows[limit-1]
		return rows[:limit], &pagination.Cursor{At: last.LastSeen, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// FindCart loads one cart by id.
func (r *Repository) FindCart(ctx context.Context, id uuid.UUID) (*models.CheckoutCart, error) {
	var cart models.CheckoutCart
	if err := r.db.WithContext(ctx).First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
		}
		return nil, err
	}
	return &cart, nil
}

// CartStats counts carts per status and sums their totals.
func (r *Repository) CartStats(ctx context.Context) (CartStats, error) {
	var stats CartStats
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutCart{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS open,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS converted,
			COALESCE(SUM(total_cents), 0) AS total_value`, enums.CartStatusOpen, enums.CartStatusConverted).
		Scan(&stats).Error
	return stats, err
}

// ListOrders returns up to limit orders created before the cursor, newest first.
func (r *Repository) ListOrders(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.CheckoutOrder, *pagination.Cursor, error) {
	limit = pagination.PageSize(limit, orderListLimit)
	query := r.db.WithContext(ctx).Model(&models.CheckoutOrder{})
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.At, cursor.ID)
	}

	var rows []models.CheckoutOrder
	if err := query.Order("created_at DESC, id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	if len(rows) > limit {
		last := rows[limit-1]
		return rows[:limit], &pagination.Cursor{At: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// OrderStats counts orders per status and sums their totals.
func (r *Repository) OrderStats(ctx context.Context) (OrderStats, error) {
	var stats OrderStats
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutOrder{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid,
			COALESCE(SUM(total_cents), 0) AS total_amount`, enums.OrderStatusPending, enums.OrderStatusPaid).
		Scan(&stats).Error
	return stats, err
}

// Activity is the minimal projection used to bucket activity by day.
type Activity struct {
	CreatedAt  time.Time
	TotalCents int
}

// CartActivitySince lists cart creation times since the given instant.
func (r *Repository) CartActivitySince(ctx context.Context, since time.Time) ([]Activity, error) {
	var rows []Activity
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutCart{}).
		Select("created_at, total_cents").
		Where("created_at >= ?", since).
		Scan(&rows).Error
	return rows, err
}

// OrderActivitySince lists order creation times and totals since the given instant.
func (r *Repository) OrderActivitySince(ctx context.Context, since time.Time) ([]Activity, error) {
	var rows []Activity
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutOrder{}).
		Select("created_at, total_cents").
		Where("created_at >= ?", since).
		Scan(&rows).Error
	return rows, err
}
