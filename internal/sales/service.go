package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/pixfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pagination"
	"github.com/angelmondragon/pixfunnel-backend/pkg/types"
)

const (
	defaultTimelineDays = 30
	maxTimelineDays     = 180
	dayLayout           = "2006-01-02"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartUpdate is the funnel snapshot stored for a cart key.
type CartUpdate struct {
	CartKey     string
	Customer    types.Customer
	Summary     types.OrderSummary
	Attribution types.Attribution
	Stage       enums.CartStage
}

// OrderInput is a charge the gateway accepted.
type OrderInput struct {
	CartKey           string
	Customer          types.Customer
	Summary           types.OrderSummary
	Attribution       types.Attribution
	Pix               types.PixCharge
	UsedFallbackTaxID bool
}

// CartList is the admin cart listing.
type CartList struct {
	Carts  []models.CheckoutCart `json:"carts"`
	Stats  CartStats             `json:"stats"`
	Cursor string                `json:"cursor,omitempty"`
}

// OrderList is the admin order listing.
type OrderList struct {
	Orders []models.CheckoutOrder `json:"orders"`
	Stats  OrderStats             `json:"stats"`
	Cursor string                 `json:"cursor,omitempty"`
}

// AnalyticsSummary is the headline funnel numbers.
type AnalyticsSummary struct {
	Carts             CartStats  `json:"carts"`
	Orders            OrderStats `json:"orders"`
	ConversionRate    float64    `json:"conversion_rate"`
	AverageOrderCents int64      `json:"average_order_cents"`
}

// TimelinePoint is one day of activity.
type TimelinePoint struct {
	Date         string `json:"date"`
	Carts        int    `json:"carts"`
	Orders       int    `json:"orders"`
	RevenueCents int64  `json:"revenue_cents"`
}

// Service records funnel activity and serves the admin sales views.
type Service interface {
	TrackCart(ctx context.Context, update CartUpdate) error
	RecordOrder(ctx context.Context, input OrderInput) (*models.CheckoutOrder, error)
	ListCarts(ctx context.Context, params pagination.Params) (*CartList, error)
	GetCart(ctx context.Context, id uuid.UUID) (*models.CheckoutCart, error)
	ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error)
	Summary(ctx context.Context) (*AnalyticsSummary, error)
	Timeline(ctx context.Context, days int) ([]TimelinePoint, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	now  func() time.Time
}

// NewService builds the sales service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx, now: time.Now}, nil
}

func (s *service) TrackCart(ctx context.Context, update CartUpdate) error {
	key := strings.TrimSpace(update.CartKey)
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart key required")
	}
	stage := update.Stage
	if !stage.IsValid() {
		stage = enums.CartStageOffer
	}
	now := s.now().UTC()
	cart := &models.CheckoutCart{
		CartKey:     key,
		Customer:    update.Customer,
		Summary:     update.Summary,
		Attribution: update.Attribution,
		Stage:       stage,
		Status:      enums.CartStatusOpen,
		TotalCents:  update.Summary.TotalCents,
		LastSeen:    now,
	}
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "track cart")
	}
	return nil
}

// RecordOrder stores a pending order and converts its cart in one transaction. A cart
// that was never tracked is created on the way.
func (s *service) RecordOrder(ctx context.Context, input OrderInput) (*models.CheckoutOrder, error) {
	key := strings.TrimSpace(input.CartKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart key required")
	}
	now := s.now().UTC()
	order := &models.CheckoutOrder{
		CartKey:           key,
		Customer:          input.Customer,
		Summary:           input.Summary,
		Pix:               input.Pix,
		Status:            enums.OrderStatusPending,
		TotalCents:        input.Summary.TotalCents,
		UsedFallbackTaxID: input.UsedFallbackTaxID,
		CreatedAt:         now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		updated, err := repo.MarkCartConverted(ctx, key, now)
		if err != nil || updated {
			return err
		}
		return repo.UpsertCart(ctx, &models.CheckoutCart{
			CartKey:     key,
			Customer:    input.Customer,
			Summary:     input.Summary,
			Attribution: input.Attribution,
			Stage:       enums.CartStagePixGenerated,
			Status:      enums.CartStatusConverted,
			TotalCents:  input.Summary.TotalCents,
			LastSeen:    now,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order")
	}
	return order, nil
}

func (s *service) ListCarts(ctx context.Context, params pagination.Params) (*CartList, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	out := &CartList{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, next, err := s.repo.ListCarts(gctx, params.Limit, cursor)
		out.Carts = rows
		out.Cursor = encodeCursor(next)
		return err
	})
	g.Go(func() error {
		stats, err := s.repo.CartStats(gctx)
		out.Stats = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list carts")
	}
	if out.Carts == nil {
		out.Carts = []models.CheckoutCart{}
	}
	return out, nil
}

func (s *service) GetCart(ctx context.Context, id uuid.UUID) (*models.CheckoutCart, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing id")
	}
	cart, err := s.repo.FindCart(ctx, id)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params) (*OrderList, error) {
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	out := &OrderList{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, next, err := s.repo.ListOrders(gctx, params.Limit, cursor)
		out.Orders = rows
		out.Cursor = encodeCursor(next)
		return err
	})
	g.Go(func() error {
		stats, err := s.repo.OrderStats(gctx)
		out.Stats = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	if out.Orders == nil {
		out.Orders = []models.CheckoutOrder{}
	}
	return out, nil
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func encodeCursor(next *pagination.Cursor) string {
	if next == nil {
		return ""
	}
	return pagination.EncodeCursor(*next)
}

func (s *service) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	var (
		carts  CartStats
		orders OrderStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		carts, err = s.repo.CartStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.repo.OrderStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "analytics summary")
	}

	summary := &AnalyticsSummary{Carts: carts, Orders: orders}
	if carts.Total > 0 {
		summary.ConversionRate = float64(carts.Converted) / float64(carts.Total)
	}
	if orders.Total > 0 {
		summary.AverageOrderCents = orders.TotalAmount / orders.Total
	}
	return summary, nil
}

// Timeline buckets carts and orders per UTC day over the last days days, oldest first.
// Days outside 1..180 fall back to 30.
func (s *service) Timeline(ctx context.Context, days int) ([]TimelinePoint, error) {
	if days <= 0 || days > maxTimelineDays {
		days = defaultTimelineDays
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	var carts, orders []Activity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		carts, err = s.repo.CartActivitySince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.repo.OrderActivitySince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "analytics timeline")
	}

	buckets := make(map[string]*TimelinePoint, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format(dayLayout)
		buckets[day] = &TimelinePoint{Date: day}
	}
	for _, c := range carts {
		if p, ok := buckets[c.CreatedAt.UTC().Format(dayLayout)]; ok {
			p.Carts++
		}
	}
	for _, o := range orders {
		if p, ok := buckets[o.CreatedAt.UTC().Format(dayLayout)]; ok {
			p.Orders++
			p.RevenueCents += int64(o.TotalCents)
		}
	}

	points := make([]TimelinePoint, 0, days)
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}
