package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/logger"
	"github.com/angelmondragon/pixfunnel-backend/pkg/redis"
)

const offerCacheKind = "offer"

type productRepository interface {
	ListActive(ctx context.Context, productType enums.ProductType) ([]models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type offerCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(kind string, parts ...string) string
}

// Service exposes the storefront offer and the admin item operations.
type Service interface {
	Offer(ctx context.Context) (pricing.Offer, error)
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, input ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo     productRepository
	cache    offerCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// ServiceOption configures optional collaborators.
type ServiceOption func(*service)

// WithOfferCache keeps the assembled offer in redis for ttl. Item writes invalidate it.
func WithOfferCache(cache offerCache, ttl time.Duration) ServiceOption {
	return func(s *service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithLogger(logg *logger.Logger) ServiceOption {
	return func(s *service) { s.logg = logg }
}

// NewService builds the catalog service.
func NewService(repo productRepository, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	s := &service{repo: repo}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Offer assembles the storefront offer: the first active base product, the active bumps
// and upsells, and the active shipping products as options, each in sort then creation order.
func (s *service) Offer(ctx context.Context) (pricing.Offer, error) {
	if cached, ok := s.cachedOffer(ctx); ok {
		return cached, nil
	}

	bases, err := s.repo.ListActive(ctx, enums.ProductTypeBase)
	if err != nil {
		return pricing.Offer{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load base product")
	}
	bumps, err := s.repo.ListActive(ctx, enums.ProductTypeBump)
	if err != nil {
		return pricing.Offer{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bumps")
	}
	upsells, err := s.repo.ListActive(ctx, enums.ProductTypeUpsell)
	if err != nil {
		return pricing.Offer{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load upsells")
	}
	shipping, err := s.repo.ListActive(ctx, enums.ProductTypeShipping)
	if err != nil {
		return pricing.Offer{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping options")
	}

	offer := pricing.Offer{
		Bumps:    make([]pricing.Product, 0, len(bumps)),
		Upsells:  make([]pricing.Product, 0, len(upsells)),
		Shipping: make([]pricing.ShippingOption, 0, len(shipping)),
	}
	if len(bases) > 0 {
		base := ToPricingProduct(bases[0])
		offer.Base = &base
	}
	for _, p := range bumps {
		offer.Bumps = append(offer.Bumps, ToPricingProduct(p))
	}
	for _, p := range upsells {
		offer.Upsells = append(offer.Upsells, ToPricingProduct(p))
	}
	for _, p := range shipping {
		offer.Shipping = append(offer.Shipping, ToShippingOption(p))
	}

	s.storeOffer(ctx, offer)
	return offer, nil
}

func (s *service) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, ItemFromModel(row))
	}
	return items, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item := ItemFromModel(*row)
	return &item, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	product, err := input.Normalize()
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	s.invalidate(ctx)
	item := ItemFromModel(*created)
	return &item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*Item, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Missing id")
	}
	product, err := input.Normalize()
	if err != nil {
		return nil, err
	}
	product.ID = id
	updated, err := s.repo.Update(ctx, &product)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	s.invalidate(ctx)
	item := ItemFromModel(*updated)
	return &item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) offerKey() string {
	return s.cache.CacheKey(offerCacheKind, "public")
}

func (s *service) cachedOffer(ctx context.Context) (pricing.Offer, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return pricing.Offer{}, false
	}
	raw, err := s.cache.Get(ctx, s.offerKey())
	if err != nil {
		if !redis.IsMiss(err) {
			s.warn(ctx, "catalog.offer_cache.read_failed", err)
		}
		return pricing.Offer{}, false
	}
	var offer pricing.Offer
	if err := json.Unmarshal([]byte(raw), &offer); err != nil {
		s.warn(ctx, "catalog.offer_cache.decode_failed", err)
		return pricing.Offer{}, false
	}
	return offer, true
}

func (s *service) storeOffer(ctx context.Context, offer pricing.Offer) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(offer)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.offerKey(), string(payload), s.cacheTTL); err != nil {
		s.warn(ctx, "catalog.offer_cache.write_failed", err)
	}
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.offerKey()); err != nil {
		s.warn(ctx, "catalog.offer_cache.invalidate_failed", err)
	}
}

func (s *service) warn(ctx context.Context, event string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), event)
}
