package controllers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pixfunnel-backend/internal/address"
	"github.com/angelmondragon/pixfunnel-backend/internal/catalog"
	"github.com/angelmondragon/pixfunnel-backend/internal/pricing"
	"github.com/angelmondragon/pixfunnel-backend/internal/sales"
	"github.com/angelmondragon/pixfunnel-backend/pkg/db/models"
	"github.com/angelmondragon/pixfunnel-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pixfunnel-backend/pkg/errors"
	"github.com/angelmondragon/pixfunnel-backend/pkg/pagination"
)

type stubCatalog struct {
	offer   pricing.Offer
	err     error
	items   []catalog.Item
	item    *catalog.Item
	created []catalog.ItemInput
}

func (s *stubCatalog) Offer(ctx context.Context) (pricing.Offer, error) {
	return s.offer, s.err
}

func (s *stubCatalog) ListItems(ctx context.Context) ([]catalog.Item, error) {
	return s.items, s.err
}

func (s *stubCatalog) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	if s.item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return s.item, s.err
}

func (s *stubCatalog) CreateItem(ctx context.Context, input catalog.ItemInput) (*catalog.Item, error) {
	s.created = append(s.created, input)
	if _, err := input.Normalize(); err != nil {
		return nil, err
	}
	return &catalog.Item{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubCatalog) UpdateItem(ctx context.Context, id uuid.UUID, input catalog.ItemInput) (*catalog.Item, error) {
	return &catalog.Item{ID: id, Name: input.Name}, s.err
}

func (s *stubCatalog) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.err
}

type stubSales struct {
	tracked  []sales.CartUpdate
	orders   []sales.OrderInput
	orderErr error
	days     int
	page     pagination.Params
}

func (s *stubSales) TrackCart(ctx context.Context, update sales.CartUpdate) error {
	s.tracked = append(s.tracked, update)
	return nil
}

func (s *stubSales) RecordOrder(ctx context.Context, input sales.OrderInput) (*models.CheckoutOrder, error) {
	s.orders = append(s.orders, input)
	if s.orderErr != nil {
		return nil, s.orderErr
	}
	return &models.CheckoutOrder{ID: uuid.New(), CartKey: input.CartKey, Status: enums.OrderStatusPending}, nil
}

func (s *stubSales) ListCarts(ctx context.Context, params pagination.Params) (*sales.CartList, error) {
	s.page = params
	return &sales.CartList{Carts: []models.CheckoutCart{}}, nil
}

func (s *stubSales) GetCart(ctx context.Context, id uuid.UUID) (*models.CheckoutCart, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
}

func (s *stubSales) ListOrders(ctx context.Context, params pagination.Params) (*sales.OrderList, error) {
	return &sales.OrderList{Orders: []models.CheckoutOrder{}}, nil
}

func (s *stubSales) Summary(ctx context.Context) (*sales.AnalyticsSummary, error) {
	return &sales.AnalyticsSummary{}, nil
}

func (s *stubSales) Timeline(ctx context.Context, days int) ([]sales.TimelinePoint, error) {
	s.days = days
	return []sales.TimelinePoint{}, nil
}

type stubLookup struct {
	result address.Result
	err    error
}

func (s stubLookup) Lookup(ctx context.Context, cep string) (address.Result, error) {
	return s.result, s.err
}

func testOffer() pricing.Offer {
	return pricing.Offer{
		Base:  &pricing.Product{ID: "base", Name: "Livro", PriceCents: 1990, Type: enums.ProductTypeBase, Active: true},
		Bumps: []pricing.Product{{ID: "bump-1", Name: "Marcador", PriceCents: 990, Type: enums.ProductTypeBump, Active: true}},
	}
}

func paulista() address.Result {
	return address.Result{CEP: "01310100", Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}
}

type envelope[T any] struct {
	Data  T `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
