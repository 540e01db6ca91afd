package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/api/middleware"
	"github.com/marketloop/marketloop-backend/internal/cart"
	product "github.com/marketloop/marketloop-backend/internal/products"
	"github.com/marketloop/marketloop-backend/pkg/db/models"
)

type stubCartCatalog struct {
	products map[uuid.UUID]*models.Product
	vendors  map[uuid.UUID]*product.VendorSummary
}

func (s *stubCartCatalog) GetProductDetail(_ context.Context, id uuid.UUID) (*models.Product, *product.VendorSummary, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil, fmt.Errorf("product %s: %w", id, gorm.ErrRecordNotFound)
	}
	return p, s.vendors[p.VendorID], nil
}

func newCartTestManager(t *testing.T) (*cart.Manager, uuid.UUID) {
	t.Helper()

	vendorID := uuid.New()
	productID := uuid.New()
	catalog := &stubCartCatalog{
		products: map[uuid.UUID]*models.Product{
			productID: {
				ID:         productID,
				VendorID:   vendorID,
				Name:       "Walnut Cutting Board",
				PriceCents: 4500,
				Stock:      10,
				IsActive:   true,
			},
		},
		vendors: map[uuid.UUID]*product.VendorSummary{
			vendorID: {ID: vendorID, Name: "Oak & Iron", Slug: "oak-and-iron"},
		},
	}

	mgr, err := cart.NewManager(cart.NewMemoryStore(), catalog, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr, productID
}

func TestAddCartItemWithCartToken(t *testing.T) {
	mgr, productID := newCartTestManager(t)
	handler := AddCartItem(mgr, nil)

	body, _ := json.Marshal(map[string]any{"product_id": productID, "quantity": 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	req.Header.Set("X-Cart-Token", "guest-abc")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data cart.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Cart.Items) != 1 || envelope.Data.Cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart contents: %+v", envelope.Data.Cart)
	}
	if envelope.Data.Totals.Total.Cents != 9000 {
		t.Fatalf("expected total 9000 got %d", envelope.Data.Totals.Total.Cents)
	}
}

func TestAddCartItemMissingIdentity(t *testing.T) {
	mgr, productID := newCartTestManager(t)
	handler := AddCartItem(mgr, nil)

	body, _ := json.Marshal(map[string]any{"product_id": productID, "quantity": 1})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGetCartPrefersUserIdentity(t *testing.T) {
	mgr, productID := newCartTestManager(t)
	userID := uuid.New()

	addReq := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, map[string]any{
		"product_id": productID, "quantity": 1,
	}))
	addReq = addReq.WithContext(middleware.WithUserID(addReq.Context(), userID.String()))
	AddCartItem(mgr, nil).ServeHTTP(httptest.NewRecorder(), addReq)

	// Same user, different device: no cart token but the cart follows.
	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	getReq = getReq.WithContext(middleware.WithUserID(getReq.Context(), userID.String()))

	resp := httptest.NewRecorder()
	GetCart(mgr, nil).ServeHTTP(resp, getReq)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cart.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Cart.Items) != 1 {
		t.Fatalf("expected cart to follow the user, got %+v", envelope.Data.Cart)
	}
}

func TestUpdateCartItemRequiresExactlyOneField(t *testing.T) {
	mgr, productID := newCartTestManager(t)
	handler := UpdateCartItem(mgr, nil)

	cases := []map[string]any{
		{},
		{"quantity": 2, "delta": 1},
	}
	for _, payload := range cases {
		req := newChiRequest(http.MethodPatch, "/api/v1/cart/items/"+productID.String(),
			jsonBody(t, payload), "productID", productID.String())
		req.Header.Set("X-Cart-Token", "guest-abc")

		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Fatalf("payload %v: expected 400 got %d", payload, resp.Code)
		}
	}
}

func TestUpdateCartItemSetsQuantity(t *testing.T) {
	mgr, productID := newCartTestManager(t)

	addReq := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", jsonBody(t, map[string]any{
		"product_id": productID, "quantity": 1,
	}))
	addReq.Header.Set("X-Cart-Token", "guest-xyz")
	AddCartItem(mgr, nil).ServeHTTP(httptest.NewRecorder(), addReq)

	req := newChiRequest(http.MethodPatch, "/api/v1/cart/items/"+productID.String(),
		jsonBody(t, map[string]any{"quantity": 4}), "productID", productID.String())
	req.Header.Set("X-Cart-Token", "guest-xyz")

	resp := httptest.NewRecorder()
	UpdateCartItem(mgr, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data cart.View `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := envelope.Data.Cart.Items[0].Quantity; got != 4 {
		t.Fatalf("expected quantity 4 got %d", got)
	}
}

func TestConfirmVendorSwitchWithoutPending(t *testing.T) {
	mgr, _ := newCartTestManager(t)
	handler := ConfirmVendorSwitch(mgr, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/switch/confirm", nil)
	req.Header.Set("X-Cart-Token", "guest-abc")

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func jsonBody(t *testing.T, payload any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return bytes.NewReader(raw)
}

func newChiRequest(method, target string, body *bytes.Reader, paramKey, paramValue string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(paramKey, paramValue)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
