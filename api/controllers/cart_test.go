package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kinmelhq/kinmel-backend/api/middleware"
	cartsvc "github.com/kinmelhq/kinmel-backend/internal/cart"
	pkgerrors "github.com/kinmelhq/kinmel-backend/pkg/errors"
	"github.com/kinmelhq/kinmel-backend/pkg/pagination"
)

type stubCartService struct {
	item       *cartsvc.CartItemDTO
	page       *cartsvc.CartPage
	count      *cartsvc.CountResponse
	err        error
	flushed    bool
	listParams pagination.Params
}

func (s *stubCartService) AddItem(_ context.Context, _ uuid.UUID, _ cartsvc.AddItemRequest) (*cartsvc.CartItemDTO, error) {
	return s.item, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _ uuid.UUID, _ string) error {
	return s.err
}

func (s *stubCartService) Flush(_ context.Context, _ uuid.UUID) error {
	s.flushed = true
	return s.err
}

func (s *stubCartService) Count(_ context.Context, _ uuid.UUID) (*cartsvc.CountResponse, error) {
	return s.count, s.err
}

func (s *stubCartService) ListPriced(_ context.Context, _ uuid.UUID, params pagination.Params) (*cartsvc.CartPage, error) {
	s.listParams = params
	return s.page, s.err
}

func withBuyer(req *http.Request) *http.Request {
	ctx := middleware.WithUserID(req.Context(), uuid.New())
	ctx = middleware.WithRole(ctx, "buyer")
	return req.WithContext(ctx)
}

func TestCartAddItemCreated(t *testing.T) {
	item := &cartsvc.CartItemDTO{
		ID:              uuid.New(),
		BuyerID:         uuid.New(),
		ProductID:       uuid.New(),
		OrderedQuantity: 2,
	}
	handler := CartAddItem(&stubCartService{item: item}, nil)

	body := `{"product_id":"` + item.ProductID.String() + `","ordered_quantity":2}`
	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/add/item", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartItemDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != item.ID {
		t.Fatalf("unexpected item id: %s", envelope.Data.ID)
	}
}

func TestCartAddItemInvalidBody(t *testing.T) {
	handler := CartAddItem(&stubCartService{}, nil)

	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/add/item", strings.NewReader(`{"ordered_quantity":0}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddItemQuantityExceeded(t *testing.T) {
	svcErr := pkgerrors.New(pkgerrors.CodeQuantityExceeded, "ordered quantity exceeds available stock").
		WithDetails(map[string]any{"available": 3})
	handler := CartAddItem(&stubCartService{err: svcErr}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","ordered_quantity":5}`
	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/add/item", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeQuantityExceeded) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != float64(3) {
		t.Fatalf("expected available detail, got %v", envelope.Error.Details)
	}
}

func TestCartAddItemDuplicate(t *testing.T) {
	handler := CartAddItem(&stubCartService{err: pkgerrors.New(pkgerrors.CodeConflict, "product already in cart")}, nil)

	body := `{"product_id":"` + uuid.NewString() + `","ordered_quantity":1}`
	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/add/item", strings.NewReader(body)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCartListReturnsSubTotal(t *testing.T) {
	page := &cartsvc.CartPage{
		Items: []cartsvc.PricedCartItem{
			{
				CartItemID:      uuid.New(),
				ProductID:       uuid.New(),
				Name:            "Mug",
				Price:           decimal.RequireFromString("10.00"),
				OrderedQuantity: 2,
				LineTotal:       decimal.RequireFromString("20.00"),
				AddedAt:         time.Now().UTC(),
			},
		},
		Page:       1,
		Limit:      10,
		TotalItems: 5,
		SubTotal:   decimal.RequireFromString("35.00"),
	}
	handler := CartList(&stubCartService{page: page}, nil)

	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/list", strings.NewReader(`{"page":1,"limit":10}`)))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartPage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.SubTotal.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("unexpected sub total %s", envelope.Data.SubTotal)
	}
	if envelope.Data.TotalItems != 5 {
		t.Fatalf("unexpected total %d", envelope.Data.TotalItems)
	}
}

func TestCartListQueryParamsWithoutBody(t *testing.T) {
	svc := &stubCartService{page: &cartsvc.CartPage{}}
	handler := CartList(svc, nil)

	req := withBuyer(httptest.NewRequest(http.MethodPost, "/cart/list?page=2&limit=3", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.listParams.Page != 2 || svc.listParams.Limit != 3 {
		t.Fatalf("unexpected params %+v", svc.listParams)
	}
}

func TestCartRemoveItemForbidden(t *testing.T) {
	handler := CartRemoveItem(&stubCartService{err: pkgerrors.New(pkgerrors.CodeForbidden, "cart item is not in your cart")}, nil)

	req := withBuyer(httptest.NewRequest(http.MethodDelete, "/cart/item/delete/"+uuid.NewString(), nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestCartCount(t *testing.T) {
	handler := CartCount(&stubCartService{count: &cartsvc.CountResponse{Count: 7}}, nil)

	req := withBuyer(httptest.NewRequest(http.MethodGet, "/cart/item/count", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			ItemCount int64 `json:"item_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ItemCount != 7 {
		t.Fatalf("unexpected count %d", envelope.Data.ItemCount)
	}
}

func TestCartFlushAlwaysOK(t *testing.T) {
	svc := &stubCartService{}
	handler := CartFlush(svc, nil)

	req := withBuyer(httptest.NewRequest(http.MethodDelete, "/cart/flush", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.flushed {
		t.Fatalf("expected flush call")
	}
}
