package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/kinmelhq/kinmel-backend/internal/cart"
	productssvc "github.com/kinmelhq/kinmel-backend/internal/products"
	userssvc "github.com/kinmelhq/kinmel-backend/internal/users"
	pkgAuth "github.com/kinmelhq/kinmel-backend/pkg/auth"
	"github.com/kinmelhq/kinmel-backend/pkg/config"
	"github.com/kinmelhq/kinmel-backend/pkg/enums"
	"github.com/kinmelhq/kinmel-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubUsersService struct{}

func (stubUsersService) Register(context.Context, userssvc.RegisterRequest) (*userssvc.UserDTO, error) {
	return &userssvc.UserDTO{ID: uuid.New()}, nil
}

func (stubUsersService) Login(context.Context, userssvc.LoginRequest) (*userssvc.LoginResponse, error) {
	return &userssvc.LoginResponse{AccessToken: "token"}, nil
}

func (stubUsersService) List(context.Context) ([]userssvc.UserDTO, error) {
	return nil, nil
}

func (stubUsersService) Delete(context.Context, string) error {
	return nil
}

type stubProductsService struct{}

func (stubProductsService) Add(context.Context, uuid.UUID, productssvc.UpsertProductRequest) (*productssvc.ProductDTO, error) {
	return &productssvc.ProductDTO{ID: uuid.New()}, nil
}

func (stubProductsService) Edit(context.Context, uuid.UUID, string, productssvc.UpsertProductRequest) (*productssvc.ProductDTO, error) {
	return &productssvc.ProductDTO{}, nil
}

func (stubProductsService) Delete(context.Context, uuid.UUID, string) error {
	return nil
}

func (stubProductsService) Detail(context.Context, string) (*productssvc.ProductDTO, error) {
	return &productssvc.ProductDTO{}, nil
}

func (stubProductsService) List(context.Context, pagination.Params) (*productssvc.ProductPage, error) {
	return &productssvc.ProductPage{}, nil
}

type stubCartService struct{}

func (stubCartService) AddItem(context.Context, uuid.UUID, cartsvc.AddItemRequest) (*cartsvc.CartItemDTO, error) {
	return &cartsvc.CartItemDTO{}, nil
}

func (stubCartService) RemoveItem(context.Context, uuid.UUID, string) error {
	return nil
}

func (stubCartService) Flush(context.Context, uuid.UUID) error {
	return nil
}

func (stubCartService) Count(context.Context, uuid.UUID) (*cartsvc.CountResponse, error) {
	return &cartsvc.CountResponse{Count: 1}, nil
}

func (stubCartService) ListPriced(context.Context, uuid.UUID, pagination.Params) (*cartsvc.CartPage, error) {
	return &cartsvc.CartPage{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "development", Port: "8081"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "kinmel-api", ExpirationMinutes: 30},
	}
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterParams{
		Config:          testConfig(),
		DB:              stubPinger{},
		UsersService:    stubUsersService{},
		ProductsService: stubProductsService{},
		CartService:     stubCartService{},
	})
}

func bearerFor(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(testConfig().JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "someone@example.com",
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterHealthAndPublicRoutes(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health/live, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /health/ready, got %d", resp.Code)
	}

	body := `{"email":"buyer@example.com","password":"hunter22"}`
	req = httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(body))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login, got %d", resp.Code)
	}
}

func TestRouterRequiresAuth(t *testing.T) {
	router := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/user/list"},
		{http.MethodGet, "/product/detail/" + uuid.NewString()},
		{http.MethodGet, "/cart/item/count"},
	}
	for _, tc := range paths {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestRouterEnforcesRoles(t *testing.T) {
	router := testRouter(t)

	// A buyer cannot manage the catalog.
	body := `{"name":"Mug","brand":"Everest","category":"kitchen","price":"19.99","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/product/add", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, enums.UserRoleBuyer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer adding product, got %d", resp.Code)
	}

	// A seller has no cart.
	req = httptest.NewRequest(http.MethodGet, "/cart/item/count", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.UserRoleSeller))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for seller cart access, got %d", resp.Code)
	}

	// The right role passes through to the handler.
	req = httptest.NewRequest(http.MethodGet, "/cart/item/count", nil)
	req.Header.Set("Authorization", bearerFor(t, enums.UserRoleBuyer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for buyer cart count, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/product/add", strings.NewReader(body))
	req.Header.Set("Authorization", bearerFor(t, enums.UserRoleSeller))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for seller adding product, got %d", resp.Code)
	}
}
