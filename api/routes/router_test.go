package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/internal/auth"
	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/internal/checkout"
	"github.com/rkdoors/storefront-backend/internal/estimates"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/internal/users"
	pkgAuth "github.com/rkdoors/storefront-backend/pkg/auth"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/metrics"
	"github.com/rkdoors/storefront-backend/pkg/redis"
	"github.com/shopspring/decimal"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) SignUp(context.Context, auth.SignUpRequest) (*auth.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) SignIn(context.Context, auth.Credentials) (*auth.Session, error) {
	return &auth.Session{AccessToken: "access"}, nil
}

func (stubAuthService) AdminSignIn(context.Context, auth.Credentials) (*auth.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

func (stubAuthService) SignOut(context.Context, string) error {
	return nil
}

func (stubAuthService) Current(_ context.Context, _ string, userID uuid.UUID) (*auth.Identity, error) {
	return &auth.Identity{UID: userID.String()}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.Session, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubAdminRegister struct{}

func (stubAdminRegister) Register(_ context.Context, req auth.AdminRegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{Email: req.Email}, nil
}

type stubCatalog struct{}

func (stubCatalog) Doors() []catalog.Door {
	return []catalog.Door{{ID: "7", Name: "Teak Classic", Price: decimal.NewFromInt(900)}}
}

func (stubCatalog) Categories() []catalog.Category { return nil }

func (s stubCatalog) GetDoorByID(id string) (catalog.Door, bool) {
	for _, d := range s.Doors() {
		if d.ID == id {
			return d, true
		}
	}
	return catalog.Door{}, false
}

func (stubCatalog) GetDoorsByCategoryName(string) []catalog.Door { return nil }

func (stubCatalog) Loading() bool { return false }

func (stubCatalog) Err() string { return "" }

type stubCheckout struct{}

func (stubCheckout) PlaceCart(context.Context, string, string, orders.Delivery) (checkout.Result, error) {
	return checkout.Result{}, nil
}

func (stubCheckout) PlaceDirect(context.Context, string, checkout.DirectOrder) (orders.Order, error) {
	return orders.Order{}, nil
}

type stubOrderBook struct{}

func (stubOrderBook) GetUserOrders(string) []orders.Order { return []orders.Order{} }

func (stubOrderBook) GetAllOrders() []orders.Order { return []orders.Order{} }

func (stubOrderBook) GetOrder(string) (orders.Order, bool) { return orders.Order{}, false }

func (stubOrderBook) Stats() orders.Stats { return orders.Stats{} }

func (stubOrderBook) Status() orders.MirrorStatus {
	return orders.MirrorStatus{State: orders.MirrorLive}
}

func (stubOrderBook) UpdateOrderStatus(context.Context, string, enums.OrderStatus) (orders.Order, error) {
	return orders.Order{}, nil
}

func (stubOrderBook) CancelOrder(context.Context, string) error { return nil }

func (stubOrderBook) Resync(context.Context) error { return nil }

type stubEstimates struct{}

func (stubEstimates) Generate(context.Context, string, string) (estimates.Generated, error) {
	return estimates.Generated{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "rkdoors-test",
			ExpirationMinutes: 15,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:8081"}},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, reg *prometheus.Registry) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	cartService, err := cart.NewService(cart.ServiceParams{Catalog: stubCatalog{}, Logger: logg})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	var gatherer prometheus.Gatherer
	var httpMetrics *metrics.HTTPMetrics
	if reg != nil {
		gatherer = reg
		httpMetrics = metrics.NewHTTPMetrics(reg)
	}
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		gatherer,
		httpMetrics,
		stubSessions{},
		stubAuthService{},
		stubAdminRegister{},
		stubCatalog{},
		cartService,
		stubCheckout{},
		stubOrderBook{},
		stubEstimates{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.SystemRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "asha@example.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/doors/7", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartIssuesSessionKey(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get(middleware.CartSessionHeader) == "" {
		t.Fatalf("expected a cart session header")
	}
}

func TestCartKeepsStateAcrossRequests(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)
	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(`{"doorId":"7","width":"30","height":"78","thickness":"32"}`))
	add.Header.Set(middleware.CartSessionHeader, "session-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, add)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	get := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	get.Header.Set(middleware.CartSessionHeader, "session-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, get)
	if !strings.Contains(resp.Body.String(), `"total_items":1`) {
		t.Fatalf("expected one item in cart, got %s", resp.Body.String())
	}
}

func TestCartOfSignedInUserIsNotReachableByGuests(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)
	userID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: userID,
		Email:  "asha@example.com",
		Role:   enums.SystemRoleCustomer,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/lines", strings.NewReader(`{"doorId":"7","width":"30","height":"78","thickness":"32"}`))
	add.Header.Set("Authorization", "Bearer "+token)
	add.Header.Set(middleware.CartSessionHeader, "guest-9")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, add)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	userKey := "user:" + userID.String()
	if got := resp.Header().Get(middleware.CartSessionHeader); got != userKey {
		t.Fatalf("expected cart %q got %q", userKey, got)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	get.Header.Set(middleware.CartSessionHeader, userKey)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, get)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a guest claiming a user cart, got %d: %s", resp.Code, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), `"doorId"`) || strings.Contains(resp.Body.String(), "Teak") {
		t.Fatalf("cart contents leaked: %s", resp.Body.String())
	}
}

func TestMyOrdersRequireToken(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestMyOrdersWithToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminOrdersRequireAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, nil)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.SystemRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminRegisterHiddenInProd(t *testing.T) {
	body := `{"display_name":"Ops","email":"ops@example.com","password":"correct-horse"}`

	cfg := testConfig()
	resp := httptest.NewRecorder()
	newTestRouter(t, cfg, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 outside prod got %d", resp.Code)
	}

	cfg.App.Env = "prod"
	resp = httptest.NewRecorder()
	newTestRouter(t, cfg, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/register", strings.NewReader(body)))
	if resp.Code == http.StatusCreated {
		t.Fatalf("expected admin register to be unavailable in prod")
	}
}

func TestMetricsEndpointExposesHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(t, testConfig(), reg)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "http_requests_total") {
		t.Fatalf("expected http metrics in exposition")
	}
}
