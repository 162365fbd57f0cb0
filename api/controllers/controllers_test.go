package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rkdoors/storefront-backend/internal/catalog"
	"github.com/rkdoors/storefront-backend/internal/orders"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/shopspring/decimal"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var envelope struct {
		Error errorBody `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return envelope.Error
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCatalog struct {
	doors      []catalog.Door
	categories []catalog.Category
	loading    bool
	err        string
}

func (s stubCatalog) Doors() []catalog.Door { return s.doors }

func (s stubCatalog) Categories() []catalog.Category { return s.categories }

func (s stubCatalog) Loading() bool { return s.loading }

func (s stubCatalog) Err() string { return s.err }

func (s stubCatalog) GetDoorByID(id string) (catalog.Door, bool) {
	for _, d := range s.doors {
		if d.ID == id {
			return d, true
		}
	}
	return catalog.Door{}, false
}

func (s stubCatalog) GetDoorsByCategoryName(name string) []catalog.Door {
	out := []catalog.Door{}
	for _, d := range s.doors {
		if d.Category == name {
			out = append(out, d)
		}
	}
	return out
}

func sampleCatalog() stubCatalog {
	return stubCatalog{
		doors: []catalog.Door{
			{ID: "7", Name: "Teak Classic", Price: decimal.NewFromInt(900), Category: "Wooden Doors"},
			{ID: "8", Name: "Steel Guard", Price: decimal.NewFromInt(1500), Category: "Steel Doors"},
		},
		categories: []catalog.Category{{ID: "1", Name: "Wooden Doors", Slug: "wooden", Icon: "door-open"}},
	}
}

type stubMirror struct{ status orders.MirrorStatus }

func (s stubMirror) Status() orders.MirrorStatus { return s.status }

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev"}}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(testConfig()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get(envHeader); got != "dev" {
		t.Fatalf("expected env header dev got %q", got)
	}
}

func TestHealthReadyReportsCatalogAndMirror(t *testing.T) {
	deps := ReadinessDeps{
		DB:      stubPinger{},
		Redis:   stubPinger{},
		Catalog: stubCatalog{err: "catalog request timed out"},
		Orders:  stubMirror{status: orders.MirrorStatus{State: orders.MirrorStale, Size: 3}},
	}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), deps, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body readiness
	decodeData(t, resp, &body)
	if body.Checks["db"] != "ok" || body.Checks["redis"] != "ok" {
		t.Fatalf("unexpected checks %v", body.Checks)
	}
	if body.Catalog == nil || body.Catalog.Error != "catalog request timed out" {
		t.Fatalf("expected catalog error to be reported, got %+v", body.Catalog)
	}
	if body.Orders == nil || body.Orders.State != orders.MirrorStale || body.Orders.Size != 3 {
		t.Fatalf("unexpected mirror status %+v", body.Orders)
	}
}

func TestHealthReadyFailsWhenRedisIsDown(t *testing.T) {
	deps := ReadinessDeps{DB: stubPinger{}, Redis: stubPinger{err: errors.New("connection refused")}}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), deps, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	apiErr := decodeError(t, resp)
	if apiErr.Details["redis"] != "connection refused" || apiErr.Details["db"] != "ok" {
		t.Fatalf("unexpected details %v", apiErr.Details)
	}
}

func TestCatalogDoorsFiltersByCategory(t *testing.T) {
	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/doors?category=Steel+Doors", nil)
	CatalogDoors(sampleCatalog(), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body catalogDoorsResponse
	decodeData(t, resp, &body)
	if len(body.Doors) != 1 || body.Doors[0].ID != "8" {
		t.Fatalf("unexpected doors %+v", body.Doors)
	}
}

func TestCatalogDoorsKeepsServingAfterLoadError(t *testing.T) {
	store := sampleCatalog()
	store.err = "could not reach the catalog"
	resp := httptest.NewRecorder()
	CatalogDoors(store, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/doors", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var body catalogDoorsResponse
	decodeData(t, resp, &body)
	if len(body.Doors) != 2 || body.Error != "could not reach the catalog" {
		t.Fatalf("unexpected payload %+v", body)
	}
}

func TestCatalogDoorNotFound(t *testing.T) {
	resp := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/doors/99", nil), "doorId", "99")
	CatalogDoor(sampleCatalog(), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if code := decodeError(t, resp).Code; code != "NOT_FOUND" {
		t.Fatalf("unexpected code %s", code)
	}
}

func TestCatalogDoorFound(t *testing.T) {
	resp := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/doors/7", nil), "doorId", "7")
	CatalogDoor(sampleCatalog(), nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var door catalog.Door
	decodeData(t, resp, &door)
	if door.Name != "Teak Classic" || !door.Price.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("unexpected door %+v", door)
	}
}

func TestCatalogSizes(t *testing.T) {
	resp := httptest.NewRecorder()
	CatalogSizes().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/sizes", nil))

	var body struct {
		Widths      []string `json:"widths"`
		Heights     []string `json:"heights"`
		Thicknesses []string `json:"thicknesses"`
	}
	decodeData(t, resp, &body)
	if len(body.Widths) == 0 || len(body.Heights) == 0 || len(body.Thicknesses) == 0 {
		t.Fatalf("expected size options, got %+v", body)
	}
}
