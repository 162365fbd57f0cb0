package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rkdoors/storefront-backend/api/middleware"
	"github.com/rkdoors/storefront-backend/internal/cart"
	"github.com/shopspring/decimal"
)

func newCartService(t *testing.T) cart.Service {
	t.Helper()
	svc, err := cart.NewService(cart.ServiceParams{Catalog: sampleCatalog()})
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}
	return svc
}

func cartRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithCartSession(req.Context(), "session-1"))
}

func TestCartAddLineMergesSameSize(t *testing.T) {
	svc := newCartService(t)
	body := `{"doorId":"7","width":"30","height":"78","thickness":"32"}`
	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		CartAddLine(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/cart/lines", body))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	CartSnapshot(svc, nil).ServeHTTP(resp, cartRequest(http.MethodGet, "/api/v1/cart", ""))
	var snapshot cart.Snapshot
	decodeData(t, resp, &snapshot)
	if len(snapshot.Lines) != 1 || snapshot.Lines[0].Quantity != 2 {
		t.Fatalf("expected one merged line, got %+v", snapshot.Lines)
	}
	if snapshot.TotalItems != 2 || !snapshot.TotalPrice.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("unexpected totals %d %s", snapshot.TotalItems, snapshot.TotalPrice)
	}
}

func TestCartAddLineRejectsUnknownSize(t *testing.T) {
	resp := httptest.NewRecorder()
	body := `{"doorId":"7","width":"31","height":"78","thickness":"32"}`
	CartAddLine(newCartService(t), nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/cart/lines", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartAddLineUnknownDoor(t *testing.T) {
	resp := httptest.NewRecorder()
	body := `{"doorId":"404","width":"30","height":"78","thickness":"32"}`
	CartAddLine(newCartService(t), nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/cart/lines", body))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCartSetQuantityBelowOneRemovesLine(t *testing.T) {
	svc := newCartService(t)
	resp := httptest.NewRecorder()
	CartAddLine(svc, nil).ServeHTTP(resp, cartRequest(http.MethodPost, "/api/v1/cart/lines", `{"doorId":"7","width":"30","height":"78","thickness":"32"}`))

	resp = httptest.NewRecorder()
	req := withURLParam(cartRequest(http.MethodPatch, "/api/v1/cart/lines/7", `{"quantity":0}`), "doorId", "7")
	CartSetQuantity(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var snapshot cart.Snapshot
	decodeData(t, resp, &snapshot)
	if len(snapshot.Lines) != 0 || snapshot.TotalItems != 0 {
		t.Fatalf("expected empty cart, got %+v", snapshot)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	svc := newCartService(t)
	for _, body := range []string{
		`{"doorId":"7","width":"30","height":"78","thickness":"32"}`,
		`{"doorId":"7","width":"36","height":"84","thickness":"35"}`,
		`{"doorId":"8","width":"30","height":"78","thickness":"32"}`,
	} {
		CartAddLine(svc, nil).ServeHTTP(httptest.NewRecorder(), cartRequest(http.MethodPost, "/api/v1/cart/lines", body))
	}

	resp := httptest.NewRecorder()
	CartRemoveLine(svc, nil).ServeHTTP(resp, withURLParam(cartRequest(http.MethodDelete, "/api/v1/cart/lines/7", ""), "doorId", "7"))
	var snapshot cart.Snapshot
	decodeData(t, resp, &snapshot)
	if len(snapshot.Lines) != 1 || snapshot.Lines[0].Door.ID != "8" {
		t.Fatalf("expected only door 8 to remain, got %+v", snapshot.Lines)
	}

	resp = httptest.NewRecorder()
	CartClear(svc, nil).ServeHTTP(resp, cartRequest(http.MethodDelete, "/api/v1/cart", ""))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
}
