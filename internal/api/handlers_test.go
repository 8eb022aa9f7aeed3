package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-dashboard/internal/backend"
	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/dashboard"
	"restaurant-dashboard/internal/domain"
)

type fakeBackend struct {
	orders    []domain.Order
	listErr   error
	updateErr error
	tables    []domain.Table
}

func (f *fakeBackend) ListOrders(ctx context.Context, status domain.OrderStatus, page, pageSize int) (backend.OrdersPage, error) {
	if f.listErr != nil {
		return backend.OrdersPage{}, f.listErr
	}
	return backend.OrdersPage{Orders: f.orders, TotalPages: 1}, nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	if f.updateErr != nil {
		return domain.Order{}, f.updateErr
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return f.orders[i], nil
		}
	}
	return domain.Order{ID: id, Status: status}, nil
}

func (f *fakeBackend) ListTables(ctx context.Context) ([]domain.Table, error) {
	return f.tables, nil
}

func (f *fakeBackend) SetTableSession(ctx context.Context, id int64, open bool) (domain.Table, error) {
	for _, t := range f.tables {
		if t.ID == id {
			t.IsSessionOpen = open
			return t, nil
		}
	}
	return domain.Table{ID: id, IsSessionOpen: open}, nil
}

func setupServer(t *testing.T, f *fakeBackend) (*Server, *dashboard.Dashboard) {
	t.Helper()
	dash := dashboard.New(f, logger.New("test"))
	dash.LoadTables(context.Background())
	return NewServer(dash, logger.New("test")), dash
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func testOrders() []domain.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Order{
		{ID: 1, Status: domain.StatusPending, Type: domain.TypeOnTable, Table: &domain.TableRef{ID: 7}, CreatedAt: now},
		{ID: 2, Status: domain.StatusPending, Type: domain.TypeTakeAway, CreatedAt: now.Add(time.Minute)},
	}
}

func TestListOrdersEndpoint(t *testing.T) {
	s, _ := setupServer(t, &fakeBackend{orders: testOrders()})

	w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders?page=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Orders []struct {
			ID         int64  `json:"id"`
			TotalPrice string `json:"totalPrice"`
		} `json:"orders"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Orders) != 2 || resp.TotalPages != 1 {
		t.Fatalf("unexpected snapshot: %+v", resp)
	}
	if resp.Orders[0].TotalPrice != "0.00" {
		t.Fatalf("money must render with two decimals, got %q", resp.Orders[0].TotalPrice)
	}

	if w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders?status=NOPE", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad filter code %v", w.Code)
	}
	if w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders?page=0", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad page code %v", w.Code)
	}
}

func TestListOrdersPlanGate(t *testing.T) {
	f := &fakeBackend{listErr: &backend.APIError{Code: backend.CodePlanPermissionRequired, Message: "orders module not in plan"}}
	s, _ := setupServer(t, f)

	w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders", nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("plan gate code %v", w.Code)
	}
	var resp struct {
		UpgradeRequired bool `json:"upgradeRequired"`
		Error           struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.UpgradeRequired {
		t.Fatal("plan gate must carry the upgrade flag")
	}
	if resp.Error.Message == "" {
		t.Fatal("expected upgrade hint message")
	}
}

func TestListOrdersGenericFailure(t *testing.T) {
	f := &fakeBackend{listErr: &backend.APIError{HTTPStatus: 500, Message: "backend down"}}
	s, _ := setupServer(t, f)
	if w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders", nil); w.Code != http.StatusBadGateway {
		t.Fatalf("generic failure code %v", w.Code)
	}
}

func TestStatusUpdateEndpoint(t *testing.T) {
	s, dash := setupServer(t, &fakeBackend{orders: testOrders()})
	doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders", nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/1/status", map[string]string{"status": "CONFIRMED"})
	if w.Code != http.StatusOK {
		t.Fatalf("confirm code %v: %s", w.Code, w.Body.String())
	}
	snap := dash.Snapshot()
	if snap.Orders[0].Order.Status != domain.StatusConfirmed {
		t.Fatalf("store not reconciled after confirm: %v", snap.Orders[0].Order.Status)
	}

	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/2/status", map[string]string{"status": "READY"}); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("skip transition code %v", w.Code)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/99/status", map[string]string{"status": "CONFIRMED"}); w.Code != http.StatusNotFound {
		t.Fatalf("unknown order code %v", w.Code)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/2/status", map[string]string{"status": "NOPE"}); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status code %v", w.Code)
	}
	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/abc/status", map[string]string{"status": "CONFIRMED"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id code %v", w.Code)
	}
}

func TestSeenAndResetEndpoints(t *testing.T) {
	s, dash := setupServer(t, &fakeBackend{orders: testOrders()})
	doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders", nil)
	dash.ApplyOrderNew(domain.Order{ID: 3, Status: domain.StatusPending, Type: domain.TypeTakeAway})

	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/orders/3/seen", nil); w.Code != http.StatusNoContent {
		t.Fatalf("seen code %v", w.Code)
	}
	if dash.IsOrderUnseen(3) {
		t.Fatal("seen endpoint must clear the badge")
	}

	dash.ApplyOrderNew(domain.Order{ID: 4, Status: domain.StatusPending, Type: domain.TypeTakeAway})
	if w := doJSON(t, s, http.MethodPost, "/api/v1/dashboard/reset", nil); w.Code != http.StatusNoContent {
		t.Fatalf("reset code %v", w.Code)
	}
	if dash.IsOrderUnseen(4) {
		t.Fatal("reset must clear every badge")
	}
}

func TestGroupEndpoints(t *testing.T) {
	f := &fakeBackend{orders: testOrders(), tables: []domain.Table{{ID: 7, Number: 4, IsActive: true}}}
	s, dash := setupServer(t, f)
	doJSON(t, s, http.MethodGet, "/api/v1/dashboard/orders", nil)
	dash.ApplyOrderNew(domain.Order{ID: 3, Status: domain.StatusPending, Type: domain.TypeOnTable, Table: &domain.TableRef{ID: 7}})

	w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/groups", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("groups code %v", w.Code)
	}
	var groups struct {
		Data []struct {
			Key       string `json:"key"`
			HasUnseen bool   `json:"hasUnseen"`
		} `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &groups)
	if len(groups.Data) != 2 {
		t.Fatalf("expected table 7 plus takeaway, got %+v", groups.Data)
	}
	if groups.Data[0].Key != "tableId-7" || !groups.Data[0].HasUnseen {
		t.Fatalf("table card wrong: %+v", groups.Data[0])
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/dashboard/groups/tableId-7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("group detail code %v", w.Code)
	}
	var detail struct {
		TotalCount int `json:"totalCount"`
		LastOrders []struct {
			ID int64 `json:"id"`
		} `json:"lastOrders"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.TotalCount != 2 || len(detail.LastOrders) != 2 {
		t.Fatalf("detail wrong: %+v", detail)
	}
	if dash.TableHasUnseen(domain.Table{ID: 7, Number: 4}) {
		t.Fatal("opening the group clears its badge")
	}

	if w := doJSON(t, s, http.MethodGet, "/api/v1/dashboard/groups/tableId-99", nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown group code %v", w.Code)
	}
}

func TestToggleSessionEndpoint(t *testing.T) {
	f := &fakeBackend{tables: []domain.Table{{ID: 2, Number: 2}}}
	s, _ := setupServer(t, f)

	w := doJSON(t, s, http.MethodPatch, "/api/v1/dashboard/tables/2/session", map[string]bool{"isSessionOpen": true})
	if w.Code != http.StatusOK {
		t.Fatalf("toggle code %v: %s", w.Code, w.Body.String())
	}
	var resp struct {
		IsSessionOpen bool `json:"isSessionOpen"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.IsSessionOpen {
		t.Fatal("expected open session in response")
	}

	if w := doJSON(t, s, http.MethodPatch, "/api/v1/dashboard/tables/2/session", map[string]string{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing body code %v", w.Code)
	}
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t, &fakeBackend{})
	if w := doJSON(t, s, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health code %v", w.Code)
	}
}
