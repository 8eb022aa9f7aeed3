package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/domain"
)

func newClient(t *testing.T, base string) *Client {
	t.Helper()
	return New(base, 2*time.Second, time.Minute, logger.New("test"))
}

func TestListOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("status") != "PENDING" || q.Get("page") != "2" || q.Get("pageSize") != "20" {
			t.Fatalf("unexpected query %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": 1, "status": "PENDING", "orderType": "ON_TABLE", "tableId": 7, "totalPrice": 12.5, "createdAt": "2025-06-01T12:00:00Z"},
				{"id": 2, "status": "PENDING", "orderType": "TAKE_AWAY", "totalPrice": 3, "createdAt": "2025-06-01T12:01:00Z"},
			},
			"pagination": map[string]any{"totalPages": 4},
		})
	}))
	defer srv.Close()

	page, err := newClient(t, srv.URL).ListOrders(context.Background(), domain.StatusPending, 2, 20)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if page.TotalPages != 4 || len(page.Orders) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	first := page.Orders[0]
	if first.Table == nil || first.Table.ID != 7 {
		t.Fatalf("table ref not normalized: %+v", first.Table)
	}
	if first.TotalPrice.StringFixed(2) != "12.50" {
		t.Fatalf("price lost precision: %s", first.TotalPrice)
	}
}

func TestErrorEnvelopeClassification(t *testing.T) {
	cases := []struct {
		code string
		plan bool
	}{
		{CodePlanPermissionRequired, true},
		{CodeNoActiveSubscription, true},
		{"SOMETHING_ELSE", false},
		{"", false},
	}
	for _, cse := range cases {
		code := cse.code
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": code, "message": "denied"},
			})
		}))
		_, err := newClient(t, srv.URL).UpdateOrderStatus(context.Background(), 1, domain.StatusConfirmed)
		srv.Close()
		if err == nil {
			t.Fatalf("%q: expected error", code)
		}
		if IsPlanPermission(err) != cse.plan {
			t.Fatalf("%q: IsPlanPermission = %v, want %v", code, !cse.plan, cse.plan)
		}
		if Message(err, "fallback") != "denied" {
			t.Fatalf("%q: server message lost: %v", code, err)
		}
	}
}

func TestMessageFallback(t *testing.T) {
	if got := Message(context.DeadlineExceeded, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback for plain errors, got %q", got)
	}
}

func TestListTablesCached(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "number": 1, "isSessionOpen": true, "isActive": true}},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		tables, err := c.ListTables(context.Background())
		if err != nil || len(tables) != 1 {
			t.Fatalf("list tables: %v %v", tables, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits.Load())
	}
}

func TestListTablesStaleFallback(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "number": 1}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second, 10*time.Millisecond, logger.New("test"))
	if _, err := c.ListTables(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	fail.Store(true)
	time.Sleep(20 * time.Millisecond) // let the TTL lapse
	tables, err := c.ListTables(context.Background())
	if err != nil || len(tables) != 1 {
		t.Fatalf("stale copy should be served after a failed refresh: %v %v", tables, err)
	}
}

func TestSetTableSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tables/2/session" {
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]bool
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": 2, "number": 2, "isSessionOpen": body["isSessionOpen"], "isActive": true},
		})
	}))
	defer srv.Close()

	tb, err := newClient(t, srv.URL).SetTableSession(context.Background(), 2, true)
	if err != nil {
		t.Fatalf("set session: %v", err)
	}
	if !tb.IsSessionOpen || tb.ID != 2 {
		t.Fatalf("unexpected table: %+v", tb)
	}
}
