package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/domain"
)

// The fresh entry expires with the TTL; the stale copy never does and is the
// fallback when a refresh fails.
const (
	tablesCacheKey      = "tables"
	tablesStaleCacheKey = "tables_stale"
)

// Client talks to the platform backend's REST API. The table list is cached
// with a TTL and served stale when a refresh fails: table data is an
// enhancement, not critical path.
type Client struct {
	base   string
	http   *http.Client
	log    *logger.Logger
	tables *gocache.Cache
}

func New(baseURL string, timeout time.Duration, tablesTTL time.Duration, log *logger.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		log:    log,
		tables: gocache.New(tablesTTL, 2*tablesTTL),
	}
}

type OrdersPage struct {
	Orders     []domain.Order
	TotalPages int
}

type ordersEnvelope struct {
	Data       []domain.OrderPayload `json:"data"`
	Pagination struct {
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

type orderEnvelope struct {
	Data domain.OrderPayload `json:"data"`
}

type tablesEnvelope struct {
	Data []domain.TablePayload `json:"data"`
}

type tableEnvelope struct {
	Data domain.TablePayload `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListOrders fetches one page of orders, optionally filtered by status.
func (c *Client) ListOrders(ctx context.Context, status domain.OrderStatus, page, pageSize int) (OrdersPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var env ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders?"+q.Encode(), nil, &env); err != nil {
		return OrdersPage{}, err
	}
	out := OrdersPage{
		Orders:     make([]domain.Order, 0, len(env.Data)),
		TotalPages: env.Pagination.TotalPages,
	}
	for _, p := range env.Data {
		out.Orders = append(out.Orders, p.ToOrder())
	}
	return out, nil
}

// UpdateOrderStatus asks the backend to move the order to the given status
// and returns the server-confirmed order.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (domain.Order, error) {
	body := map[string]string{"status": string(status)}
	var env orderEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/status", id), body, &env); err != nil {
		return domain.Order{}, err
	}
	return env.Data.ToOrder(), nil
}

// ListTables returns the restaurant's tables, from cache when fresh. A fetch
// failure falls back to the last cached copy and is only logged.
func (c *Client) ListTables(ctx context.Context) ([]domain.Table, error) {
	if v, ok := c.tables.Get(tablesCacheKey); ok {
		return v.([]domain.Table), nil
	}
	var env tablesEnvelope
	if err := c.do(ctx, http.MethodGet, "/tables", nil, &env); err != nil {
		if v, ok := c.tables.Get(tablesStaleCacheKey); ok {
			c.log.Error("tables_refresh_failed", err, map[string]any{"served": "stale"})
			return v.([]domain.Table), nil
		}
		return nil, err
	}
	out := make([]domain.Table, 0, len(env.Data))
	for _, p := range env.Data {
		out = append(out, p.ToTable())
	}
	c.tables.Set(tablesCacheKey, out, gocache.DefaultExpiration)
	c.tables.Set(tablesStaleCacheKey, out, gocache.NoExpiration)
	return out, nil
}

// SetTableSession toggles a table's session gate and returns the updated
// table. The table cache is dropped so the next list reflects the change.
func (c *Client) SetTableSession(ctx context.Context, id int64, open bool) (domain.Table, error) {
	body := map[string]bool{"isSessionOpen": open}
	var env tableEnvelope
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tables/%d/session", id), body, &env); err != nil {
		return domain.Table{}, err
	}
	c.tables.Delete(tablesCacheKey)
	return env.Data.ToTable(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ae := &APIError{HTTPStatus: resp.StatusCode}
		var env errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil {
			ae.Code = env.Error.Code
			ae.Message = env.Error.Message
		}
		return ae
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
