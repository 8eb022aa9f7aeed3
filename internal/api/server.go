package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"restaurant-dashboard/internal/backend"
	"restaurant-dashboard/internal/common/logger"
	"restaurant-dashboard/internal/dashboard"
	"restaurant-dashboard/internal/domain"
	"restaurant-dashboard/internal/monitoring"
)

const upgradeHint = "Upgrade your plan to use this feature."

type Server struct {
	engine *gin.Engine
	dash   *dashboard.Dashboard
	log    *logger.Logger
}

func NewServer(dash *dashboard.Dashboard, log *logger.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), monitoring.PrometheusMiddleware())
	s := &Server{engine: r, dash: dash, log: log}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1/dashboard")
	{
		v1.GET("/orders", s.listOrders)
		v1.GET("/orders/:id", s.orderDetail)
		v1.POST("/orders/:id/seen", s.markSeen)
		v1.POST("/orders/:id/status", s.updateStatus)
		v1.POST("/reset", s.resetUnseen)
		v1.GET("/groups", s.listGroups)
		v1.GET("/groups/:key", s.openGroup)
		v1.PATCH("/tables/:id/session", s.toggleSession)
	}
}

// listOrders loads the requested page from the platform and returns the
// reconciled snapshot.
func (s *Server) listOrders(c *gin.Context) {
	var status domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		st, ok := domain.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unknown status filter"}})
			return
		}
		status = st
	}
	page := 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "invalid page"}})
			return
		}
		page = p
	}

	if err := s.dash.Load(c.Request.Context(), status, page); err != nil {
		s.log.Error("orders_load_failed", err, map[string]any{"page": page})
		s.renderBackendError(c, err, "failed to load orders")
		return
	}
	c.JSON(http.StatusOK, toSnapshotView(s.dash.Snapshot()))
}

func (s *Server) orderDetail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	o, found := s.dash.OpenOrderDetail(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "order not found"}})
		return
	}
	c.JSON(http.StatusOK, toOrderView(o, false))
}

func (s *Server) markSeen(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	s.dash.MarkOrderSeen(id)
	c.Status(http.StatusNoContent)
}

func (s *Server) updateStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}
	next, valid := domain.ParseStatus(req.Status)
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "unknown status"}})
		return
	}

	err := s.dash.UpdateStatus(c.Request.Context(), id, next)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"id": id, "status": string(next)})
	case errors.Is(err, dashboard.ErrUnknownOrder):
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "order not found"}})
	case errors.Is(err, dashboard.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{"message": "status transition not allowed"}})
	default:
		s.log.Error("status_update_failed", err, map[string]any{"order_id": id, "status": string(next)})
		s.renderBackendError(c, err, "failed to update order status")
	}
}

func (s *Server) resetUnseen(c *gin.Context) {
	s.dash.ResetUnseen()
	c.Status(http.StatusNoContent)
}

func (s *Server) listGroups(c *gin.Context) {
	groups := s.dash.Groups()
	out := make([]groupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupView(g))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) openGroup(c *gin.Context) {
	detail, ok := s.dash.OpenGroup(c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "unknown group"}})
		return
	}
	c.JSON(http.StatusOK, toGroupDetailView(detail))
}

func (s *Server) toggleSession(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req struct {
		IsSessionOpen *bool `json:"isSessionOpen" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
		return
	}

	t, err := s.dash.ToggleTableSession(c.Request.Context(), id, *req.IsSessionOpen)
	if err != nil {
		s.log.Error("session_toggle_failed", err, map[string]any{"table_id": id})
		s.renderBackendError(c, err, "failed to toggle table session")
		return
	}
	c.JSON(http.StatusOK, toTableView(t))
}

// renderBackendError maps a platform failure onto the two UI paths: the
// plan/subscription gate with its upgrade call-to-action, or the generic
// failure carrying the server message when one exists.
func (s *Server) renderBackendError(c *gin.Context, err error, fallback string) {
	if backend.IsPlanPermission(err) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":           gin.H{"message": backend.Message(err, fallback) + " " + upgradeHint},
			"upgradeRequired": true,
		})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{"message": backend.Message(err, fallback)}})
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "invalid id"}})
		return 0, false
	}
	return id, true
}
