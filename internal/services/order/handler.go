package order

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"canteen-rush/internal/apperrors"
	"canteen-rush/internal/catalog"
	"canteen-rush/internal/logger"
	"canteen-rush/internal/models"
)

const principalKey = "principal"

// Handler exposes the order service over HTTP.
type Handler struct {
	service *Service
	menu    catalog.Catalog
	logger  *logger.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service *Service, menu catalog.Catalog, log *logger.Logger) *Handler {
	return &Handler{service: service, menu: menu, logger: log}
}

// SetupRoutes builds the gin engine with all routes attached.
func (h *Handler) SetupRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.withLogging())

	r.GET("/health", h.Health)
	r.GET("/menu", h.ListMenu)

	authed := r.Group("/", h.withPrincipal())
	authed.POST("/orders", h.CreateOrder)
	authed.GET("/orders", h.ListOrders)
	authed.PUT("/orders/:id/status", h.UpdateStatus)
	authed.GET("/orders/by-token/:token", h.GetByToken)

	return r
}

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(c *gin.Context) {
	requestID := requestIDFrom(c)

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("validation_failed", requestID, "Failed to parse request body", err)
		h.writeError(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	o, err := h.service.Create(c.Request.Context(), principalFrom(c), &req, requestID)
	if err != nil {
		h.writeServiceError(c, err, requestID)
		return
	}

	c.JSON(http.StatusCreated, o)
}

// ListOrders handles GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	requestID := requestIDFrom(c)

	orders, err := h.service.List(c.Request.Context(), principalFrom(c), requestID)
	if err != nil {
		h.writeServiceError(c, err, requestID)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateStatus handles PUT /orders/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	requestID := requestIDFrom(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.writeError(c, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), principalFrom(c), orderID, models.OrderStatus(req.Status), requestID)
	if err != nil {
		h.writeServiceError(c, err, requestID)
		return
	}

	c.JSON(http.StatusOK, o)
}

// GetByToken handles GET /orders/by-token/:token
func (h *Handler) GetByToken(c *gin.Context) {
	requestID := requestIDFrom(c)

	tokenNumber, err := strconv.Atoi(c.Param("token"))
	if err != nil {
		h.writeError(c, http.StatusBadRequest, "Invalid token", requestID)
		return
	}

	o, err := h.service.GetByToken(c.Request.Context(), principalFrom(c), tokenNumber)
	if err != nil {
		h.writeServiceError(c, err, requestID)
		return
	}

	c.JSON(http.StatusOK, o)
}

// ListMenu handles GET /menu
func (h *Handler) ListMenu(c *gin.Context) {
	requestID := requestIDFrom(c)

	items, err := h.menu.ListAvailable(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err, requestID)
		return
	}
	if items == nil {
		items = []catalog.Item{}
	}

	c.JSON(http.StatusOK, items)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	healthy := h.service.HealthCheck(c.Request.Context())

	status := http.StatusOK
	body := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
	}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
	}
	c.JSON(status, body)
}

// withPrincipal extracts the already-verified identity the auth layer
// attaches upstream. Requests without one are rejected.
func (h *Handler) withPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.Atoi(c.GetHeader("X-User-ID"))
		if err != nil || userID < 1 {
			h.writeError(c, http.StatusUnauthorized, "Missing or invalid X-User-ID header", requestIDFrom(c))
			c.Abort()
			return
		}
		role, ok := models.ParseRole(c.GetHeader("X-User-Role"))
		if !ok {
			h.writeError(c, http.StatusUnauthorized, "Missing or invalid X-User-Role header", requestIDFrom(c))
			c.Abort()
			return
		}

		c.Set(principalKey, models.Principal{UserID: userID, Role: role})
		c.Next()
	}
}

// withLogging attaches a request id and logs request start and completion.
func (h *Handler) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Set("request_id", requestID)

		h.logger.Debug("request_started", requestID,
			fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path))

		c.Next()

		h.logger.Debug("request_completed", requestID,
			fmt.Sprintf("%s %s - %d in %dms",
				c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Milliseconds()))
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error, requestID string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrInvalidCart):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, apperrors.ErrIllegalTransition),
		errors.Is(err, apperrors.ErrConcurrencyConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrTokenExhausted),
		errors.Is(err, apperrors.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request_failed", requestID, "Unexpected failure", err)
		h.writeError(c, status, "Internal server error", requestID)
		return
	}
	h.writeError(c, status, err.Error(), requestID)
}

func (h *Handler) writeError(c *gin.Context, status int, message, requestID string) {
	c.JSON(status, gin.H{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

func principalFrom(c *gin.Context) models.Principal {
	p, _ := c.Get(principalKey)
	principal, _ := p.(models.Principal)
	return principal
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString("request_id")
}
