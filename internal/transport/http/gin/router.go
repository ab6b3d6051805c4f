package httpgin

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/notify"
	"github.com/kirinyoku/tableorder/internal/payment"
	"github.com/kirinyoku/tableorder/internal/service"
	"github.com/kirinyoku/tableorder/internal/service/auth"
	"github.com/kirinyoku/tableorder/internal/service/checkout"
	"github.com/kirinyoku/tableorder/internal/service/menu"
	"github.com/kirinyoku/tableorder/internal/service/orders"
	"github.com/kirinyoku/tableorder/internal/service/tables"
	"github.com/kirinyoku/tableorder/internal/service/venue"
	"github.com/kirinyoku/tableorder/internal/session"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const idempotencyHeader = "Idempotency-Key"

type Options struct {
	Sessions    *session.Codec
	Hub         *notify.Hub
	Logger      *slog.Logger
	CORSOrigins []string
}

func NewRouter(
	svcs *service.Services,
	opts Options,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()

	r.Use(
		gin.Recovery(),
		RequestIDMiddleware(),
		SessionMiddleware(opts.Sessions),
		LoggingMiddleware(logger),
		CORS(opts.CORSOrigins),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/q/:token", handleResolveToken(svcs))
	r.POST("/webhooks/stripe", handleStripeWebhook(svcs))

	guest := r.Group("/t/:venueId", GuestTenant())
	{
		guest.GET("/menu", handlePublicMenu(svcs))
		guest.GET("/table/:token", handleTableLanding(svcs))

		guest.POST("/orders", handleCreateOrder(svcs))
		guest.GET("/orders/:orderId", handleGetOrder(svcs))
		guest.POST("/orders/:orderId/items", handleAttachItem(svcs))
		guest.PATCH("/orders/:orderId/status", handleGuestStatus(svcs))
		guest.POST("/orders/:orderId/settle", handleSettleDirect(svcs))

		guest.POST("/checkout", handleStartCheckout(svcs))
		guest.GET("/checkout/:sessionId", handleResumeCheckout(svcs))
		guest.POST("/checkout/:sessionId/place", handlePlaceCheckout(svcs))
		guest.POST("/checkout/:sessionId/pay", handlePayCheckout(svcs))
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", handleSignup(svcs, opts.Sessions))
		authGroup.POST("/login", handleLogin(svcs, opts.Sessions))
		authGroup.POST("/logout", handleLogout(opts.Sessions))

		member := authGroup.Group("", RequireRole(domain.RoleStaff))
		member.GET("/me", handleMe())
		member.GET("/venues", handleMyVenues(svcs))
		member.POST("/switch", handleSwitchVenue(svcs, opts.Sessions))
		member.POST("/password", handleChangePassword(svcs))
	}

	// Admin API. The venue always comes from the session.
	admin := r.Group("/admin", RequireRole(domain.RoleStaff))
	{
		manager := RequireRole(domain.RoleManager)
		owner := RequireRole(domain.RoleOwner)

		admin.GET("/venue", handleGetVenue(svcs))
		admin.PATCH("/venue", owner, handleUpdateVenue(svcs))

		admin.GET("/menu/categories", handleListCategories(svcs))
		admin.POST("/menu/categories", manager, handleCreateCategory(svcs))
		admin.PUT("/menu/categories/order", manager, handleReorderCategories(svcs))
		admin.PATCH("/menu/categories/:id", manager, handleRenameCategory(svcs))
		admin.DELETE("/menu/categories/:id", manager, handleDeleteCategory(svcs))

		admin.GET("/menu/items", handleListItems(svcs))
		admin.POST("/menu/items", manager, handleCreateItem(svcs))
		admin.PATCH("/menu/items/:id", manager, handleUpdateItem(svcs))
		admin.PUT("/menu/items/:id/availability", manager, handleSetAvailability(svcs))
		admin.DELETE("/menu/items/:id", manager, handleDeleteItem(svcs))

		admin.GET("/areas", handleListAreas(svcs))
		admin.POST("/areas", manager, handleCreateArea(svcs))
		admin.DELETE("/areas/:id", manager, handleDeleteArea(svcs))

		admin.GET("/tables", handleListTables(svcs))
		admin.POST("/tables", manager, handleCreateTable(svcs))
		admin.DELETE("/tables/:id", manager, handleDeleteTable(svcs))
		admin.POST("/tables/:id/rotate-token", manager, handleRotateToken(svcs))
		admin.GET("/tables/:id/qr.png", manager, handleTableQR(svcs))

		admin.GET("/orders", handleListOrders(svcs))
		admin.GET("/orders/summary", handleOrderSummary(svcs))
		admin.GET("/orders/stream", handleOrderStream(opts.Hub))
		admin.GET("/orders/:id", handleAdminGetOrder(svcs))
		admin.PATCH("/orders/:id/status", handleAdminStatus(svcs))
	}

	return r
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func idempotencyKey(c *gin.Context) string {
	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	if key != "" {
		c.Header(idempotencyHeader, key)
	}
	return key
}

func retryAfterSeconds(d time.Duration) string {
	sec := int(math.Ceil(d.Seconds()))
	if sec < 1 {
		sec = 1
	}
	return strconv.Itoa(sec)
}

// errStatus maps service sentinels to HTTP statuses. The first match wins,
// so more specific errors come first. The sentinel text is the public
// message.
var errStatus = []struct {
	err    error
	status int
}{
	// not found
	{orders.ErrOrderNotFound, http.StatusNotFound},
	{orders.ErrTableNotFound, http.StatusNotFound},
	{orders.ErrMenuItemNotFound, http.StatusNotFound},
	{checkout.ErrCheckoutNotFound, http.StatusNotFound},
	{checkout.ErrCheckoutExpired, http.StatusNotFound},
	{checkout.ErrNoGateway, http.StatusNotFound},
	{menu.ErrCategoryNotFound, http.StatusNotFound},
	{menu.ErrItemNotFound, http.StatusNotFound},
	{tables.ErrAreaNotFound, http.StatusNotFound},
	{tables.ErrTableNotFound, http.StatusNotFound},
	{venue.ErrVenueNotFound, http.StatusNotFound},
	{auth.ErrUserNotFound, http.StatusNotFound},

	// validation
	{orders.ErrInvalidQuantity, http.StatusBadRequest},
	{orders.ErrInvalidTip, http.StatusBadRequest},
	{orders.ErrInvalidStatus, http.StatusBadRequest},
	{checkout.ErrEmptyCart, http.StatusBadRequest},
	{menu.ErrInvalidName, http.StatusBadRequest},
	{menu.ErrInvalidPrice, http.StatusBadRequest},
	{menu.ErrInvalidTaxRate, http.StatusBadRequest},
	{tables.ErrInvalidName, http.StatusBadRequest},
	{venue.ErrInvalidName, http.StatusBadRequest},
	{venue.ErrInvalidCurrency, http.StatusBadRequest},
	{venue.ErrInvalidColor, http.StatusBadRequest},
	{venue.ErrInvalidLogoURL, http.StatusBadRequest},
	{auth.ErrInvalidEmail, http.StatusBadRequest},
	{auth.ErrWeakPassword, http.StatusBadRequest},
	{auth.ErrInvalidName, http.StatusBadRequest},
	{payment.ErrSignature, http.StatusBadRequest},
	{payment.ErrMalformed, http.StatusBadRequest},

	// auth
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{orders.ErrTransitionForbidden, http.StatusForbidden},
	{auth.ErrNoVenueAccess, http.StatusForbidden},

	// conflict
	{orders.ErrAlreadySettled, http.StatusConflict},
	{orders.ErrInvalidTransition, http.StatusConflict},
	{orders.ErrOrderNotEditable, http.StatusConflict},
	{orders.ErrMenuItemUnavailable, http.StatusConflict},
	{orders.ErrRequestInFlight, http.StatusConflict},
	{checkout.ErrCheckoutClosed, http.StatusConflict},
	{menu.ErrCategoryConflict, http.StatusConflict},
	{menu.ErrCategoryNotEmpty, http.StatusConflict},
	{tables.ErrTokenConflict, http.StatusConflict},
	{auth.ErrEmailTaken, http.StatusConflict},
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl orders.RateLimitedError
	if errors.As(err, &rl) {
		c.Header("Retry-After", retryAfterSeconds(rl.RetryAfter))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: orders.ErrRateLimited.Error()})
		return
	}

	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			if m.err == orders.ErrRequestInFlight {
				c.Header("Retry-After", "1")
			}
			c.JSON(m.status, ErrorResponse{Error: m.err.Error()})
			return
		}
	}

	// full detail goes to the log through c.Errors, the client sees nothing
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
