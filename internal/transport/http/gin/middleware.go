package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/tableorder/internal/domain"
	"github.com/kirinyoku/tableorder/internal/session"
	"github.com/kirinyoku/tableorder/internal/tenant"
)

const (
	CodeTenantRequired = "TENANT_REQUIRED"
	CodeTenantInvalid  = "TENANT_INVALID"
	CodeAuthRequired   = "AUTH_REQUIRED"
	CodeForbidden      = "FORBIDDEN"
)

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Set("request_id", reqID)

		c.Next()
	}
}

// CORS allows the listed origins with credentials so the session cookie
// reaches the admin API. An empty list or "*" allows any origin without
// credentials.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"X-Venue-ID",
			"Idempotency-Key",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"ETag",
			"Cache-Control",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}

	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	return cors.New(cfg)
}

func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()
		reqID, _ := c.Get("request_id")

		attrs := []slog.Attr{
			slog.Int("status", status),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", c.Request.UserAgent()),
			slog.Any("request_id", reqID),
			slog.Duration("latency", latency),
			slog.Int("bytes_out", c.Writer.Size()),
		}
		if s := session.FromContext(c.Request.Context()); s != nil {
			attrs = append(attrs,
				slog.String("user_id", s.User.ID.String()),
				slog.String("venue_id", s.VenueID.String()),
			)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		// convert []slog.Attr to []any for slog.Group variadic parameter
		anyAttrs := make([]any, len(attrs))
		for i := range attrs {
			anyAttrs[i] = attrs[i]
		}

		if len(c.Errors) > 0 || status >= http.StatusInternalServerError {
			logger.Error("http", slog.Group("http", anyAttrs...))
		} else {
			logger.Info("http", slog.Group("http", anyAttrs...))
		}
	}
}

// SessionMiddleware decodes the session cookie, when present and valid,
// into the request context. It never rejects a request by itself.
func SessionMiddleware(codec *session.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(session.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		s, err := codec.Decode(raw)
		if err != nil {
			if errors.Is(err, session.ErrInvalid) {
				http.SetCookie(c.Writer, codec.ClearCookie())
			}
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(session.WithSession(c.Request.Context(), s))
		c.Next()
	}
}

// RequireRole rejects requests without a session (401) or whose role is
// below required (403).
func RequireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := session.FromContext(c.Request.Context())
		if s == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Error: "authentication required",
				Code:  CodeAuthRequired,
			})
			return
		}
		if !domain.HasPermission(s.User.Role, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Error: "insufficient role",
				Code:  CodeForbidden,
			})
			return
		}
		c.Next()
	}
}

// GuestTenant resolves the venue of a guest request and stores it in the
// request context. Requests without a usable venue id stop here with 400.
func GuestTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		venueID, err := tenant.Resolve(c.Request)
		if err != nil {
			code := CodeTenantInvalid
			if errors.Is(err, tenant.ErrRequired) {
				code = CodeTenantRequired
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Code:  code,
			})
			return
		}

		c.Request = c.Request.WithContext(tenant.WithVenue(c.Request.Context(), venueID))
		c.Next()
	}
}

// guestVenue returns the venue stored by GuestTenant.
func guestVenue(c *gin.Context) uuid.UUID {
	id, _ := tenant.VenueFrom(c.Request.Context())
	return id
}

// staffSession returns the session and its active venue. Admin routes run
// behind RequireRole, so the session is always present there.
func staffSession(c *gin.Context) (*session.Session, uuid.UUID) {
	s := session.FromContext(c.Request.Context())
	if s == nil {
		return nil, uuid.Nil
	}
	return s, s.VenueID
}

// isVenueStaff reports whether the caller holds a staff session for venueID.
func isVenueStaff(c *gin.Context, venueID uuid.UUID) bool {
	s := session.FromContext(c.Request.Context())
	return s != nil && s.VenueID == venueID && domain.HasPermission(s.User.Role, domain.RoleStaff)
}
