package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/goaltree/internal/contract"
	"github.com/alexanderramin/goaltree/internal/db"
	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/alexanderramin/goaltree/internal/observability"
	"github.com/alexanderramin/goaltree/internal/repository"
	"github.com/gin-gonic/gin"
)

const principalKey = "goaltree_principal"

// SetPrincipal stores the authenticated identity in the gin context.
func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal returns the identity stored by AuthMiddleware.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// AuthMiddleware resolves "Authorization: Bearer <user-id>" against the users
// table. Missing or unknown users get 401.
func AuthMiddleware(database db.DBTX) gin.HandlerFunc {
	users := repository.NewSQLiteUserRepo(database)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		u, err := users.GetByID(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				abortUnauthorized(c, "unknown user")
				return
			}
			writeError(c, err)
			return
		}
		SetPrincipal(c, domain.Principal{UserID: u.ID, Role: u.Role})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, contract.ErrorResponse{
		Error: msg,
		Code:  contract.CodeUnauthorized,
	})
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http_request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// RequestMetrics records request counts and latency by matched route.
func RequestMetrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
