package httptransport

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/craftline/backoffice/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const sessionCookie = "admin_session"

// Observability attaches a request id, a request-scoped logger, and RED
// metrics to every request. Route labels use the gin template, keeping
// cardinality bounded.
func Observability(base *zap.Logger, requests *prometheus.CounterVec, duration *prometheus.HistogramVec) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header("X-Request-ID", rid)

		reqLogger := base.With(zap.String("request_id", rid))
		ctx := logging.ContextWithLogger(c.Request.Context(), reqLogger)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		requests.WithLabelValues(c.Request.Method, route, status).Inc()
		duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// sessionResolver is the slice of AdminService the auth middleware needs.
type sessionResolver interface {
	SessionEmail(ctx context.Context, token string) (string, error)
}

// RequireAdmin gates admin routes on a valid session token, taken from the
// session cookie or a bearer Authorization header.
func RequireAdmin(sessions sessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		email, err := sessions.SessionEmail(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set("admin_email", email)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(sessionCookie); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
