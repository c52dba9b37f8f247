package api

import (
	"strings"
	"time"

	"github.com/Domenick1991/skydispatch/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionKey = "session"
	tokenKey   = "token"
)

// Authenticator resolves bearer tokens to sessions.
type Authenticator interface {
	Authenticate(token string) (domain.Session, error)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func requireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		sess, err := auth.Authenticate(token)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, sess)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func requireAdmin(c *gin.Context) {
	if !currentSession(c).IsAdmin() {
		writeError(c, domain.ErrForbidden)
		c.Abort()
		return
	}
	c.Next()
}

func currentSession(c *gin.Context) domain.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(domain.Session); ok {
			return s
		}
	}
	return domain.Session{}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			log.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		log.Debug("request", fields...)
	}
}
