package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/todohub/internal/actorctx"
	"github.com/geocoder89/todohub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// AuthMetrics is satisfied by *observability.Prom; nil disables counting.
type AuthMetrics interface {
	IncAuth(event, result string)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	metrics  AuthMetrics
}

func NewAuthMiddleware(verifier TokenVerifier, metrics AuthMetrics) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, metrics: metrics}
}

const unauthorizedMessage = "Could not validate user."

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			m.count("missing")
			abortUnauthorized(c)
			return
		}

		id, err := m.verifier.Verify(raw)
		if err != nil {
			m.count("rejected")
			abortUnauthorized(c)
			return
		}

		m.count("ok")
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth attaches the identity when a valid bearer token is present
// and otherwise lets the request through anonymously.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if ok {
			if id, err := m.verifier.Verify(raw); err == nil {
				setIdentity(c, id)
			}
		}
		c.Next()
	}
}

func (m *AuthMiddleware) count(result string) {
	if m.metrics != nil {
		m.metrics.IncAuth("token_verify", result)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")

	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(CtxIdentity, id)
	c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	abortWithError(c, http.StatusUnauthorized, "unauthorized", unauthorizedMessage)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)

	body := gin.H{
		"code":    code,
		"message": message,
	}
	if s, ok := reqID.(string); ok && s != "" {
		body["requestId"] = s
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// IdentityFromContext returns the identity stored by RequireAuth or
// OptionalAuth.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
