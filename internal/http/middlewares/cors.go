package middlewares

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
)

const corsMaxAge = 10 * 60

// CORSMiddleware answers browsers from the allow-listed origins only. A
// single "*" entry allows any origin but never with credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	anyOrigin := slices.Contains(allowedOrigins, "*")

	return func(ctx *gin.Context) {
		origin := ctx.GetHeader("Origin")
		allowed := origin != "" && (anyOrigin || slices.Contains(allowedOrigins, origin))

		if origin != "" {
			ctx.Header("Vary", "Origin")
		}

		if allowed {
			if anyOrigin {
				ctx.Header("Access-Control-Allow-Origin", "*")
			} else {
				ctx.Header("Access-Control-Allow-Origin", origin)
			}
			ctx.Header("Access-Control-Expose-Headers", "ETag, X-Request-Id, Retry-After, WWW-Authenticate")
		}

		if ctx.Request.Method != http.MethodOptions || ctx.GetHeader("Access-Control-Request-Method") == "" {
			ctx.Next()
			return
		}

		// preflight
		if !allowed {
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, If-None-Match, X-Request-Id")
		ctx.Header("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
		ctx.AbortWithStatus(http.StatusNoContent)
	}
}
