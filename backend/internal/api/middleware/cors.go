package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
// allowOrigins 中以 "*" 结尾的项按前缀匹配，如 "http://localhost:*" 放行任意本地端口
func CORS(allowOrigins []string) gin.HandlerFunc {
	exact := make(map[string]bool, len(allowOrigins))
	var prefixes []string
	for _, o := range allowOrigins {
		o = strings.TrimRight(o, "/")
		if strings.HasSuffix(o, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(o, "*"))
			continue
		}
		exact[o] = true
	}

	allowed := func(origin string) bool {
		if origin == "" {
			return false
		}
		if exact[origin] {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(origin, p) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if allowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
