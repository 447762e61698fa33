package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freeup86/resource-pulse-sub001/pkg/response"
)

// BodyLimit 请求体大小限制
// 声明长度超限直接 413；分块传输的请求体由 MaxBytesReader 截断，读取方得到绑定错误
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
