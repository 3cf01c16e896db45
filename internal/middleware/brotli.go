package middleware

import (
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

type brotliWriter struct {
	gin.ResponseWriter
	writer *brotli.Writer
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	return bw.writer.Write(data)
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.writer.Write([]byte(s))
}

// Brotli compresses JSON responses for clients that accept it. WebSocket
// upgrades pass through untouched; wrapping the writer breaks the
// handshake.
func Brotli() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}
		if !acceptsBrotli(c) {
			c.Next()
			return
		}

		c.Header("Content-Encoding", "br")
		c.Header("Vary", "Accept-Encoding")

		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			writer:         brotli.NewWriter(c.Writer),
		}
		c.Writer = bw
		defer func() {
			bw.writer.Close()
			c.Header("Content-Length", "")
		}()

		c.Next()
	}
}

func acceptsBrotli(c *gin.Context) bool {
	ae := c.GetHeader("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		if strings.TrimSpace(strings.ToLower(enc)) == "br" {
			return true
		}
	}
	return false
}
