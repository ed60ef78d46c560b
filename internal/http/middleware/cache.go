package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orgatlas.app/api-server/internal/cache"
	"orgatlas.app/api-server/internal/metrics"
)

type cachedResponse struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	Status      int    `json:"status"`
}

// ResponseCache serves successful GET responses from the cache store. It runs
// after authentication, so a hit never bypasses the key check. Cache failures
// degrade to a normal query, never to an error response.
func ResponseCache(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "http:" + c.Request.URL.RequestURI()

		raw, hit, err := store.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "cache read failed", "error", err, "key", key)
		}
		if hit {
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.CacheHitsTotal.Inc()
				c.Header("X-Cache", "HIT")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		}
		metrics.CacheMissesTotal.Inc()

		capture := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = capture

		c.Next()

		if capture.Status() != http.StatusOK {
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status:      capture.Status(),
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, key, payload, ttl); err != nil {
			slog.WarnContext(ctx, "cache write failed", "error", err, "key", key)
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
