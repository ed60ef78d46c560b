package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"orgatlas.app/api-server/internal/cache"
	"orgatlas.app/api-server/internal/http/middleware"
)

// failingStore simulates an unavailable cache backend.
type failingStore struct{}

func (failingStore) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, errors.New("cache unavailable")
}

func (failingStore) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return errors.New("cache unavailable")
}

var _ = Describe("ResponseCache", func() {
	var (
		mr          *miniredis.Miniredis
		store       cache.Store
		engine      *gin.Engine
		handlerHits int
	)

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())

		store = cache.NewRedisStore(cache.NewRedisClient(mr.Addr(), "", 0))
		handlerHits = 0

		engine = gin.New()
		engine.GET("/organizations", middleware.ResponseCache(store, time.Minute), func(c *gin.Context) {
			handlerHits++
			c.JSON(http.StatusOK, gin.H{"page": c.Query("offset")})
		})
		engine.GET("/missing", middleware.ResponseCache(store, time.Minute), func(c *gin.Context) {
			handlerHits++
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	})

	AfterEach(func() {
		mr.Close()
	})

	do := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, target, nil)
		engine.ServeHTTP(rec, req)
		return rec
	}

	It("serves the second identical request from the cache", func() {
		first := do("/organizations")
		Expect(first.Code).To(Equal(http.StatusOK))
		Expect(first.Header().Get("X-Cache")).To(BeEmpty())

		second := do("/organizations")
		Expect(second.Code).To(Equal(http.StatusOK))
		Expect(second.Header().Get("X-Cache")).To(Equal("HIT"))
		Expect(second.Body.String()).To(Equal(first.Body.String()))
		Expect(handlerHits).To(Equal(1))
	})

	It("keys on the full request URI including the query string", func() {
		do("/organizations?offset=0")
		rec := do("/organizations?offset=10")

		Expect(rec.Header().Get("X-Cache")).To(BeEmpty())
		Expect(handlerHits).To(Equal(2))
	})

	It("does not cache non-200 responses", func() {
		do("/missing")
		do("/missing")

		Expect(handlerHits).To(Equal(2))
	})

	It("expires entries after the TTL", func() {
		do("/organizations")
		mr.FastForward(2 * time.Minute)
		rec := do("/organizations")

		Expect(rec.Header().Get("X-Cache")).To(BeEmpty())
		Expect(handlerHits).To(Equal(2))
	})

	It("degrades to the handler when the cache is unavailable", func() {
		engine = gin.New()
		engine.GET("/organizations", middleware.ResponseCache(failingStore{}, time.Minute), func(c *gin.Context) {
			handlerHits++
			c.JSON(http.StatusOK, gin.H{"page": "0"})
		})

		rec := do("/organizations")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(handlerHits).To(Equal(1))
	})
})
