package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// CacheConfig controls ETag generation and Cache-Control headers for the
// public read endpoints (the doctor directory mostly).
type CacheConfig struct {
	MaxAge             int      // Cache-Control max-age in seconds
	Private            bool     // private vs public Cache-Control
	NoStore            bool     // force no-store for sensitive endpoints
	VaryHeaders        []string // headers echoed into Vary
	ETagEnabled        bool
	ConditionalEnabled bool       // honor If-None-Match with 304
	ExcludePaths       []string   // exact paths to skip entirely
	CacheStore         CacheStore // optional response cache backend
}

// DefaultCacheConfig caches for five minutes, privately, with ETags on.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:             300,
		Private:            true,
		VaryHeaders:        []string{"Accept", "Authorization"},
		ETagEnabled:        true,
		ConditionalEnabled: true,
	}
}

// CacheStore is a response cache backend.
type CacheStore interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
	Clear()
}

// InMemoryCacheStore is a mutex-guarded map with lazy expiry. Good enough for
// a single instance; swap the CacheStore for anything shared.
type InMemoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewInMemoryCacheStore() *InMemoryCacheStore {
	return &InMemoryCacheStore{entries: make(map[string]memEntry)}
}

func (s *InMemoryCacheStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.Delete(key)
		return nil, false
	}
	return entry.data, true
}

func (s *InMemoryCacheStore) Set(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[key] = memEntry{data: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

func (s *InMemoryCacheStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *InMemoryCacheStore) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]memEntry)
	s.mu.Unlock()
}

// StartCleanup sweeps expired entries until ctx is cancelled. Optional; Get
// already expires lazily.
func (s *InMemoryCacheStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now()
				s.mu.Lock()
				for k, v := range s.entries {
					if now.After(v.expiresAt) {
						delete(s.entries, k)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}

// captureWriter buffers the body and status so middleware can look at the
// full response before anything reaches the wire. Headers pass through to the
// real writer so handler-set headers stay visible.
type captureWriter struct {
	dst    http.ResponseWriter
	body   bytes.Buffer
	status int
}

func newCaptureWriter(dst http.ResponseWriter) *captureWriter {
	return &captureWriter{dst: dst, status: http.StatusOK}
}

func (w *captureWriter) Header() http.Header         { return w.dst.Header() }
func (w *captureWriter) Write(b []byte) (int, error) { return w.body.Write(b) }
func (w *captureWriter) WriteHeader(code int)        { w.status = code }
func (w *captureWriter) Flush()                      {}

// release sends the captured status and body to the real writer.
func (w *captureWriter) release() error {
	w.dst.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.dst.Write(w.body.Bytes())
	return err
}

// capture runs next with the response buffered, restoring the original writer
// afterwards either way.
func capture(c echo.Context, next echo.HandlerFunc) (*captureWriter, error) {
	res := c.Response()
	orig := res.Writer
	buf := newCaptureWriter(orig)
	res.Writer = buf
	err := next(c)
	res.Writer = orig
	return buf, err
}

// ETagMiddleware sets ETag, Cache-Control and Vary on successful GET/HEAD
// responses and answers If-None-Match with 304.
func ETagMiddleware(cfg CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}
			if pathExcluded(req.URL.Path, cfg.ExcludePaths) {
				return next(c)
			}

			buf, err := capture(c, next)
			if err != nil {
				return err
			}
			if buf.status >= 400 {
				return buf.release()
			}

			hdr := c.Response().Header()
			hdr.Set("Cache-Control", cacheControl(cfg))
			if len(cfg.VaryHeaders) > 0 {
				hdr.Set("Vary", strings.Join(cfg.VaryHeaders, ", "))
			}

			if cfg.ETagEnabled {
				etag := weakETag(buf.body.Bytes())
				hdr.Set("ETag", etag)
				if cfg.ConditionalEnabled && etagMatches(req.Header.Get("If-None-Match"), etag) {
					c.Response().Writer.WriteHeader(http.StatusNotModified)
					return nil
				}
			}
			return buf.release()
		}
	}
}

// ConditionalRequestMiddleware answers If-Modified-Since / If-None-Match with
// 304 and failing If-Match with 412, based on headers the handler set.
func ConditionalRequestMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			buf, err := capture(c, next)
			if err != nil {
				return err
			}

			req := c.Request()
			hdr := c.Response().Header()

			if since := req.Header.Get("If-Modified-Since"); since != "" {
				if lastMod := hdr.Get("Last-Modified"); lastMod != "" {
					ims, errA := http.ParseTime(since)
					lm, errB := http.ParseTime(lastMod)
					if errA == nil && errB == nil && !lm.After(ims) {
						c.Response().Writer.WriteHeader(http.StatusNotModified)
						return nil
					}
				}
			}

			etag := hdr.Get("ETag")
			if etag != "" {
				if etagMatches(req.Header.Get("If-None-Match"), etag) {
					c.Response().Writer.WriteHeader(http.StatusNotModified)
					return nil
				}
				if match := req.Header.Get("If-Match"); match != "" && !etagMatches(match, etag) {
					c.Response().Writer.WriteHeader(http.StatusPreconditionFailed)
					return nil
				}
			}
			return buf.release()
		}
	}
}

// ResponseCacheMiddleware serves unauthenticated GET responses from the store.
// Requests carrying Authorization bypass the cache entirely; private data must
// never be served cross-user.
func ResponseCacheMiddleware(store CacheStore, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}
			if req.Header.Get("Authorization") != "" {
				c.Response().Header().Set("X-Cache", "SKIP")
				return next(c)
			}

			key := req.Method + ":" + req.URL.Path + ":" + req.Header.Get("Accept")
			if data, ok := store.Get(key); ok {
				c.Response().Header().Set("X-Cache", "HIT")
				c.Response().Writer.WriteHeader(http.StatusOK)
				_, err := c.Response().Writer.Write(data)
				return err
			}

			buf, err := capture(c, next)
			if err != nil {
				return err
			}
			if buf.status < 400 {
				store.Set(key, buf.body.Bytes(), ttl)
			}
			c.Response().Header().Set("X-Cache", "MISS")
			return buf.release()
		}
	}
}

// weakETag derives a weak validator from the body. Weak because the buffered
// body may differ byte-wise from a re-render without being semantically new.
func weakETag(body []byte) string {
	return fmt.Sprintf(`W/"%x"`, sha1.Sum(body))
}

func pathExcluded(path string, excludes []string) bool {
	for _, ex := range excludes {
		if path == ex {
			return true
		}
	}
	return false
}

func cacheControl(cfg CacheConfig) string {
	parts := make([]string, 0, 3)
	if cfg.NoStore {
		parts = append(parts, "no-store")
	}
	if cfg.Private {
		parts = append(parts, "private")
	} else {
		parts = append(parts, "public")
	}
	return strings.Join(append(parts, fmt.Sprintf("max-age=%d", cfg.MaxAge)), ", ")
}

// etagMatches compares an If-None-Match / If-Match header against an ETag
// using weak comparison. Handles comma lists and the "*" wildcard.
func etagMatches(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == want {
			return true
		}
	}
	return false
}
