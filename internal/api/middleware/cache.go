package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/clinicamia/agenda-service/internal/domain/providers"
)

// CacheConfig holds cache configuration for specific routes
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware provides HTTP response caching
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
}

// NewCacheMiddleware creates a new cache middleware
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return &CacheMiddleware{
		cache: cache,
		routeConfigs: map[string]CacheConfig{
			// Queue reads are cached at the service layer with their own TTL,
			// so only follow-up reads go through the HTTP cache.
			"/api/follow-ups/": {TTLSeconds: 60, Enabled: true}, // 1 minute (prefix match)
			"/api/patients/":   {TTLSeconds: 60, Enabled: true}, // 1 minute
		},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if caching is disabled
		if m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		// Writes are never cached, but a successful mutation must drop the
		// cached detail read so the next GET reflects the new state
		if r.Method != http.MethodGet {
			recorder := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           &bytes.Buffer{},
			}
			next.ServeHTTP(recorder, r)
			if recorder.statusCode < http.StatusMultipleChoices {
				m.invalidateMutated(r)
			}
			return
		}

		// Get cache config for this route
		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		// Generate cache key
		cacheKey := m.generateCacheKey(r)

		// Try to get from cache
		if cached, err := m.cache.Get(r.Context(), cacheKey); err == nil {
			log.Printf("Cache HIT: %s", cacheKey)
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}

		// Cache miss - capture response
		log.Printf("Cache MISS: %s", cacheKey)
		w.Header().Set("X-Cache", "MISS")

		// Create response recorder
		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}

		// Call next handler
		next.ServeHTTP(recorder, r)

		// Only cache successful responses
		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			// Store in cache
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				log.Printf("Failed to cache response for %s: %v", cacheKey, err)
			} else {
				log.Printf("Cached response for %s (TTL: %ds)", cacheKey, config.TTLSeconds)
			}
		}
	})
}

// getRouteConfig gets the cache configuration for a route
func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	// Exact match first
	if config, exists := m.routeConfigs[path]; exists {
		return config
	}

	// Prefix match for dynamic routes (e.g., /api/facilities/{id})
	for pattern, config := range m.routeConfigs {
		if strings.HasPrefix(path, pattern) {
			return config
		}
	}

	// Default: no caching
	return CacheConfig{Enabled: false}
}

// generateCacheKey generates a cache key from the request
func (m *CacheMiddleware) generateCacheKey(r *http.Request) string {
	return hashCacheKey(r.Method, r.URL.Path, r.URL.RawQuery)
}

func hashCacheKey(method, path, rawQuery string) string {
	// Include method, path, and query parameters
	key := fmt.Sprintf("%s:%s", method, path)
	if rawQuery != "" {
		key += "?" + rawQuery
	}

	// Hash the key to keep it reasonable length
	hash := sha256.Sum256([]byte(key))
	return "http:cache:" + hex.EncodeToString(hash[:])
}

// followUpMutations are the path actions that change a follow-up's state
var followUpMutations = map[string]bool{
	"complete":    true,
	"appointment": true,
	"cancel":      true,
}

// invalidateMutated drops the cached detail read for the follow-up a
// mutation just changed
func (m *CacheMiddleware) invalidateMutated(r *http.Request) {
	resource, ok := mutatedFollowUpPath(r.URL.Path)
	if !ok {
		return
	}
	key := hashCacheKey(http.MethodGet, resource, "")
	if err := m.cache.Delete(r.Context(), key); err != nil {
		log.Printf("Failed to invalidate cache for %s: %v", resource, err)
	}
}

// mutatedFollowUpPath maps a mutation path like /api/follow-ups/{id}/cancel
// to the detail path whose cached response it stales
func mutatedFollowUpPath(path string) (string, bool) {
	if !strings.HasPrefix(path, "/api/follow-ups/") {
		return "", false
	}
	rest := strings.TrimPrefix(path, "/api/follow-ups/")
	parts := strings.Split(rest, "/")
	if len(parts) == 2 && parts[0] != "" && followUpMutations[parts[1]] {
		return "/api/follow-ups/" + parts[0], true
	}
	return "", false
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

// WriteHeader captures the status code
func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

// Write captures the response body and writes to the client
func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}

	// Write to buffer for caching
	r.body.Write(data)

	// Write to client
	return r.ResponseWriter.Write(data)
}

// CacheMiddlewareWithConfig creates a cache middleware with custom config
func CacheMiddlewareWithConfig(cache providers.CacheProvider, configs map[string]CacheConfig) func(http.Handler) http.Handler {
	m := &CacheMiddleware{
		cache:        cache,
		routeConfigs: configs,
	}
	return m.Middleware
}

