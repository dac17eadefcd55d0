package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hydrangea-games/fishpond/internal/logger"
)

// Abuse thresholds. All per-IP counters reset together every window.
const (
	abuseWindow        = 5 * time.Minute
	requestsPerWindow  = 1000
	authAlertThreshold = 5
	rateAlertEvery     = 100
)

// ClientMonitor keeps per-IP counters for the current window: failed key
// checks and request totals. One instance backs both the auth and the rate
// middleware so a noisy client shows up in a single place.
type ClientMonitor struct {
	mu          sync.Mutex
	authFails   map[string]int
	requests    map[string]int
	windowStart time.Time
}

func NewClientMonitor() *ClientMonitor {
	return &ClientMonitor{
		authFails:   make(map[string]int),
		requests:    make(map[string]int),
		windowStart: time.Now(),
	}
}

// rollWindow clears every counter once the window has elapsed. Callers hold
// the mutex.
func (m *ClientMonitor) rollWindow() {
	if time.Since(m.windowStart) > abuseWindow {
		m.authFails = make(map[string]int)
		m.requests = make(map[string]int)
		m.windowStart = time.Now()
	}
}

// NoteAuthFailure counts a rejected API key and alerts on repeat offenders.
func (m *ClientMonitor) NoteAuthFailure(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollWindow()
	m.authFails[ip]++
	if m.authFails[ip] >= authAlertThreshold {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", m.authFails[ip])
	}
}

// Allow counts the request and reports whether the client is still inside
// its window budget. Blocked clients are logged sparsely to keep a flood
// from flooding the log too.
func (m *ClientMonitor) Allow(ip string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rollWindow()
	m.requests[ip]++
	if m.requests[ip] <= requestsPerWindow {
		return true
	}
	if m.requests[ip]%rateAlertEvery == 0 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "count_in_window", m.requests[ip])
	}
	return false
}

// isPublic reports whether the path is served without an API key.
func isPublic(path string) bool {
	for _, prefix := range PublicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AuthMiddleware gates every non-public route behind the shared API key.
func AuthMiddleware(apiKey string, trustedProxies []string, monitor *ClientMonitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(HeaderAPIKey)

			// Constant time compare so the key cannot be probed byte by byte.
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				ip := clientIP(r, trustedProxies)
				monitor.NoteAuthFailure(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", provided != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware turns away clients past their window budget.
func RateLimitMiddleware(trustedProxies []string, monitor *ClientMonitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !monitor.Allow(clientIP(r, trustedProxies)) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware caps request body size. Command payloads are a
// few hundred bytes, so anything near the cap is garbage.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP resolves the caller's address. X-Forwarded-For is honored only
// when the direct peer is a listed proxy, and then only its rightmost
// entry: the hop that proxy actually saw.
func clientIP(r *http.Request, trustedProxies []string) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if !slices.Contains(trustedProxies, ip) {
		return ip
	}
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		hops := strings.Split(fwd, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	return ip
}

// SecurityHeadersMiddleware sets the standard browser hardening headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)
			next.ServeHTTP(w, r)
		})
	}
}
