package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hydrangea-games/fishpond/internal/database"
	"github.com/hydrangea-games/fishpond/internal/game"
	"github.com/hydrangea-games/fishpond/internal/handler"
	"github.com/hydrangea-games/fishpond/internal/logger"
	"github.com/hydrangea-games/fishpond/internal/metrics"
)

type Server struct {
	httpServer  *http.Server
	dbPool      database.Pool
	gameService game.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, gameService game.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack, outermost to innermost
	monitor := NewClientMonitor()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, monitor))
	r.Use(RateLimitMiddleware(trustedProxies, monitor))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		fishingHandler := handler.NewFishingHandler(gameService)
		r.Route("/pond", func(r chi.Router) {
			r.Get("/status", fishingHandler.HandleStatus)
			r.Get("/spawns", fishingHandler.HandleSimulateSpawn)
			r.Post("/catch", fishingHandler.HandleCatch)
		})

		shopHandler := handler.NewShopHandler(gameService)
		r.Route("/shop", func(r chi.Router) {
			r.Post("/gacha", shopHandler.HandleGacha)
			r.Post("/mystery-gacha", shopHandler.HandleMysteryGacha)
			r.Post("/buy", shopHandler.HandleBuy)
			r.Post("/gift", shopHandler.HandleGift)
		})

		itemHandler := handler.NewItemHandler(gameService)
		r.Route("/item", func(r chi.Router) {
			r.Post("/use", itemHandler.HandleUseItem)
			r.Post("/craft", itemHandler.HandleCraft)
		})

		townHandler := handler.NewTownHandler(gameService)
		r.Route("/town", func(r chi.Router) {
			r.Get("/buildings", townHandler.HandleBuildingStatus)
			r.Post("/buildings/materials", townHandler.HandleAddMaterial)
			r.Post("/buildings/upgrade", townHandler.HandleUpgradeBuilding)
			r.Get("/pot", townHandler.HandlePotStatus)
			r.Post("/pot/add", townHandler.HandlePotAdd)
			r.Post("/sign-in", townHandler.HandleSignIn)
		})

		battleHandler := handler.NewBattleHandler(gameService)
		r.Route("/battle", func(r chi.Router) {
			r.Get("/status", battleHandler.HandleStatus)
			r.Post("/join", battleHandler.HandleJoin)
			r.Post("/leave", battleHandler.HandleLeave)
			r.Post("/equip", battleHandler.HandleEquip)
			r.Post("/start", battleHandler.HandleStart)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:      dbPool,
		gameService: gameService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, "Authorization") {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
