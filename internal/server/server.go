package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront-api/internal/cart"
	"storefront-api/internal/config"
	"storefront-api/internal/metrics"
	custommiddleware "storefront-api/internal/middleware"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
	"storefront-api/internal/transport"
	"storefront-api/internal/wishlist"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        *sql.DB
	redis     *redis.Client
	evictDone chan struct{}
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client, appMetrics *metrics.Metrics) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.SessionMiddleware())
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(requestMetrics(appMetrics))

	// All endpoints share a per-session fixed-window rate limit
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	zoneRepo := repository.NewShippingZoneRepository(db)
	blockedRepo := repository.NewNonServiceableRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	shippingService := service.NewShippingService(zoneRepo, blockedRepo)
	orderService := service.NewOrderService(orderRepo)

	// Session state lives in Redis so carts survive restarts
	ttl := time.Duration(cfg.Redis.CartTTL) * time.Hour
	cartManager := cart.NewManager(cart.NewRedisStorage(redisClient, "cart", ttl))
	wishlistManager := wishlist.NewManager(wishlist.NewRedisStorage(redisClient, "wishlist", ttl))

	// Evict in-process session state on the same clock as the Redis keys so
	// the manager maps and the active-carts gauge track live sessions only.
	evictDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-evictDone:
				return
			case <-ticker.C:
				evicted := cartManager.EvictIdle(ttl)
				wishlistManager.EvictIdle(ttl)
				if evicted > 0 {
					logger.Info("Evicted idle cart sessions", zap.Int("count", evicted))
				}
			}
		}
	}()

	// Initialize handlers
	shippingHandler := transport.NewShippingHandler(shippingService, appMetrics, logger)
	cartHandler := transport.NewCartHandler(cartManager, appMetrics, logger)
	wishlistHandler := transport.NewWishlistHandler(wishlistManager, logger)
	catalogHandler := transport.NewCatalogHandler(productRepo, categoryRepo, brandRepo, logger)
	orderHandler := transport.NewOrderHandler(orderService, appMetrics, logger)
	notificationHandler := transport.NewNotificationHandler(notificationRepo, logger)

	// Admin routes require a valid token with the admin role
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	shippingHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	cartHandler.RegisterRoutes(router)
	wishlistHandler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	notificationHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		evictDone: evictDone,
	}

	return server
}

// requestMetrics records count and latency for every request under the
// matched chi route pattern.
func requestMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			m.RecordRequest(r.Context(), route, ww.Status(), start)
		})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	close(s.evictDone)

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
