package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/stream-summaries/internal/api/handlers"
	"github.com/andresuchdata/stream-summaries/internal/api/middleware"
	"github.com/andresuchdata/stream-summaries/internal/config"
	"github.com/andresuchdata/stream-summaries/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var availableEndpoints = []string{
	"GET /health",
	"GET /networks",
	"GET /summaries",
	"GET /summaries/latest",
	"GET /summaries/:id (protected)",
}

type Services struct {
	SummaryService *service.SummaryService
}

type RouterOptions struct {
	AllowedOrigins []string
	Payment        config.PaymentConfig
	DefaultLocale  string
	Logger         zerolog.Logger
}

func NewRouter(services *Services, opts RouterOptions) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger(opts.Logger))
	router.Use(middleware.Recovery(opts.Logger))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-PAYMENT"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	normalizedOrigins, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
	if allowAll || len(normalizedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = normalizedOrigins
	}
	router.Use(cors.New(corsConfig))

	healthHandler := handlers.NewHealthHandler(opts.Payment)
	router.GET("/health", healthHandler.Health)
	router.GET("/networks", healthHandler.Networks)

	if services != nil && services.SummaryService != nil {
		summaryHandler := handlers.NewSummaryHandler(services.SummaryService, opts.Payment, opts.DefaultLocale)
		summaries := router.Group("/summaries")
		{
			summaries.GET("", summaryHandler.ListSummaries)
			summaries.GET("/latest", summaryHandler.GetLatest)
			summaries.GET("/:id", summaryHandler.GetSummary)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success":            false,
			"error":              "Endpoint not found",
			"availableEndpoints": availableEndpoints,
		})
	})

	return router
}

// NewServer wraps the router with the configured port and timeouts.
func NewServer(router http.Handler, cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
