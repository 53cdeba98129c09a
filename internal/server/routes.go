package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = jsonErrorHandler()

	e.Use(jsonOnly)
	e.Use(noStore)

	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)                   // Health check endpoint
	v1.GET("/orders/recent", h.RecentOrders)      // Recent confirmed orders
	v1.GET("/orders/:signature", h.Order)         // Classify a confirmed swap
	v1.GET("/fees/:signature", h.Fees)            // Fee breakdown of a transaction
	v1.GET("/launches/:signature", h.Launch)      // Token launch lookup
	v1.GET("/migrations/:signature", h.Migration) // Curve liquidity withdrawal lookup
	v1.GET("/liquidity/:signature", h.Liquidity)  // Raydium deposit lookup
	v1.GET("/pools/:mint", h.Pool)                // Raydium pool keys and price
	v1.GET("/quote", h.Quote)                     // Jupiter route quote

	// Order placement submits real transactions, so it is rate limited
	place := v1.Group("/orders")
	place.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(0.5), // 1 request every 2 seconds
		Burst:     2,               // Allow burst of 2 requests
		ExpiresIn: 2 * time.Minute, // Rate limit window
	})))
	place.POST("", h.PlaceOrder)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
