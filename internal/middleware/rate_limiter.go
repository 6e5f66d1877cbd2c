package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimiter allows limit requests per window for each client IP. The
// bucket starts full and refills evenly over the window.
func RateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(limit) / window.Seconds()),
			Burst:     limit,
			ExpiresIn: window,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests. Please try again later."})
		},
	}
	return middleware.RateLimiterWithConfig(config)
}

// GlobalRateLimiter applies to every route: 300 requests per 15 minutes.
func GlobalRateLimiter() echo.MiddlewareFunc {
	return RateLimiter(300, 15*time.Minute)
}

// AuthRateLimiter guards login and registration: 20 requests per 15 minutes.
func AuthRateLimiter() echo.MiddlewareFunc {
	return RateLimiter(20, 15*time.Minute)
}
