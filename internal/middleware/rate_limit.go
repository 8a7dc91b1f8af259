package middleware

import (
	"fmt"
	"time"

	"github.com/alimikegami/fashion-store/cart-service/internal/repository"
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/alimikegami/fashion-store/cart-service/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

func rateLimitKey(userID string) string {
	return fmt.Sprintf("ratelimit:cart:%s", userID)
}

// CartRateLimit caps cart mutations per user within window. It must run after
// the JWT middleware. Requests are let through when the cache is unreachable.
func CartRateLimit(cache repository.CacheRepository, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limit <= 0 {
				return next(c)
			}

			userID, _ := utils.ExtractTokenUser(c)
			if userID == "" {
				return next(c)
			}

			count, err := cache.IncrementRateLimit(c.Request().Context(), rateLimitKey(userID), window)
			if err != nil {
				log.Ctx(c.Request().Context()).Warn().Err(err).Str("component", "CartRateLimit").Msg("rate limit skipped")
				return next(c)
			}

			if count > int64(limit) {
				return response.WriteErrorResponse(c, errs.ErrTooManyRequests, nil)
			}

			return next(c)
		}
	}
}
