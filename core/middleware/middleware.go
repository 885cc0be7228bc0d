package middleware

import (
	stderrors "errors"
	"strconv"
	"time"

	"cfp-api/core/constants"
	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/logger"
	"cfp-api/core/metrics"
	"cfp-api/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	responses controller.BaseController
}

func NewMiddleware() *Middleware {
	return &Middleware{responses: controller.NewBaseController()}
}

// AuthMiddleware requires a valid bearer access token and stores its
// claims under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, appErr := parseClaims(c)
			if appErr != nil {
				return m.responses.ErrorResponse(c, appErr)
			}
			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// OptionalAuthMiddleware stores claims when a valid token is sent and lets
// anonymous requests through.
func (m *Middleware) OptionalAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return next(c)
			}
			if claims, appErr := parseClaims(c); appErr == nil {
				c.Set(constants.ContextTokenData, claims)
			}
			return next(c)
		}
	}
}

func parseClaims(c echo.Context) (*utils.TokenClaims, *errors.AppError) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Missing authorization header", nil)
	}
	token, err := utils.GetTokenFromHeader(header)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid authorization header format", err)
	}
	claims, err := utils.ValidateAndParseToken(token)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token has expired", err)
		}
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token", err)
	}
	if claims.Scope != constants.ScopeTokenAccess {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token scope", nil)
	}
	return claims, nil
}

// RequestLogger logs one line per request and feeds the HTTP collectors.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)

			metrics.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPDuration.WithLabelValues(req.Method, route).Observe(elapsed.Seconds())

			logger.Info("HTTP",
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency_ms", elapsed.Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	}
}
