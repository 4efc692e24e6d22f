package router

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"restaurantservice/internal/auth"
	apperrors "restaurantservice/internal/errors"
	"restaurantservice/internal/handler"
	"restaurantservice/internal/metrics"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	guard *auth.Guard,
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	logger *slog.Logger,
) {
	if logger == nil {
		logger = slog.Default()
	}

	e.HTTPErrorHandler = apperrors.NewErrorHandler(logger)
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	// Outside Recover so requests that panic are counted as 500s.
	e.Use(metrics.Middleware(apperrors.StatusCode))
	e.Use(middleware.Recover())

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	users := e.Group("/users", guard.Middleware())

	// Static /me routes take precedence over /:id.
	both(users.GET, "/me", userHandler.GetMe)
	both(users.PATCH, "/me", userHandler.UpdateMe)

	admin := guard.RequireAdmin
	both(users.POST, "", userHandler.CreateUser, admin)
	both(users.GET, "", userHandler.ListUsers, admin)
	both(users.GET, "/:id", userHandler.GetUser, admin)
	both(users.PATCH, "/:id", userHandler.UpdateUser, admin)
	both(users.POST, "/:id/token", userHandler.CreateToken, admin)
}

type routeFunc func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

// both registers path with and without a trailing slash.
func both(add routeFunc, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	add(path, h, m...)
	add(path+"/", h, m...)
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
