package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"restaurantservice/internal/metrics"
	"restaurantservice/internal/model"
	"restaurantservice/internal/service"
)

// userContextKey is where the middleware stores the authenticated *model.User.
const userContextKey = "user"

// Guard resolves bearer tokens to users and protects routes.
type Guard struct {
	users  service.UserService
	codec  *TokenCodec
	logger *slog.Logger
	now    func() time.Time
}

// NewGuard creates a guard backed by the user service and token codec.
func NewGuard(users service.UserService, codec *TokenCodec, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{users: users, codec: codec, logger: logger, now: time.Now}
}

// Authenticate resolves a bearer token to its user and records the login time.
// Decoding failures, unknown users and foreign tokens all yield service.ErrInvalidToken.
func (g *Guard) Authenticate(ctx context.Context, bearer string) (*model.User, error) {
	userID, tokenID, err := g.codec.Decode(bearer)
	if err != nil {
		return nil, service.ErrInvalidToken
	}

	var user *model.User
	err = g.users.WithTransaction(ctx, func(ctx context.Context, users service.UserService) error {
		u, err := users.GetUser(ctx, userID, true)
		if err != nil {
			var notFound *service.UserDoesNotExist
			if errors.As(err, &notFound) {
				return service.ErrInvalidToken
			}
			return err
		}

		if _, err := users.GetUserToken(u, tokenID); err != nil {
			var notFound *service.TokenDoesNotExist
			if errors.As(err, &notFound) {
				return service.ErrInvalidToken
			}
			return err
		}

		user, err = users.UpdateUserLastLogin(ctx, u, g.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Middleware authenticates the Authorization: Bearer header of every request.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: userContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return g.Authenticate(c.Request().Context(), auth)
		},
		SuccessHandler: func(c echo.Context) {
			metrics.ObserveAuthentication("success")
		},
		ErrorHandler: func(c echo.Context, err error) error {
			ctx := c.Request().Context()
			// A parse error not caused by the token itself is an infrastructure failure.
			if errors.Is(err, echojwt.ErrJWTInvalid) && !errors.Is(err, service.ErrInvalidToken) {
				metrics.ObserveAuthentication("error")
				g.logger.ErrorContext(ctx, "authentication failed", slog.String("error", err.Error()))
				return err
			}
			// Missing header, malformed header and rejected tokens look the same to the caller.
			metrics.ObserveAuthentication("invalid")
			g.logger.WarnContext(ctx, "authentication rejected",
				slog.String("path", c.Path()),
				slog.String("remote_ip", c.RealIP()),
			)
			return service.ErrInvalidToken
		},
	})
}

// RequireAdmin rejects authenticated users without the admin flag.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return service.ErrInvalidToken
		}
		if !user.IsAdmin {
			return service.ErrPermissionDenied
		}
		return next(c)
	}
}

// CurrentUser returns the user stored by Middleware, or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}
