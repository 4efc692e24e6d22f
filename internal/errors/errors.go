package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"restaurantservice/internal/service"
)

const (
	msgInvalidToken     = "Token is not valid."
	msgPermissionDenied = "You don't have permission to access this resource."
	msgInternal         = "Internal server error."
)

// ErrorDetails carries the message and HTTP status of a failed request.
type ErrorDetails struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Message: e.Message,
			Code:    e.StatusCode,
		},
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		httpErr   *HTTPError
		echoErr   *echo.HTTPError
		exists    *service.UserAlreadyExists
		userMiss  *service.UserDoesNotExist
		tokenMiss *service.TokenDoesNotExist
	)

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &exists):
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("User already exists. %s", exists.Detail))
	case errors.As(err, &userMiss):
		return NewHTTPError(http.StatusNotFound, fmt.Sprintf("User with id %s was not found.", userMiss.ID))
	case errors.As(err, &tokenMiss):
		return NewHTTPError(http.StatusNotFound, fmt.Sprintf("Token with id %s was not found.", tokenMiss.ID))
	case errors.Is(err, service.ErrInvalidToken):
		return NewHTTPError(http.StatusForbidden, msgInvalidToken)
	case errors.Is(err, service.ErrPermissionDenied):
		return NewHTTPError(http.StatusForbidden, msgPermissionDenied)
	case errors.Is(err, service.ErrAppIsNotHealthy):
		return NewHTTPError(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
	case errors.As(err, &echoErr):
		msg := http.StatusText(echoErr.Code)
		if s, ok := echoErr.Message.(string); ok && s != "" {
			msg = s
		}
		return NewHTTPError(echoErr.Code, msg)
	default:
		return NewHTTPError(http.StatusInternalServerError, msgInternal)
	}
}

// StatusCode returns the status err is rendered with.
func StatusCode(err error) int {
	return MapErrorToHTTP(err).StatusCode
}

// NewErrorHandler renders every error returned by handlers and middleware in the
// ErrorResponse envelope. Unexpected errors are logged; their text is not sent.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := MapErrorToHTTP(err)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", slog.String("error", writeErr.Error()))
		}
	}
}
