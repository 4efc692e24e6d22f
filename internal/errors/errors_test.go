package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurantservice/internal/service"
)

func TestMapErrorToHTTP(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "user already exists",
			err:         &service.UserAlreadyExists{Detail: "Key (username)=(a) already exists."},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "User already exists. Key (username)=(a) already exists.",
		},
		{
			name:        "user does not exist",
			err:         fmt.Errorf("lookup: %w", &service.UserDoesNotExist{ID: id}),
			wantStatus:  http.StatusNotFound,
			wantMessage: fmt.Sprintf("User with id %s was not found.", id),
		},
		{
			name:       "token does not exist",
			err:        &service.TokenDoesNotExist{ID: id},
			wantStatus: http.StatusNotFound,
		},
		{
			name:        "invalid token",
			err:         service.ErrInvalidToken,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Token is not valid.",
		},
		{
			name:        "permission denied",
			err:         service.ErrPermissionDenied,
			wantStatus:  http.StatusForbidden,
			wantMessage: "You don't have permission to access this resource.",
		},
		{
			name:       "not healthy",
			err:        fmt.Errorf("%w: db", service.ErrAppIsNotHealthy),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:        "echo error",
			err:         echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"),
			wantStatus:  http.StatusMethodNotAllowed,
			wantMessage: "nope",
		},
		{
			name:        "unexpected error hides details",
			err:         errors.New("dial tcp 10.0.0.1:3306: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got.Message)
			}
		})
	}
}

func TestNewErrorHandler_WritesEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/", nil), rec)

	NewErrorHandler(nil)(service.ErrInvalidToken, c)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Token is not valid.", body.Error.Message)
	assert.Equal(t, http.StatusForbidden, body.Error.Code)
}
