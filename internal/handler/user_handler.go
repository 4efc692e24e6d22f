package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"restaurantservice/internal/auth"
	apperrors "restaurantservice/internal/errors"
	"restaurantservice/internal/model"
	"restaurantservice/internal/service"
)

// TokenEncoder turns a stored token into its bearer value.
type TokenEncoder interface {
	Encode(userID, tokenID uuid.UUID) (string, error)
}

// UserHandler bundles the user, profile and token endpoints.
type UserHandler struct {
	users  service.UserService
	tokens TokenEncoder
}

// NewUserHandler creates a handler layer.
func NewUserHandler(users service.UserService, tokens TokenEncoder) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/ [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.CreateUser(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserEnvelope{User: newUserResponse(user)})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserEnvelope
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Request().Context(), id, false)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: newUserResponse(user)})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UsersEnvelope
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/ [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UsersEnvelope{Users: newUsersResponse(users)})
}

// UpdateUser godoc
// @Summary Update user
// @Description Only the fields present in the body are changed.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput()
	if err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: newUserResponse(user)})
}

// CreateToken godoc
// @Summary Issue an API token for a user
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 201 {object} TokenEnvelope
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/token [post]
func (h *UserHandler) CreateToken(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return err
	}

	// The owner is locked so a concurrent delete cannot strand the insert.
	var token *model.Token
	err = h.users.WithTransaction(c.Request().Context(), func(ctx context.Context, users service.UserService) error {
		user, err := users.GetUser(ctx, id, true)
		if err != nil {
			return err
		}
		token, err = users.CreateUserToken(ctx, user)
		return err
	})
	if err != nil {
		return err
	}
	access, err := h.tokens.Encode(id, token.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, TokenEnvelope{Token: TokenResponse{ID: token.ID, AccessToken: access}})
}

// GetMe godoc
// @Summary Get the caller's profile
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserEnvelope
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/me/ [get]
func (h *UserHandler) GetMe(c echo.Context) error {
	me := auth.CurrentUser(c)
	if me == nil {
		return service.ErrInvalidToken
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: newUserResponse(me)})
}

// UpdateMe godoc
// @Summary Update the caller's profile
// @Tags me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateMeRequest true "Fields to change"
// @Success 200 {object} UserEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/me/ [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	me := auth.CurrentUser(c)
	if me == nil {
		return service.ErrInvalidToken
	}
	var req UpdateMeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.update(c.Request().Context(), me.ID, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: newUserResponse(user)})
}

// update locks the user row and applies in within one transaction.
func (h *UserHandler) update(ctx context.Context, id uuid.UUID, in service.UpdateUserInput) (*model.User, error) {
	var updated *model.User
	err := h.users.WithTransaction(ctx, func(ctx context.Context, users service.UserService) error {
		user, err := users.GetUser(ctx, id, true)
		if err != nil {
			return err
		}
		updated, err = users.UpdateUserInfo(ctx, user, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// userIDParam parses the :id path parameter. A malformed id cannot name a user,
// so it is reported as not found.
func userIDParam(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewHTTPError(http.StatusNotFound, fmt.Sprintf("User with id %s was not found.", raw))
	}
	return id, nil
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return apperrors.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
