package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurantservice/internal/model"
	"restaurantservice/internal/service"
)

const dateLayout = "2006-01-02"

// EmployeeRequest represents employment details sent with a user.
type EmployeeRequest struct {
	HireDate          *string          `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	Salary            *decimal.Decimal `json:"salary" swaggertype:"string" example:"1500.250"`
	Role              *string          `json:"role" validate:"omitempty,max=255"`
	AvailableHolidays *int             `json:"available_holidays" validate:"omitempty,min=0"`
}

// CreateUserRequest represents a user creation request.
type CreateUserRequest struct {
	Username   string           `json:"username" validate:"required,max=255"`
	Password   string           `json:"password" validate:"required"`
	FirstName  string           `json:"first_name" validate:"required,max=255"`
	LastName   string           `json:"last_name" validate:"required,max=255"`
	Email      string           `json:"email" validate:"required,email,max=255"`
	IsAdmin    bool             `json:"is_admin"`
	IsEmployee bool             `json:"is_employee"`
	Employee   *EmployeeRequest `json:"employee"`
}

// UpdateUserRequest represents a partial update made by an admin.
type UpdateUserRequest struct {
	Username   *string          `json:"username" validate:"omitempty,min=1,max=255"`
	Password   *string          `json:"password" validate:"omitempty,min=1"`
	FirstName  *string          `json:"first_name" validate:"omitempty,max=255"`
	LastName   *string          `json:"last_name" validate:"omitempty,max=255"`
	Email      *string          `json:"email" validate:"omitempty,email,max=255"`
	IsAdmin    *bool            `json:"is_admin"`
	IsEmployee *bool            `json:"is_employee"`
	Employee   *EmployeeRequest `json:"employee"`
}

// UpdateMeRequest represents a partial update of the caller's own profile.
// Privilege flags and employment details are left to admins.
type UpdateMeRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=255"`
	Password  *string `json:"password" validate:"omitempty,min=1"`
	FirstName *string `json:"first_name" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,max=255"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
}

// EmployeeResponse is the public view of employment details.
type EmployeeResponse struct {
	HireDate          *string         `json:"hire_date"`
	Salary            decimal.Decimal `json:"salary" swaggertype:"string" example:"1500.250"`
	Role              string          `json:"role"`
	AvailableHolidays *int            `json:"available_holidays"`
}

// UserResponse is the public view of a user. The password is never included.
type UserResponse struct {
	UserID       uuid.UUID         `json:"user_id"`
	Username     string            `json:"username"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	Email        string            `json:"email"`
	IsAdmin      bool              `json:"is_admin"`
	IsEmployee   bool              `json:"is_employee"`
	LastLogin    *time.Time        `json:"last_login"`
	RegisteredOn time.Time         `json:"registered_on"`
	Employee     *EmployeeResponse `json:"employee,omitempty"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// UsersEnvelope wraps a list of users.
type UsersEnvelope struct {
	Users []UserResponse `json:"users"`
}

// TokenResponse carries a stored token and its bearer value.
type TokenResponse struct {
	ID          uuid.UUID `json:"id"`
	AccessToken string    `json:"access-token"`
}

// TokenEnvelope wraps a token.
type TokenEnvelope struct {
	Token TokenResponse `json:"token"`
}

func newUserResponse(u *model.User) UserResponse {
	resp := UserResponse{
		UserID:       u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		IsAdmin:      u.IsAdmin,
		IsEmployee:   u.IsEmployee,
		LastLogin:    u.LastLogin,
		RegisteredOn: u.RegisteredOn,
	}
	if e := u.Employee; e != nil {
		resp.Employee = &EmployeeResponse{
			Salary:            e.Salary,
			Role:              e.Role,
			AvailableHolidays: e.AvailableHolidays,
		}
		if e.HireDate != nil {
			d := e.HireDate.Format(dateLayout)
			resp.Employee.HireDate = &d
		}
	}
	return resp
}

func newUsersResponse(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return out
}

func (r *EmployeeRequest) toInput() (*service.EmployeeInput, error) {
	if r == nil {
		return nil, nil
	}
	in := &service.EmployeeInput{
		Salary:            r.Salary,
		Role:              r.Role,
		AvailableHolidays: r.AvailableHolidays,
	}
	if r.HireDate != nil {
		d, err := time.Parse(dateLayout, *r.HireDate)
		if err != nil {
			return nil, fmt.Errorf("invalid hire_date: %w", err)
		}
		in.HireDate = &d
	}
	return in, nil
}

func (r *CreateUserRequest) toInput() (service.CreateUserInput, error) {
	employee, err := r.Employee.toInput()
	if err != nil {
		return service.CreateUserInput{}, err
	}
	return service.CreateUserInput{
		Username:   r.Username,
		Password:   r.Password,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		IsAdmin:    r.IsAdmin,
		IsEmployee: r.IsEmployee,
		Employee:   employee,
	}, nil
}

func (r *UpdateUserRequest) toInput() (service.UpdateUserInput, error) {
	employee, err := r.Employee.toInput()
	if err != nil {
		return service.UpdateUserInput{}, err
	}
	return service.UpdateUserInput{
		Username:   r.Username,
		Password:   r.Password,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		IsAdmin:    r.IsAdmin,
		IsEmployee: r.IsEmployee,
		Employee:   employee,
	}, nil
}

func (r *UpdateMeRequest) toInput() service.UpdateUserInput {
	return service.UpdateUserInput{
		Username:  r.Username,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}
}
