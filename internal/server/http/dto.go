package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
)

const maxBodyBytes = 1 << 20

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r signUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, services.UserNameRules...),
		validation.Field(&r.Password, services.PasswordRules...),
	)
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r signInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r createUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, services.UserNameRules...),
		validation.Field(&r.Password, services.PasswordRules...),
		validation.Field(&r.Role, services.RoleRules...),
	)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (r updateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, optional(r.Username, services.UserNameRules)...),
		validation.Field(&r.Password, optional(r.Password, services.PasswordRules)...),
		validation.Field(&r.Role, optional(r.Role, append([]validation.Rule{validation.Required}, services.RoleRules...))...),
	)
}

func (r updateUserRequest) toUpdate() models.UserUpdate {
	upd := models.UserUpdate{UserName: r.Username, Password: r.Password}
	if r.Role != nil {
		role, _ := models.ParseRole(*r.Role)
		upd.Role = &role
	}
	return upd
}

// optional applies rules only to fields present in the request.
func optional(p *string, rules []validation.Rule) []validation.Rule {
	if p == nil {
		return nil
	}
	return rules
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.UserName, Role: string(u.Role)}
}

type validatable interface {
	Validate() error
}

// decode reads a JSON body into v and validates it. Failures wrap
// common.ErrValidation.
func decode(w http.ResponseWriter, r *http.Request, v validatable) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}
