package grpc

import (
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/common"
	pb "github.com/dmitrijs2005/accounts/internal/proto"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	validation "github.com/go-ozzo/ozzo-validation"
)

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}

func validateSignUp(r *pb.SignUpRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.Username, services.UserNameRules...),
		validation.Field(&r.Password, services.PasswordRules...),
	))
}

func validateSignIn(r *pb.SignInRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	))
}

func validateRefresh(r *pb.RefreshRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken, validation.Required),
	))
}

func validateCreateUser(r *pb.CreateUserRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.Username, services.UserNameRules...),
		validation.Field(&r.Password, services.PasswordRules...),
		validation.Field(&r.Role, services.RoleRules...),
	))
}

func validateUpdateUser(r *pb.UpdateUserRequest) error {
	fields := []*validation.FieldRules{
		validation.Field(&r.Id, validation.Required, validation.Min(int64(1))),
	}
	if r.Username != nil {
		fields = append(fields, validation.Field(&r.Username, services.UserNameRules...))
	}
	if r.Password != nil {
		fields = append(fields, validation.Field(&r.Password, services.PasswordRules...))
	}
	if r.Role != nil {
		fields = append(fields, validation.Field(&r.Role, append([]validation.Rule{validation.Required}, services.RoleRules...)...))
	}
	return invalid(validation.ValidateStruct(r, fields...))
}

func validateID(id int64) error {
	return invalid(validation.Validate(id, validation.Required, validation.Min(int64(1))))
}
