package services

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
)

var userNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var (
	// UserNameRules are the rules every stored username satisfies.
	UserNameRules = []validation.Rule{
		validation.Required,
		validation.Length(3, 50),
		validation.Match(userNamePattern).Error("must contain only letters, digits and underscores"),
	}

	// PasswordRules are the rules a new password must satisfy. The upper
	// bound is the bcrypt input limit.
	PasswordRules = []validation.Rule{
		validation.Required,
		validation.Length(8, 72),
		validation.By(passwordStrength),
	}

	// RoleRules accept an empty role or one of the known roles.
	RoleRules = []validation.Rule{
		validation.By(knownRole),
	}
)

// stringValue dereferences pointers so custom rules see the same value as
// the built-in ones.
func stringValue(value interface{}) string {
	v, isNil := validation.Indirect(value)
	if isNil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case models.Role:
		return string(s)
	default:
		return ""
	}
}

func passwordStrength(value interface{}) error {
	s := stringValue(value)
	if s == "" {
		return nil
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("must contain an upper-case letter, a lower-case letter and a digit")
	}
	return nil
}

func knownRole(value interface{}) error {
	s := stringValue(value)
	if s == "" {
		return nil
	}
	if _, ok := models.ParseRole(s); !ok {
		return errors.New("must be one of: user, admin")
	}
	return nil
}

// invalid wraps a validation failure so callers can match common.ErrValidation.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", common.ErrValidation, err)
}

func validateCredentials(userName, password string) error {
	return invalid(validation.Errors{
		"username": validation.Validate(userName, UserNameRules...),
		"password": validation.Validate(password, PasswordRules...),
	}.Filter())
}

func validateUpdate(upd models.UserUpdate) error {
	errs := validation.Errors{}
	if upd.UserName != nil {
		errs["username"] = validation.Validate(*upd.UserName, UserNameRules...)
	}
	if upd.Password != nil {
		errs["password"] = validation.Validate(*upd.Password, PasswordRules...)
	}
	if upd.Role != nil {
		errs["role"] = validation.Validate(*upd.Role, validation.Required, validation.By(knownRole))
	}
	return invalid(errs.Filter())
}
