package validator

import (
	"fmt"
	"regexp"
	"strings"

	"atelier/pkg/logger"

	"github.com/go-playground/validator/v10"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AuthValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAuthValidator(log *logger.Logger) *AuthValidator {
	return &AuthValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *AuthValidator) ValidateEmail(email string) error {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "email",
				Message: "must be a valid email address",
			},
		}
	}
	return nil
}

// ValidateCode checks shape only; whether the code matches a live record is
// the service's call.
func (v *AuthValidator) ValidateCode(code string) error {
	if !codePattern.MatchString(code) {
		return ValidationErrors{
			ValidationError{
				Field:   "code",
				Message: "must be a 6-digit code",
			},
		}
	}
	return nil
}
