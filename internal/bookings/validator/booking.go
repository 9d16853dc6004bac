package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier/pkg/logger"
	"atelier/pkg/model"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot", validateSlot); err != nil {
		log.Fatal("Failed to register 'slot' validator",
			"error", err,
		)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlot(fl validator.FieldLevel) bool {
	slot, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return model.IsValidSlot(slot)
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateDate checks the YYYY-MM-DD calendar-day key used by availability reads.
func (v *BookingValidator) ValidateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return ValidationErrors{
			ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			},
		}
	}
	return nil
}

// ValidateDateRange checks both bounds and their ordering. YYYY-MM-DD keys
// order lexicographically, so the string comparison is sufficient.
func (v *BookingValidator) ValidateDateRange(start, end string) error {
	if err := v.ValidateDate(start); err != nil {
		return err
	}
	if err := v.ValidateDate(end); err != nil {
		return err
	}
	if start > end {
		return ValidationErrors{
			ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			},
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, fe := range errs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be in YYYY-MM-DD format"
	case "slot":
		return fmt.Sprintf("must be one of the catalog slots (%s)", strings.Join(model.SlotCatalog, ", "))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "mongodb":
		return "must be a valid document ID"
	default:
		return fmt.Sprintf("failed validation on '%s'", fe.Tag())
	}
}
