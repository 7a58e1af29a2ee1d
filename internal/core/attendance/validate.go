package attendance

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when user input is incomplete or malformed.
// It is raised before any cache mutation or remote dispatch happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateReport checks the fields a report must carry before it can be saved.
func ValidateReport(r Report) error {
	err := validatorInstance().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fieldName(fe.Namespace()), Reason: reasonFor(fe)}
	}
	return &ValidationError{Field: "report", Reason: err.Error()}
}

// ValidateName checks the display name of a presenter, area or site.
func ValidateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: kind, Reason: "name is required"}
	}
	return nil
}

func fieldName(namespace string) string {
	// "Report.Attendance.Adults" -> "attendance.adults"
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return strings.ToLower(strings.Join(parts, "."))
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return fmt.Sprintf("must match layout %s", fe.Param())
	case "gte":
		return "must not be negative"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
