package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/smart-evolve/grading-service/internal/models"
)

// Validator wraps go-playground/validator with the grading-service rules.
type Validator struct {
	validate *validator.Validate
}

// USNs look like 1AB19CS001: college code, year, branch, roll number.
var usnPattern = regexp.MustCompile(`^[0-9][A-Z]{2}[0-9]{2}[A-Z]{2,3}[0-9]{3}$`)

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

func (v *Validator) registerRules() {
	// usn: university seat number format
	_ = v.validate.RegisterValidation("usn", func(fl validator.FieldLevel) bool {
		return usnPattern.MatchString(fl.Field().String())
	})

	// evaluation_mode: Lenient, Moderate or Strict (empty defaults later)
	_ = v.validate.RegisterValidation("evaluation_mode", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		return models.ValidMode(models.EvaluationMode(value))
	})

	// rating: 1..5 stars
	_ = v.validate.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 1 && n <= 5
	})
}

// Validate validates struct tags and returns a single error aggregating all
// violations.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	errors := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		errors = append(errors, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "usn":
		return "must be a valid USN (e.g. 1AB19CS001)"
	case "evaluation_mode":
		return "must be one of Lenient, Moderate, Strict"
	case "rating":
		return "must be between 1 and 5"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidationError describes one field violation.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all violations from one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}
