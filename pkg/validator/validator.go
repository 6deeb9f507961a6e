package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validator checks request structs and returns field level errors
type Validator interface {
	Validate(interface{}) error
}

type structValidator struct {
	v *validator.Validate
}

// New builds a validator that reports json field names and knows the
// clinic specific tags: date, clock, weekday and loose_email.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(TimeLayout, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	return &structValidator{v: v}
}

func (s *structValidator) Validate(obj interface{}) error {
	err := s.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.BadRequest("invalid request", err)
	}

	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return apperrors.Validation(fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email", "loose_email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("is out of range (%s %s)", fe.Tag(), fe.Param())
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "clock":
		return "must be a time in HH:MM format"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// IsEmail applies the same loose something@something.tld check the
// registration form always used.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Collector accumulates hand-written rule failures alongside struct tags.
type Collector struct {
	fields []apperrors.FieldError
}

func (c *Collector) Add(field, msg string) {
	c.fields = append(c.fields, apperrors.FieldError{Field: field, Message: msg})
}

func (c *Collector) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Add(field, "is required")
	}
}

// Err returns nil when nothing was collected.
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return apperrors.Validation(c.fields...)
}

// Merge folds the field errors of err into c. Errors without field details
// are returned unchanged.
func (c *Collector) Merge(err error) error {
	if err == nil {
		return nil
	}
	appErr, ok := apperrors.As(err)
	if !ok || len(appErr.Fields) == 0 {
		return err
	}
	c.fields = append(c.fields, appErr.Fields...)
	return nil
}
