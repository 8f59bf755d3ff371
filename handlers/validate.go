package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
)

// requestValidator checks decoded request bodies against their `validate` tags and reports
// failures as catalog validation errors.
type requestValidator struct {
	v *validator.Validate
}

var validate = newRequestValidator()

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "availability", func(fl validator.FieldLevel) bool {
		_, err := models.NormalizeAvailability(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		return models.RoleValid(fl.Field().String())
	})
	return &requestValidator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

func (rv *requestValidator) Struct(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)
	return invalid(strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "availability":
		return "must be a comma-separated list of " + strings.Join(models.Formats, ", ")
	case "role":
		return "must be one of " + strings.Join(models.ValidRoles, ", ")
	default:
		return "is invalid"
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", catalog.ErrValidation, msg)
}
