package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/catalog-backend/internal/domain/catalog"
)

var registerOnce sync.Once
var registerErr error

// Register installs the catalog rules on gin's validator. Safe to call more
// than once.
func Register() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("validation: unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterOn(v)
	})
	return registerErr
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return catalog.ValidGender(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s != "" && catalog.NormalizeSlug(s) != ""
	})
}

// Message flattens binding errors into one client-facing line.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gender":
		return fmt.Sprintf("%s must be one of men, women, kid, unisex", field)
	case "slug":
		return field + " must contain at least one letter or digit"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
