package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON names ("url", "delay") instead of Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// ValidateDescriptor checks a descriptor of a known type.
// Errors wrap ErrUnknownTaskType or ErrInvalidTask.
func ValidateDescriptor(d Descriptor) error {
	if !d.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, string(d.Type))
	}
	if err := validatorInstance().Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTask, describeValidation(err))
	}
	// "required" accepts whitespace; a blank target can never launch.
	if strings.TrimSpace(d.Target()) == "" {
		field := "url"
		if d.Type == KindOpenProgram {
			field = "path"
		}
		return fmt.Errorf("%w: %s is blank", ErrInvalidTask, field)
	}
	return nil
}

// ValidateURL is the stricter check the editor applies to new links:
// an absolute URL with a scheme.
func ValidateURL(raw string) error {
	if err := validatorInstance().Var(raw, "required,url"); err != nil {
		return fmt.Errorf("%w: url %q is not an absolute URL", ErrInvalidTask, raw)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			parts = append(parts, fe.Field()+" is required")
		case "gte":
			parts = append(parts, fe.Field()+" must be >= "+fe.Param())
		case "lte":
			parts = append(parts, fe.Field()+" must be <= "+fe.Param())
		default:
			parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
