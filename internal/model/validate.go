package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// fieldMessages maps validation tags to message templates. A template
// with two verbs receives the field name and the tag parameter.
var fieldMessages = map[string]string{
	"required": "%s is required",
	"min":      "%s must be at least %s characters",
	"max":      "%s must be at most %s characters",
	"len":      "%s must be exactly %s characters",
	"gt":       "%s must be greater than %s",
	"oneof":    "%s must be one of: %s",
	"hexcolor": "%s must be a hex color like #3B82F6",
}

// Validate checks v against its validate struct tags and returns a map of
// JSON field names to human-readable messages. It returns nil when v is
// valid. v must be a struct or a pointer to one.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		name := e.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = fieldMessage(name, e)
	}
	return fields
}

func fieldMessage(name string, e validator.FieldError) string {
	tmpl, ok := fieldMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", name)
	}
	if strings.Count(tmpl, "%s") == 2 {
		param := e.Param()
		if e.Tag() == "oneof" {
			param = strings.ReplaceAll(param, " ", ", ")
		}
		return fmt.Sprintf(tmpl, name, param)
	}
	return fmt.Sprintf(tmpl, name)
}
