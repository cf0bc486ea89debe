package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Missing.
var v = validator.New()

// Missing returns the names of the fields whose "required" rule failed, or
// nil when s is complete.
func Missing(s interface{}) []string {
	var ve validator.ValidationErrors
	if err := v.Struct(s); !errors.As(err, &ve) {
		return nil
	}
	var fields []string
	for _, fe := range ve {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}
