// AngelaMos | 2026
// validators.go

package cat

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the catsex and catstatus tags to v.
func RegisterValidators(v *validator.Validate) error {
	err := v.RegisterValidation("catsex", func(fl validator.FieldLevel) bool {
		sex := fl.Field().String()
		return sex == SexMale || sex == SexFemale
	})
	if err != nil {
		return fmt.Errorf("register catsex: %w", err)
	}

	err = v.RegisterValidation("catstatus", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	if err != nil {
		return fmt.Errorf("register catstatus: %w", err)
	}

	return nil
}
