// AngelaMos | 2026
// document.go

package user

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const nationalIDLength = 11

var postalCodePattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)

// ValidNationalID checks a CPF: eleven digits once dots and dashes are
// stripped, not all the same digit, with both check digits matching.
func ValidNationalID(raw string) bool {
	digits := NormalizeNationalID(raw)
	if len(digits) != nationalIDLength {
		return false
	}

	for i := 0; i < nationalIDLength; i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}

	if strings.Count(digits, digits[:1]) == nationalIDLength {
		return false
	}

	return checkDigit(digits, 9) == int(digits[9]-'0') &&
		checkDigit(digits, 10) == int(digits[10]-'0')
}

// checkDigit computes the digit at position n from the n digits before it,
// weighting them n+1 down to 2.
func checkDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}

	d := (sum * 10) % 11
	if d == 10 {
		return 0
	}
	return d
}

func NormalizeNationalID(raw string) string {
	return strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(raw))
}

// ValidPostalCode accepts an empty value or a CEP as 12345678 or 12345-678.
func ValidPostalCode(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || postalCodePattern.MatchString(raw)
}

// RegisterValidators adds the "cpf" and "cep" tags.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || ValidNationalID(value)
	}); err != nil {
		return err
	}

	return v.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		return ValidPostalCode(fl.Field().String())
	})
}
