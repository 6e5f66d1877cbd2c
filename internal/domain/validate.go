package domain

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// validatorInstance is a package-level validator instance.
// Using a single instance caches struct information between calls.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("safeurl", validateSafeURL)
}

// Validator returns the shared instance so the HTTP layer registers the same
// custom rules as the domain models.
func Validator() *validator.Validate {
	return validatorInstance
}

// validateSafeURL accepts absolute http and https URLs only.
func validateSafeURL(fl validator.FieldLevel) bool {
	return IsSafeURL(fl.Field().String())
}

// IsSafeURL reports whether s is an absolute http(s) URL with a host.
func IsSafeURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
