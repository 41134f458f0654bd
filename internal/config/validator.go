// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs with partial, malformed, or missing configuration.
//
// Besides the built-in tags on the model, one struct-level rule is
// registered here: `site.default_locale` must be one of `site.locales`.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.
//   • Section dividers use the simple comment style requested.

package config

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(Site)
		if s.DefaultLocale != "" && !slices.Contains(s.Locales, s.DefaultLocale) {
			sl.ReportError(s.DefaultLocale, "DefaultLocale", "default_locale", "in_locales", "")
		}
	}, Site{})
	return val
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
