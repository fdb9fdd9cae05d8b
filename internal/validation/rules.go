// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/tenantsec/tenantgate/internal/errors"
)

var (
	// tenantIDRegex matches tenant and scope identifiers: letters, digits,
	// dot, underscore and hyphen. Identifiers double as partition names, so
	// the charset stays conservative.
	tenantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// TenantID validates tenant and scope identifier format.
var TenantID = validation.NewStringRuleWithError(
	func(s string) bool {
		return tenantIDRegex.MatchString(s)
	},
	validation.NewError(
		"validation_tenant_id_format",
		"must contain only letters, digits, dots, underscores and hyphens",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
