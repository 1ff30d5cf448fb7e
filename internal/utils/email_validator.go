package utils

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/lindell/go-burner-email-providers/burner"
)

// EmailValidationError represents an error during email validation
type EmailValidationError struct {
	Message string
	Code    string
}

func (e EmailValidationError) Error() string {
	return e.Message
}

// EmailValidationConfig holds configuration for email validation
type EmailValidationConfig struct {
	BlockDisposableEmails bool
}

// ValidateEmailAddress validates an email address and checks if it's from a
// disposable email service. Pass nil for config to use the default behavior
// (block disposable emails).
func ValidateEmailAddress(email string) error {
	return ValidateEmailAddressWithConfig(email, nil)
}

// ValidateEmailAddressWithConfig validates an email address with configuration options
func ValidateEmailAddressWithConfig(email string, cfg *EmailValidationConfig) error {
	if cfg == nil {
		cfg = &EmailValidationConfig{
			BlockDisposableEmails: true,
		}
	}

	// Basic email format validation
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return &EmailValidationError{
			Message: "Invalid email format",
			Code:    "INVALID_FORMAT",
		}
	}

	// mail.ParseAddress accepts display names ("Ana <a@x.com>"); the store
	// keys dedup on the raw address, so only accept the bare form.
	if addr.Address != email {
		return &EmailValidationError{
			Message: "Invalid email format",
			Code:    "INVALID_FORMAT",
		}
	}

	domain, err := extractDomain(email)
	if err != nil {
		return &EmailValidationError{
			Message: "Could not extract domain from email",
			Code:    "DOMAIN_EXTRACTION_ERROR",
		}
	}

	if cfg.BlockDisposableEmails && burner.IsBurnerEmail(email) {
		return &EmailValidationError{
			Message: fmt.Sprintf("Disposable email addresses from %s are not allowed", domain),
			Code:    "DISPOSABLE_EMAIL",
		}
	}

	return nil
}

func extractDomain(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid email format")
	}
	return strings.ToLower(parts[1]), nil
}
