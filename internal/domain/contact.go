package domain

import (
	"errors"
	"regexp"
	"strings"
)

// Common validation errors for Contact
var (
	ErrContactEmailEmpty      = errors.New("contact email cannot be empty")
	ErrContactEmailInvalid    = errors.New("contact email is not a valid address")
	ErrContactWhatsAppEmpty   = errors.New("contact whatsapp number cannot be empty")
	ErrContactWhatsAppInvalid = errors.New("contact whatsapp number is not a valid phone number")
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	// Digits only after stripping the separators customers actually type
	// (spaces, dashes, dots, parens) and an optional leading plus.
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

// Contact holds the customer's contact details collected on the lead form.
// Both fields are validated before the contact is accepted into a session.
type Contact struct {
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

// Validate checks the email shape and the WhatsApp number shape. Numbers are
// normalized only for the check; the stored value keeps the customer's
// formatting (e.g. "+62 812-3456-7890").
func (c Contact) Validate() error {
	if c.Email == "" {
		return ErrContactEmailEmpty
	}
	if !emailPattern.MatchString(c.Email) {
		return ErrContactEmailInvalid
	}

	if c.WhatsApp == "" {
		return ErrContactWhatsAppEmpty
	}
	if !phonePattern.MatchString(normalizePhone(c.WhatsApp)) {
		return ErrContactWhatsAppInvalid
	}

	return nil
}

// normalizePhone strips the separator characters commonly typed into phone
// fields so the digit-count check sees only the number itself.
func normalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		default:
			return r
		}
	}, s)
}
