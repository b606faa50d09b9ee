// Package redact provides utilities for redacting sensitive information from
// strings before they are logged or returned in error responses. The kiosk
// handles customer PII (email addresses, phone numbers) and talks to
// credentialed backends, so raw error text never goes to the logs unfiltered.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedPhonePlaceholder      = "[REDACTED_PHONE]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// Precompiled regex patterns
var (
	// Database connection strings
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database|connection)://[^@\s]+@`)

	// Credentials and tokens
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|service[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Customer PII
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRegex = regexp.MustCompile(`\+?[0-9][0-9 ().-]{5,}[0-9]`)

	// Data URLs carry whole images; logging one blows up the line anyway.
	dataURLRegex = regexp.MustCompile(`data:image/[a-z+.-]+;base64,[A-Za-z0-9+/=]+`)

	patterns = []*regexp.Regexp{
		dbConnRegex, apiKeyRegex, emailRegex, phoneRegex, dataURLRegex,
	}

	patternPlaceholders = map[*regexp.Regexp]string{
		dbConnRegex:  RedactedCredentialPlaceholder,
		apiKeyRegex:  RedactedKeyPlaceholder,
		emailRegex:   RedactedEmailPlaceholder,
		phoneRegex:   RedactedPhonePlaceholder,
		dataURLRegex: "[REDACTED_IMAGE_DATA]",
	}
)

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, pattern := range patterns {
		placeholder := RedactionPlaceholder
		if ph, ok := patternPlaceholders[pattern]; ok {
			placeholder = ph
		}
		result = pattern.ReplaceAllString(result, placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
