package security

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MinPasswordLength follows NIST SP 800-63B guidance.
	MinPasswordLength = 12

	SpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// ValidatePassword checks a candidate password against every policy rule and
// returns the full ordered list of violations. No rule short-circuits another.
// When username is non-empty the password must not contain it, compared
// case-insensitively. The empty slice means the password is acceptable.
func ValidatePassword(password, username string) []string {
	var errs []string

	// Length counts characters, not bytes.
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(SpecialChars, r) {
			hasSpecial = true
		}
	}

	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one digit")
	}
	if !hasSpecial {
		errs = append(errs, fmt.Sprintf("Password must contain at least one special character (%s)", SpecialChars))
	}

	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		errs = append(errs, "Password should not contain your username or email")
	}

	return errs
}

// PasswordRequirements is the strength guide surfaced alongside validation
// failures so the client can render the policy.
func PasswordRequirements() []string {
	return []string{
		fmt.Sprintf("At least %d characters long", MinPasswordLength),
		"Contains uppercase and lowercase letters",
		"Contains at least one number",
		fmt.Sprintf("Contains at least one special character (%s)", SpecialChars),
		"Does not contain your username or email",
	}
}
