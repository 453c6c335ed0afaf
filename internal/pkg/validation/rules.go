// Package validation holds the field rules shared by services and gateway
// payload handling.
package validation

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Field limits
const (
	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100

	BioMaxLength     = 500
	MessageMaxLength = 2000
	TitleMaxLength   = 140
	ReasonMaxLength  = 500
)

// ValidatePassword enforces the minimum password shape: length plus at least
// one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain letters and digits")
	}
	return nil
}

// ValidateName checks display-name length in runes
func ValidateName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < NameMinLength || length > NameMaxLength {
		return fmt.Errorf("name must be between %d and %d characters", NameMinLength, NameMaxLength)
	}
	return nil
}

// ValidateLength checks a free-text field against a maximum rune count
func ValidateLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}
