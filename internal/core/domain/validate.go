package domain

import (
	"net/mail"
	"regexp"
	"unicode"
)

const (
	passwordMinLength = 8
	passwordMaxLength = 128
	usernameMinLength = 3
	usernameMaxLength = 30
	emailMaxLength    = 255
	fullNameMaxLength = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidatePassword enforces the password strength rules: length bounds plus
// at least one uppercase letter, one lowercase letter, one digit, and one
// special character.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLength {
		return Validation("password", "must be at least 8 characters")
	}
	if len(password) > passwordMaxLength {
		return Validation("password", "is too long")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	switch {
	case !upper:
		return Validation("password", "must contain an uppercase letter")
	case !lower:
		return Validation("password", "must contain a lowercase letter")
	case !digit:
		return Validation("password", "must contain a number")
	case !special:
		return Validation("password", "must contain a special character")
	}
	return nil
}

// ValidateEmail checks basic address syntax and length.
func ValidateEmail(email string) error {
	if email == "" {
		return Validation("email", "is required")
	}
	if len(email) > emailMaxLength {
		return Validation("email", "is too long")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Validation("email", "must be a valid email address")
	}
	return nil
}

// ValidateUsername checks the optional username. Empty is allowed; a
// supplied username must be 3-30 characters of letters, digits, underscore.
func ValidateUsername(username string) error {
	if username == "" {
		return nil
	}
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return Validation("username", "must be between 3 and 30 characters")
	}
	if !usernamePattern.MatchString(username) {
		return Validation("username", "can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateFullName checks the display name: non-empty, bounded, and composed
// of letters and spaces.
func ValidateFullName(fullName string) error {
	if fullName == "" {
		return Validation("full_name", "is required")
	}
	if len(fullName) > fullNameMaxLength {
		return Validation("full_name", "is too long")
	}
	for _, r := range fullName {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return Validation("full_name", "can only contain letters and spaces")
		}
	}
	return nil
}
