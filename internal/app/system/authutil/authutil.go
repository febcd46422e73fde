// Package authutil holds credential rules: username shape, password policy,
// and bcrypt hashing.
package authutil

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MinUsernameLength = 3
	MaxUsernameLength = 32

	// BcryptCost is the work factor for stored password hashes.
	BcryptCost = 12
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 128 characters")
	ErrPasswordCommon   = errors.New("password is too common; choose something less guessable")
	ErrPasswordMismatch = errors.New("passwords do not match")

	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username must be 3-32 characters: letters, digits, '.', '_' or '-'")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var commonPasswords = map[string]struct{}{
	"password": {}, "123456": {}, "12345678": {}, "123456789": {}, "qwerty": {},
	"abc123": {}, "111111": {}, "letmein": {}, "iloveyou": {}, "welcome": {},
	"monkey": {}, "dragon": {}, "football": {}, "password1": {}, "studygroup": {},
}

// ValidateUsername enforces the username shape used as the app identity.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return ErrUsernameInvalid
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// ValidatePassword enforces length bounds and rejects well-known passwords.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword hashes a password using bcrypt (salted per call).
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrPasswordRequired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
