package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service checks administrator credentials against configured values.
type Service struct {
	username string
	password string
	hashed   bool
}

// NewService constructs a Service for the single configured administrator.
// A password that looks like a bcrypt hash ("$2a$", "$2b$", "$2y$") is
// compared with bcrypt; anything else is compared as plain text.
func NewService(username, password string) *Service {
	return &Service{
		username: username,
		password: password,
		hashed:   IsBcryptHash(password),
	}
}

// IsBcryptHash reports whether s carries a bcrypt prefix.
func IsBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// HashPassword returns a bcrypt hash suitable for PASS_ADMIN.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Configured reports whether both credentials are set.
func (s *Service) Configured() bool {
	return s.username != "" && s.password != ""
}

// Check compares username and password with the configured pair. An
// unconfigured service rejects every attempt.
func (s *Service) Check(username, password string) error {
	if !s.Configured() {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1

	var passOK bool
	if s.hashed {
		passOK = bcrypt.CompareHashAndPassword([]byte(s.password), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	}
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
