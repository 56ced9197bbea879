package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Nithin3003/cloud-share-it/internal/interface/api/rest/dto/auth"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe
	maxNameLen     = 64
)

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

func validateCredentials(errs map[string]string, rawEmail, password string) {
	// Normalize
	email := strings.ToLower(strings.TrimSpace(rawEmail))

	// email (required + format)
	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	// password is not trimmed, only checked for blank
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := len(password); utf8.RuneCountInString(password) < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	errs := make(map[string]string)
	validateCredentials(errs, r.Email, r.Password)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func ValidateRegister(r auth.RegisterRequest) map[string]string {
	errs := make(map[string]string)
	validateCredentials(errs, r.Email, r.Password)

	// name is optional
	if l := utf8.RuneCountInString(strings.TrimSpace(r.Name)); l > maxNameLen {
		errs["name"] = "name must be at most 64 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
