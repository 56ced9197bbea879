// Package errs holds the error taxonomy shared by the registry, the resolver and the
// auth service. Controllers translate these into HTTP responses.
package errs

import (
	"errors"
	"fmt"
)

type AuthKind string

const (
	NotAuthenticated   AuthKind = "not_authenticated"
	AlreadyExists      AuthKind = "already_exists"
	InvalidCredentials AuthKind = "invalid_credentials"
)

var (
	ErrNotAuthenticated   = &AuthError{Kind: NotAuthenticated}
	ErrAlreadyExists      = &AuthError{Kind: AlreadyExists}
	ErrInvalidCredentials = &AuthError{Kind: InvalidCredentials}

	ErrNotFound = errors.New("not found")
)

type AuthError struct {
	Kind AuthKind
}

func (e *AuthError) Error() string {
	switch e.Kind {
	case NotAuthenticated:
		return "not authenticated"
	case AlreadyExists:
		return "user already exists"
	case InvalidCredentials:
		return "invalid credentials"
	}
	return "auth error"
}

// Is matches any AuthError of the same kind, so errors.Is(err, ErrAlreadyExists) works
// on wrapped copies.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PartialDeleteError means the blob is gone but the metadata row survived every retry.
type PartialDeleteError struct {
	ID       string
	BlobPath string
	Err      error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("file %s: blob %s removed but metadata delete failed: %v", e.ID, e.BlobPath, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// StorageError wraps a failure of the blob store or the metadata store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
