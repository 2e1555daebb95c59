package users

import (
	"errors"

	"github.com/odyssey-erp/userapi/internal/platform/httpx"
)

var (
	// ErrMissingFields rejects a create without name, age and email.
	ErrMissingFields = httpx.Errorf(httpx.ErrValidation, "Missing required fields: name, age, email")
	// ErrInvalidAge rejects an age that cannot be read as an integer.
	ErrInvalidAge = httpx.Errorf(httpx.ErrValidation, "Field age must be a number.")
	// ErrEmailExists rejects a create with an email already on file.
	ErrEmailExists = httpx.Errorf(httpx.ErrDuplicate, "User with this email already exists.")
	// ErrEmailTaken rejects a patch moving a user onto another user's email.
	ErrEmailTaken = httpx.Errorf(httpx.ErrDuplicate, "This email is already taken by another user.")

	// ErrStoreIO wraps persistence failures.
	ErrStoreIO = errors.New("users: store io")
	// ErrStoreParse wraps persisted content that is not a user collection.
	ErrStoreParse = errors.New("users: store parse")
)

func userNotFound(id int) error {
	return httpx.Errorf(httpx.ErrNotFound, "User with ID %d not found.", id)
}

func invalidID(raw string) error {
	return httpx.Errorf(httpx.ErrValidation, "Invalid user ID: %s", raw)
}
