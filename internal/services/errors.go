package services

import "errors"

// Error kinds returned by the services. Anything not wrapping one of these
// is an internal failure.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCredentials = errors.New("user or password incorrect")
	ErrUnauthorized       = errors.New("authentication error")
	ErrConflict           = errors.New("user already exists")
)

// requireIdentity rejects calls that reached a protected operation without
// an authenticated caller.
func requireIdentity(identity Identity) error {
	if identity.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}
