package domain

import "errors"

var (
	ErrTransport          = errors.New("backend command failed")
	ErrValidation         = errors.New("validation failed")
	ErrModNotFound        = errors.New("mod not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrNotInitialized     = errors.New("application not initialized")
	ErrInvalidWorkshopURL = errors.New("invalid workshop url")
)
