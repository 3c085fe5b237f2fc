package services

import "errors"

// Sentinel errors mapped to HTTP status codes at the handler boundary.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNoteNotFound            = errors.New("note not found")
	ErrTitleAndContentRequired = errors.New("title and content are required")
	ErrQuotaExceeded           = errors.New("free plan note limit reached")

	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantMismatch = errors.New("tenant access denied")
	ErrAlreadyPro     = errors.New("tenant is already on pro plan")
)
