package domain

import "errors"

var (
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrPrincipalExists    = errors.New("principal already exists")
	ErrMessageNotFound    = errors.New("message not found")
	ErrMissingKey         = errors.New("principal key pair incomplete")
	ErrInvalidKeyMaterial = errors.New("invalid key material")
	ErrDecode             = errors.New("malformed signature encoding")
	ErrKeyGeneration      = errors.New("key generation failed")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidInput       = errors.New("invalid input")
)
