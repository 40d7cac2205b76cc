package domain

import "errors"

var (
	ErrNotFound                = errors.New("package not found")
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
)
