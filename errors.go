package main

import "errors"

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrOperationFailed    = errors.New("operation failed")
	ErrDuplicateKey       = errors.New("duplicate key")

	ErrNotFound     = errors.New("employee not found")
	ErrInvalidRoute = errors.New("invalid route")
	ErrNotSaved     = errors.New("employee not saved")
)
