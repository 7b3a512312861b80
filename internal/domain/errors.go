package domain

import "errors"

var (
	ErrNotFound    = errors.New("record not found")
	ErrKeyNotFound = errors.New("storage key not found")
	ErrPersistence = errors.New("persistence failed")
	ErrValidation  = errors.New("field validation failed")
	ErrDelivery    = errors.New("delivery failed")
)
