// Package errors defines the sentinel errors of the billing context.
package errors

import "errors"

var (
	// ErrCustomerNotFound covers both missing customers and customers the
	// caller is not allowed to know exist.
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrCustomerDoesNotExist signals that a task's target customer has been
	// deleted. Retrying cannot succeed, so dispatch treats it as final.
	ErrCustomerDoesNotExist = errors.New("customer does not exist")

	ErrNotPermitted      = errors.New("operation not permitted")
	ErrUnauthorized      = errors.New("authentication required")
	ErrInvalidEventInput = errors.New("invalid usage event input")
)
