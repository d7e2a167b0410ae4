package errors

import "errors"

var (
	// ErrOrganizationNotFound covers both genuinely absent organizations and
	// organizations the caller may not learn exist. Transport maps it to 404
	// in both cases so the shapes are indistinguishable.
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrAccountNotFound      = errors.New("account not found")

	// ErrNotPermitted means the resource exists, the caller is authenticated
	// and allowed to know it exists, and the decision was deny.
	ErrNotPermitted = errors.New("not permitted")

	// ErrUnauthorized means the caller lacks the base relation required to
	// even attempt the operation.
	ErrUnauthorized = errors.New("unauthorized")

	ErrSlugTaken                = errors.New("organization slug already taken")
	ErrInvalidOrganizationInput = errors.New("invalid organization input")
)
