package errors

import "errors"

var (
	ErrInvalidSubjectID  = errors.New("invalid subject id")
	ErrInvalidAccessType = errors.New("invalid access type")
	ErrInvalidResource   = errors.New("invalid resource")
)
