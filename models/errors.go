package models

import "errors"

// BusinessError marks a precondition failure (wrong state, empty version,
// invalid input). The API layer maps these to 400 responses; everything else
// that is not a RecordNotFound becomes a 500.
type BusinessError struct {
	msg string
}

func (e *BusinessError) Error() string { return e.msg }

func NewBusinessError(msg string) error {
	return &BusinessError{msg: msg}
}

func IsBusinessError(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}
