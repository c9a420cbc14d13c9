package util

import (
	"errors"
	"fmt"
)

// ResponseError is a failure reported by the remote API. Msg is already the
// human readable message shown to the candidate.
type ResponseError struct {
	Msg    string
	Status int
	Code   string
}

func (e ResponseError) Error() string { return e.Msg }

func NewResponseError(status int, format string, args ...interface{}) error {
	return ResponseError{
		Msg:    fmt.Sprintf(format, args...),
		Status: status,
	}
}

// AsResponseError unwraps err into a ResponseError when it carries one.
func AsResponseError(err error) (ResponseError, bool) {
	var respErr ResponseError
	if errors.As(err, &respErr) {
		return respErr, true
	}
	return ResponseError{}, false
}
