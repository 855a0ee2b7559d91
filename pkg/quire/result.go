package quire

import (
	"errors"
	"fmt"
)

// Row is an untyped spreadsheet row keyed by column header.
type Row = map[string]any

// Error is the error half of a Result.
type Error struct {
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Result is the envelope returned by every terminal operation. On failure
// Data is the zero value and Error is set; otherwise Error is nil.
type Result[D any] struct {
	Data  D      `json:"data"`
	Error *Error `json:"error"`
}

// Err returns the envelope error as a Go error, or nil.
func (r Result[D]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// OK reports whether the operation succeeded.
func (r Result[D]) OK() bool {
	return r.Error == nil
}

func ok[D any](data D) Result[D] {
	return Result[D]{Data: data}
}

func fail[D any](err error) Result[D] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[D]{Error: &Error{Message: err.Error()}}
}

func failf[D any](format string, args ...any) Result[D] {
	return fail[D](fmt.Errorf(format, args...))
}
