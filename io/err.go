package io

import (
	"errors"

	"github.com/ezrec/rvsim/translate"
)

var f = translate.From

var (
	// Image errors
	ErrHexSyntax = errors.New(f("hex syntax"))
	ErrAlignment = errors.New(f("image not word aligned"))
)

// ErrLine indicates the location of an image syntax error.
type ErrLine struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrLine) Error() string {
	return f("line %d: %v: %q", err.LineNo, err.Err, err.Line)
}

func (err *ErrLine) Unwrap() error {
	return err.Err
}
