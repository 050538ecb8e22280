// SPDX-FileCopyrightText: Copyright 2021 The Go Language Server Authors
// SPDX-License-Identifier: BSD-3-Clause

package hpjsrpc

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Error is the wire-visible JSON-RPC error object. It
// carries an xerrors.Frame so %+v prints a stack trace back to the
// call site that produced it, without that trace ever reaching the
// wire.
type Error struct {
	Code    Code
	Message string
	Kind    Kind
	frame   xerrors.Frame
	wrapped error
}

// NewError builds an *Error from an internal Kind, capturing the
// caller's frame for diagnostics.
func NewError(kind Kind) *Error {
	return &Error{
		Code:    wireCodeFor(kind),
		Message: kind.String(),
		Kind:    kind,
		frame:   xerrors.Caller(1),
	}
}

// Errorf builds an *Error with a message formatted by fmt.Sprintf
// (which does not support the %w verb). If any argument is an error,
// the last such argument becomes the wrapped cause returned by Unwrap.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	err := &Error{
		Code:  wireCodeFor(kind),
		Kind:  kind,
		frame: xerrors.Caller(1),
	}
	err.Message = fmt.Sprintf(format, args...)
	for _, a := range args {
		if w, ok := a.(error); ok {
			err.wrapped = w
		}
	}
	return err
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hpjsrpc: %s (code %d)", e.Message, e.Code)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// FormatError implements xerrors.Formatter.
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Print(e.Error())
	e.frame.Format(p)
	return e.wrapped
}

// Format implements fmt.Formatter via xerrors.FormatError.
func (e *Error) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}
