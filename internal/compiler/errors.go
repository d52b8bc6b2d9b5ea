package compiler

import (
	"errors"
	"fmt"

	"ferrum/internal/diag"
	"ferrum/internal/layout"
	"ferrum/internal/mono"
	"ferrum/internal/sema"
	"ferrum/internal/source"
)

// Error is a diagnostic-ready failure raised by the driver or the registry
// for conditions the ownership layer does not model.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(code diag.Code, sp source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

// typeError classifies an instantiation or layout failure.
func typeError(err error, sp source.Span) *Error {
	var le *layout.LayoutError
	if errors.As(err, &le) {
		return &Error{Code: diag.SemaTypeTooLarge, Span: sp, Err: err}
	}
	var ie *mono.InstantiationError
	if errors.As(err, &ie) {
		switch ie.Kind {
		case mono.ErrRecursiveTemplate:
			return &Error{Code: diag.SemaRecursiveType, Span: sp, Err: err}
		case mono.ErrSlotOutOfRange:
			return &Error{Code: diag.InternalMalformedGenerics, Span: sp, Err: err}
		case mono.ErrLayout:
			return &Error{Code: diag.SemaError, Span: sp, Err: err}
		}
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Code: diag.SemaError, Span: sp, Err: err}
}

// ToDiagnostic converts any error produced while checking into a
// diagnostic. Spans missing from err are taken from fallback.
func ToDiagnostic(err error, fallback source.Span) diag.Diagnostic {
	var se *sema.Error
	if errors.As(err, &se) {
		sp := se.Span
		if sp.IsZero() {
			sp = fallback
		}
		return diag.NewError(se.Code(), sp, se.Error())
	}
	var ce *Error
	if !errors.As(err, &ce) {
		ce = typeError(err, fallback)
	}
	sp := ce.Span
	if sp.IsZero() {
		sp = fallback
	}
	return diag.NewError(ce.Code, sp, ce.Error())
}
