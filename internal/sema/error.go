package sema

import (
	"fmt"

	"ferrum/internal/diag"
	"ferrum/internal/source"
	"ferrum/internal/types"
)

// ErrorKind enumerates ownership and borrow rule violations.
type ErrorKind uint8

const (
	ErrDataTypeMismatch ErrorKind = iota + 1
	ErrLifetimeMismatch
	ErrIllegalMutBorrow
	ErrIllegalSharedBorrow
	ErrIllegalBorrowState
	ErrDataNotMutable
	ErrAlreadyAssigned
	ErrIllegalDataSource
	ErrVariableNotInitialized
	ErrModifiedBorrowedData
	ErrUnknownVariable
)

func (k ErrorKind) String() string {
	switch k {
	case ErrDataTypeMismatch:
		return "DataTypeMismatch"
	case ErrLifetimeMismatch:
		return "LifetimeMismatch"
	case ErrIllegalMutBorrow:
		return "IllegalMutBorrow"
	case ErrIllegalSharedBorrow:
		return "IllegalSharedBorrow"
	case ErrIllegalBorrowState:
		return "IllegalBorrowState"
	case ErrDataNotMutable:
		return "DataNotMutable"
	case ErrAlreadyAssigned:
		return "AlreadyAssigned"
	case ErrIllegalDataSource:
		return "IllegalDataSource"
	case ErrVariableNotInitialized:
		return "VariableNotInitialized"
	case ErrModifiedBorrowedData:
		return "ModifiedBorrowedData"
	case ErrUnknownVariable:
		return "UnknownVariable"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error is a compile error raised by the ownership model. Var identifies the
// offending variable; Got/Expected are set for type mismatches and Detail
// names the expected data source for ErrIllegalDataSource.
type Error struct {
	Kind     ErrorKind
	Var      VarLoc
	Got      types.Type
	Expected types.Type
	Detail   string
	Span     source.Span
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrDataTypeMismatch:
		return fmt.Sprintf("got %s while %s was expected", e.Got, e.Expected)
	case ErrLifetimeMismatch:
		if e.Var.Name != "" {
			return fmt.Sprintf("variable %s does not live long enough", e.Var)
		}
		return "variable does not live long enough"
	case ErrIllegalMutBorrow:
		return fmt.Sprintf("cannot borrow %s as mutable", e.Var)
	case ErrIllegalSharedBorrow:
		return fmt.Sprintf("cannot borrow %s as shared", e.Var)
	case ErrIllegalBorrowState:
		return "illegal borrow checker state, this is a compiler error"
	case ErrDataNotMutable:
		return fmt.Sprintf("variable %s is not mutable", e.Var)
	case ErrAlreadyAssigned:
		return fmt.Sprintf("cannot assign data to %s twice", e.Var)
	case ErrIllegalDataSource:
		return fmt.Sprintf("expected %s data source", e.Detail)
	case ErrVariableNotInitialized:
		return fmt.Sprintf("variable %s is not initialized", e.Var)
	case ErrModifiedBorrowedData:
		return fmt.Sprintf("cannot modify %s while it is borrowed", e.Var)
	case ErrUnknownVariable:
		return fmt.Sprintf("variable %s not found in current scope", e.Var)
	default:
		return e.Kind.String()
	}
}

// Internal reports whether the error signals a compiler defect rather than a
// mistake in the checked program.
func (e *Error) Internal() bool {
	return e != nil && (e.Kind == ErrIllegalBorrowState || e.Kind == ErrIllegalDataSource)
}

// Code maps the error to its diagnostic code.
func (e *Error) Code() diag.Code {
	if e == nil {
		return diag.UnknownCode
	}
	switch e.Kind {
	case ErrDataTypeMismatch:
		return diag.SemaTypeMismatch
	case ErrLifetimeMismatch:
		return diag.SemaLifetimeMismatch
	case ErrIllegalMutBorrow:
		return diag.SemaIllegalMutBorrow
	case ErrIllegalSharedBorrow:
		return diag.SemaIllegalSharedBorrow
	case ErrIllegalBorrowState:
		return diag.InternalBorrowState
	case ErrDataNotMutable:
		return diag.SemaDataNotMutable
	case ErrAlreadyAssigned:
		return diag.SemaAlreadyAssigned
	case ErrIllegalDataSource:
		return diag.InternalDataSource
	case ErrVariableNotInitialized:
		return diag.SemaVariableNotInitialized
	case ErrModifiedBorrowedData:
		return diag.SemaModifiedBorrowedData
	case ErrUnknownVariable:
		return diag.SemaUnknownVariable
	default:
		return diag.SemaError
	}
}

// WithSpan returns a copy of e positioned at sp, keeping an existing span.
func (e *Error) WithSpan(sp source.Span) *Error {
	if e == nil || !e.Span.IsZero() {
		return e
	}
	cp := *e
	cp.Span = sp
	return &cp
}

func errAt(kind ErrorKind, v VarLoc) *Error {
	return &Error{Kind: kind, Var: v}
}

func mismatch(got, expected types.Type) *Error {
	return &Error{Kind: ErrDataTypeMismatch, Got: got, Expected: expected}
}

func illegalSource(expected string) *Error {
	return &Error{Kind: ErrIllegalDataSource, Detail: expected}
}
