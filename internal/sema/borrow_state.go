package sema

import (
	"fmt"
)

// BorrowKind is the discriminant of BorrowState.
type BorrowKind uint8

const (
	BorrowNone BorrowKind = iota
	BorrowMut
	BorrowShared
)

func (k BorrowKind) String() string {
	switch k {
	case BorrowNone:
		return "none"
	case BorrowMut:
		return "mut"
	case BorrowShared:
		return "shared"
	default:
		return fmt.Sprintf("BorrowKind(%d)", k)
	}
}

// BorrowState tracks outstanding borrows of one variable: none, one exclusive
// borrow, or count shared borrows. The zero value is BorrowNone. A failed
// transition leaves the state unchanged.
type BorrowState struct {
	kind  BorrowKind
	count int
}

// SharedState builds Shared(n); n < 1 yields None.
func SharedState(n int) BorrowState {
	if n < 1 {
		return BorrowState{}
	}
	return BorrowState{kind: BorrowShared, count: n}
}

// MutState builds Mut.
func MutState() BorrowState { return BorrowState{kind: BorrowMut} }

func (b BorrowState) Kind() BorrowKind { return b.kind }

// Count returns the number of shared borrows; 0 unless Shared.
func (b BorrowState) Count() int { return b.count }

// IsBorrowed reports whether any borrow is outstanding.
func (b BorrowState) IsBorrowed() bool { return b.kind != BorrowNone }

func (b BorrowState) String() string {
	if b.kind == BorrowShared {
		return fmt.Sprintf("shared(%d)", b.count)
	}
	return b.kind.String()
}

// BorrowMut takes the exclusive borrow. Fails unless the state is None.
func (b *BorrowState) BorrowMut() error {
	if b.kind != BorrowNone {
		return &Error{Kind: ErrIllegalMutBorrow}
	}
	b.kind = BorrowMut
	return nil
}

// FreeMut releases the exclusive borrow.
func (b *BorrowState) FreeMut() error {
	if b.kind != BorrowMut {
		return &Error{Kind: ErrIllegalBorrowState}
	}
	b.kind = BorrowNone
	return nil
}

// IncShared adds a shared borrow. Fails while mutably borrowed.
func (b *BorrowState) IncShared() error {
	switch b.kind {
	case BorrowMut:
		return &Error{Kind: ErrIllegalSharedBorrow}
	case BorrowNone:
		b.kind = BorrowShared
		b.count = 1
	default:
		b.count++
	}
	return nil
}

// DecShared drops a shared borrow, returning to None at zero.
func (b *BorrowState) DecShared() error {
	if b.kind != BorrowShared || b.count < 1 {
		return &Error{Kind: ErrIllegalBorrowState}
	}
	b.count--
	if b.count == 0 {
		b.kind = BorrowNone
	}
	return nil
}
