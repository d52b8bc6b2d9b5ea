package layout

import "fmt"

// LayoutErrorKind enumerates layout calculation failures.
type LayoutErrorKind uint8

const (
	// LayoutErrSizeOverflow indicates an aggregate larger than Target.MaxSize.
	LayoutErrSizeOverflow LayoutErrorKind = iota + 1
	// LayoutErrTooManyVariants indicates an enum whose tag does not fit a u8.
	LayoutErrTooManyVariants
	// LayoutErrBadWidth indicates an elementary width outside 1..=256.
	LayoutErrBadWidth
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Name  string // aggregate or type name, may be empty for tuples
	Value int    // offending size, variant count or width
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := e.Name
	if name == "" {
		name = "<anonymous>"
	}
	switch e.Kind {
	case LayoutErrSizeOverflow:
		return fmt.Sprintf("type %s is too large: %d bytes", name, e.Value)
	case LayoutErrTooManyVariants:
		return fmt.Sprintf("enum %s has %d variants, at most 256 are allowed", name, e.Value)
	case LayoutErrBadWidth:
		return fmt.Sprintf("elementary width %d is out of range 1..=%d", e.Value, MaxElementaryWidth)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, name)
	}
}
