package mono

import (
	"fmt"
	"strings"
)

// InstantiationErrorKind enumerates reasons an instantiation fails.
type InstantiationErrorKind uint8

const (
	// ErrSlotOutOfRange: a template refers to a generic slot the table does
	// not have. The caller built a table that does not match the template's
	// arity, so this is a compiler defect rather than a user error.
	ErrSlotOutOfRange InstantiationErrorKind = iota + 1
	// ErrRecursiveTemplate: a template reached itself while being instantiated.
	ErrRecursiveTemplate
	// ErrLayout: the generated aggregate could not be laid out.
	ErrLayout
)

func (k InstantiationErrorKind) String() string {
	switch k {
	case ErrSlotOutOfRange:
		return "slot-out-of-range"
	case ErrRecursiveTemplate:
		return "recursive-template"
	case ErrLayout:
		return "layout"
	default:
		return fmt.Sprintf("InstantiationErrorKind(%d)", k)
	}
}

// InstantiationError describes a failed monomorphization.
type InstantiationError struct {
	Kind     InstantiationErrorKind
	Template string
	Slot     int      // for ErrSlotOutOfRange
	Arity    int      // table length, for ErrSlotOutOfRange
	Chain    []string // for ErrRecursiveTemplate
	Err      error    // for ErrLayout
}

func (e *InstantiationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	name := e.Template
	if name == "" {
		name = "<template>"
	}
	switch e.Kind {
	case ErrSlotOutOfRange:
		return fmt.Sprintf("malformed generics for %s: slot %d requested, table has %d entries", name, e.Slot, e.Arity)
	case ErrRecursiveTemplate:
		if len(e.Chain) == 0 {
			return fmt.Sprintf("template %s contains itself", name)
		}
		return fmt.Sprintf("template %s contains itself (%s)", name, strings.Join(e.Chain, " -> "))
	case ErrLayout:
		return fmt.Sprintf("cannot lay out %s: %v", name, e.Err)
	default:
		return fmt.Sprintf("instantiation of %s failed (kind=%d)", name, e.Kind)
	}
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// withTemplate fills in the template name on errors coming from slots.
func withTemplate(err error, name string) error {
	if ie, ok := err.(*InstantiationError); ok && ie.Template == "" {
		ie.Template = name
	}
	return err
}
