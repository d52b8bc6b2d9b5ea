package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Semantic: types, ownership and borrowing
	SemaInfo                   Code = 3000
	SemaError                  Code = 3001
	SemaTypeMismatch           Code = 3002
	SemaIllegalMutBorrow       Code = 3003
	SemaIllegalSharedBorrow    Code = 3004
	SemaModifiedBorrowedData   Code = 3005
	SemaAlreadyAssigned        Code = 3006
	SemaVariableNotInitialized Code = 3007
	SemaDataNotMutable         Code = 3008
	SemaUnknownVariable        Code = 3009
	SemaLifetimeMismatch       Code = 3010
	SemaUseAfterMove           Code = 3011
	SemaUnknownType            Code = 3012
	SemaGenericArity           Code = 3013
	SemaRecursiveType          Code = 3014
	SemaTypeTooLarge           Code = 3015
	SemaDuplicateDecl          Code = 3016

	IOLoadFileError Code = 4001

	// Project manifest
	ProjInfo             Code = 5000
	ProjManifestNotFound Code = 5001
	ProjManifestSyntax   Code = 5002
	ProjManifestInvalid  Code = 5003
	ProjBadTypeExpr      Code = 5004

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Compiler defects
	InternalInfo              Code = 9000
	InternalBorrowState       Code = 9001
	InternalDataSource        Code = 9002
	InternalMalformedGenerics Code = 9003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                "Unknown error",
		SemaInfo:                   "Semantic information",
		SemaError:                  "Semantic error",
		SemaTypeMismatch:           "Type mismatch",
		SemaIllegalMutBorrow:       "Cannot borrow as mutable",
		SemaIllegalSharedBorrow:    "Cannot borrow as shared",
		SemaModifiedBorrowedData:   "Modification while borrowed",
		SemaAlreadyAssigned:        "Data assigned twice",
		SemaVariableNotInitialized: "Variable not initialized",
		SemaDataNotMutable:         "Variable is not mutable",
		SemaUnknownVariable:        "Unknown variable",
		SemaLifetimeMismatch:       "Value does not live long enough",
		SemaUseAfterMove:           "Use of moved value",
		SemaUnknownType:            "Unknown type",
		SemaGenericArity:           "Wrong number of generic arguments",
		SemaRecursiveType:          "Recursive type has no finite layout",
		SemaTypeTooLarge:           "Type is too large",
		SemaDuplicateDecl:          "Duplicate declaration",
		IOLoadFileError:            "I/O load file error",
		ProjInfo:                   "Project information",
		ProjManifestNotFound:       "Manifest not found",
		ProjManifestSyntax:         "Manifest syntax error",
		ProjManifestInvalid:        "Invalid manifest entry",
		ProjBadTypeExpr:            "Malformed type expression",
		ObsInfo:                    "Observability information",
		ObsTimings:                 "Pipeline timings",
		InternalInfo:               "Internal information",
		InternalBorrowState:        "Illegal borrow checker state",
		InternalDataSource:         "Illegal data source",
		InternalMalformedGenerics:  "Malformed generics table",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("INT%04d", ic)
	}
	return "E0000"
}

// IsInternal reports whether the code marks a compiler defect.
func (c Code) IsInternal() bool {
	return c >= 9000 && c < 10000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
