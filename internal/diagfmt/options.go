package diagfmt

// PathMode selects how file paths are printed.
type PathMode uint8

const (
	// PathModeAuto prints paths as registered in the file set.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	// PathModeRelative prints paths relative to BaseDir.
	PathModeRelative
	PathModeBasename
)

type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
}

type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int  // caps the output only; the bag is untouched
	IncludeNotes     bool // timing notes are always included
}
