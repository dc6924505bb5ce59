package dataset

import "fmt"

// UnsupportedFormatError indicates the input file extension maps to no
// known tabular reader.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported file format: %s (no extension)", e.Path)
	}
	return fmt.Sprintf("unsupported file format %q: %s", e.Ext, e.Path)
}

// InsufficientRowsError indicates the table has fewer complete rows than the
// requested sample size.
type InsufficientRowsError struct {
	Have int
	Want int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("not enough complete rows to sample: have %d, want %d", e.Have, e.Want)
}
