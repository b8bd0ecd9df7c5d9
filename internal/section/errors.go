package section

import (
	"errors"
	"fmt"
)

var (
	// ErrNestedSection is returned when an open tag appears inside an open section.
	ErrNestedSection = errors.New("nested protected section")
	// ErrDuplicateSection is returned when two regions of one file share a name.
	ErrDuplicateSection = errors.New("duplicate protected section name")
	// ErrInvalidSectionName is returned when a requested name cannot be written as a tag.
	ErrInvalidSectionName = errors.New("invalid protected section name")
)

// ScanError describes a fatal problem found while scanning a file.
type ScanError struct {
	Path      string // file being scanned, empty for in-memory input
	Section   string // name of the offending open tag
	Enclosing string // section that was open, for ErrNestedSection
	Line      int    // 0-based line of the offending tag
	Err       error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}

	if errors.Is(e.Err, ErrNestedSection) {
		return fmt.Sprintf("%s:%d: %v: %q opened inside %q", where, e.Line+1, e.Err, e.Section, e.Enclosing)
	}

	return fmt.Sprintf("%s:%d: %v: %q", where, e.Line+1, e.Err, e.Section)
}

// Unwrap returns the sentinel error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// AnomalyKind classifies non-fatal scan findings.
type AnomalyKind int

const (
	// StrayCloseTag is a close tag with no open section.
	StrayCloseTag AnomalyKind = iota
	// UnterminatedSection is a section still open at end of input. Its content is dropped.
	UnterminatedSection
)

// String returns the kind label.
func (k AnomalyKind) String() string {
	switch k {
	case StrayCloseTag:
		return "stray close tag"
	case UnterminatedSection:
		return "unterminated section"
	default:
		return "unknown anomaly"
	}
}

// Anomaly is a non-fatal finding reported by the scanner.
type Anomaly struct {
	Kind    AnomalyKind
	Section string // empty for StrayCloseTag
	Line    int    // 0-based
	Leader  string
}

// String formats the anomaly for logs and UIs.
func (a Anomaly) String() string {
	if a.Section == "" {
		return fmt.Sprintf("line %d: %s", a.Line+1, a.Kind)
	}

	return fmt.Sprintf("line %d: %s %q", a.Line+1, a.Kind, a.Section)
}
