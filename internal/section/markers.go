// Package section finds protected regions in generated files and keeps their
// content between generation runs.
//
// A protected region starts with an open tag and ends with a close tag, both
// written as comments of the file's language:
//
//	# >>> greet <<<
//	print("hello")
//	# >>> <<<
package section

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultOpenMarker is the marker placed after the comment leader.
	DefaultOpenMarker = ">>>"
	// DefaultCloseMarker terminates the section name.
	DefaultCloseMarker = "<<<"
)

// Markers holds the delimiters surrounding a section name in a tag line.
type Markers struct {
	Open  string
	Close string
}

// DefaultMarkers returns the >>> / <<< marker pair.
func DefaultMarkers() Markers {
	return Markers{Open: DefaultOpenMarker, Close: DefaultCloseMarker}
}

// WithDefaults fills empty delimiters with the default ones.
func (mk Markers) WithDefaults() Markers {
	if mk.Open == "" {
		mk.Open = DefaultOpenMarker
	}

	if mk.Close == "" {
		mk.Close = DefaultCloseMarker
	}

	return mk
}

// OpenTag renders the tag line that opens section name.
func (mk Markers) OpenTag(leader, name string) string {
	return fmt.Sprintf("%s %s %s %s", leader, mk.Open, name, mk.Close)
}

// CloseTag renders the tag line that closes the current section.
func (mk Markers) CloseTag(leader string) string {
	return fmt.Sprintf("%s %s %s", leader, mk.Open, mk.Close)
}

// BuildPattern compiles the tag matcher for one comment leader. The leader and
// both markers are matched literally. The named group "name" captures the
// section name and is empty for close tags.
func BuildPattern(leader string, markers Markers) *regexp.Regexp {
	markers = markers.WithDefaults()

	var b strings.Builder

	b.WriteString(`^\s*`)
	b.WriteString(regexp.QuoteMeta(leader))
	b.WriteString(`\s*`)
	b.WriteString(regexp.QuoteMeta(markers.Open))
	b.WriteString(`\s*(?P<name>.*?)\s*`)
	b.WriteString(regexp.QuoteMeta(markers.Close))
	b.WriteString(`.*$`)

	return regexp.MustCompile(b.String())
}
