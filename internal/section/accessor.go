package section

import (
	"fmt"
	"strings"
)

// GetSection renders section name for reinjection into generated output.
//
// When the store holds the section, its stripped inner lines are wrapped in
// freshly built tags. Otherwise an empty section is synthesized. Tags always
// use leader and the given markers, whatever markers the content was
// captured under. The name is trimmed the way the scanner trims it; a name
// that would not scan back to itself is rejected with ErrInvalidSectionName.
func GetSection(store *Store, name, leader string, markers Markers) (string, error) {
	markers = markers.WithDefaults()

	name, err := markers.SectionName(name)
	if err != nil {
		return "", err
	}

	parts := []string{markers.OpenTag(leader, name)}

	if sect, ok := store.Get(name); ok {
		parts = append(parts, sect.Inner()...)
	}

	parts = append(parts, markers.CloseTag(leader))

	return strings.Join(parts, "\n"), nil
}

// SectionName trims name and checks that an open tag built from it scans back
// to the same name.
func (mk Markers) SectionName(name string) (string, error) {
	mk = mk.WithDefaults()
	trimmed := strings.TrimSpace(name)

	switch {
	case trimmed == "":
		return "", fmt.Errorf("%w: empty name", ErrInvalidSectionName)
	case strings.ContainsAny(trimmed, "\r\n"):
		return "", fmt.Errorf("%w: %q spans lines", ErrInvalidSectionName, name)
	case strings.Contains(trimmed, mk.Close):
		return "", fmt.Errorf("%w: %q contains the close marker %q", ErrInvalidSectionName, name, mk.Close)
	}

	return trimmed, nil
}
