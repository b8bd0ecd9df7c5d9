package section

import "strings"

// Section is one protected region captured from a file.
type Section struct {
	Name      string
	FirstLine int      // 0-based index of the open tag
	LastLine  int      // 0-based index of the close tag
	Lines     []string // captured lines, both tags included
	Leader    string   // comment leader the tags were written with
}

// LineCount returns the number of lines spanned by the section, tags included.
func (s Section) LineCount() int {
	return s.LastLine - s.FirstLine + 1
}

// Inner returns the lines between the tags, each stripped of surrounding whitespace.
func (s Section) Inner() []string {
	if len(s.Lines) < 2 {
		return nil
	}

	inner := make([]string, 0, len(s.Lines)-2)
	for _, line := range s.Lines[1 : len(s.Lines)-1] {
		inner = append(inner, strings.TrimSpace(line))
	}

	return inner
}

// Content returns the stripped inner lines joined by newlines.
func (s Section) Content() string {
	return strings.Join(s.Inner(), "\n")
}

// Store holds the sections found in one file. It is built by a Scanner and
// read-only afterwards. A nil *Store behaves as an empty store.
type Store struct {
	sections  map[string]Section
	order     []string
	anomalies []Anomaly
}

// EmptyStore returns a store without sections, used for files that do not exist yet.
func EmptyStore() *Store {
	return &Store{sections: map[string]Section{}}
}

// Get returns the section called name.
func (s *Store) Get(name string) (Section, bool) {
	if s == nil {
		return Section{}, false
	}

	sect, ok := s.sections[name]

	return sect, ok
}

// Has reports whether a section called name was captured.
func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Len returns the number of captured sections.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	return len(s.order)
}

// Names returns section names in the order their open tags appear.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}

	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// Sections returns all sections in the order their open tags appear.
func (s *Store) Sections() []Section {
	if s == nil {
		return nil
	}

	out := make([]Section, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.sections[name])
	}

	return out
}

// Anomalies returns the non-fatal findings of the scan that built the store.
func (s *Store) Anomalies() []Anomaly {
	if s == nil {
		return nil
	}

	out := make([]Anomaly, len(s.anomalies))
	copy(out, s.anomalies)

	return out
}

func (s *Store) add(sect Section) {
	s.sections[sect.Name] = sect

	// keep order by first line; leaders are scanned one after another
	i := len(s.order)
	for i > 0 && s.sections[s.order[i-1]].FirstLine > sect.FirstLine {
		i--
	}

	s.order = append(s.order, "")
	copy(s.order[i+1:], s.order[i:])
	s.order[i] = sect.Name
}
