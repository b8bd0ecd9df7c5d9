package section

import (
	"errors"
	"log/slog"
	"strings"
)

// Scanner extracts protected sections from the lines of a file.
type Scanner struct {
	Markers Markers
}

// NewScanner returns a Scanner using markers; empty markers fall back to the defaults.
func NewScanner(markers Markers) Scanner {
	return Scanner{Markers: markers.WithDefaults()}
}

// Scan walks lines once per distinct leader and collects every closed section.
//
// Nested open tags and reused names are fatal and return a *ScanError.
// Stray close tags and sections left open at end of input are recorded as
// anomalies on the returned store.
func (s Scanner) Scan(lines []string, leaders []string) (*Store, error) {
	store := EmptyStore()

	for _, leader := range distinct(leaders) {
		if err := s.scanLeader(store, lines, leader); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// ScanSource splits text into lines and scans it. path is only used to
// identify the file in errors and logs.
func (s Scanner) ScanSource(path, text string, leaders []string) (*Store, error) {
	store, err := s.Scan(SplitLines(text), leaders)
	if err != nil {
		var scanErr *ScanError
		if errors.As(err, &scanErr) {
			scanErr.Path = path
		}

		return nil, err
	}

	for _, anomaly := range store.anomalies {
		slog.Warn("protected section anomaly", "path", path, "kind", anomaly.Kind.String(), "section", anomaly.Section, "line", anomaly.Line+1)
	}

	slog.Debug("scanned protected sections", "path", path, "sections", store.Len(), "leaders", leaders)

	return store, nil
}

func (s Scanner) scanLeader(store *Store, lines []string, leader string) error {
	pattern := BuildPattern(leader, s.Markers)
	nameIndex := pattern.SubexpIndex("name")

	var (
		opened    bool
		openName  string
		openStart = -1
	)

	for i, line := range lines {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		name := match[nameIndex]

		if name == "" {
			if !opened {
				store.anomalies = append(store.anomalies, Anomaly{Kind: StrayCloseTag, Line: i, Leader: leader})
				continue
			}

			if existing, ok := store.sections[openName]; !ok || existing.FirstLine != openStart {
				captured := make([]string, i-openStart+1)
				copy(captured, lines[openStart:i+1])

				store.add(Section{
					Name:      openName,
					FirstLine: openStart,
					LastLine:  i,
					Lines:     captured,
					Leader:    leader,
				})
			}

			opened, openName, openStart = false, "", -1

			continue
		}

		if opened {
			return &ScanError{Section: name, Enclosing: openName, Line: i, Err: ErrNestedSection}
		}

		// the same region may already have been captured through another leader
		if existing, ok := store.sections[name]; ok && existing.FirstLine != i {
			return &ScanError{Section: name, Line: i, Err: ErrDuplicateSection}
		}

		opened, openName, openStart = true, name, i
	}

	if opened {
		store.anomalies = append(store.anomalies, Anomaly{Kind: UnterminatedSection, Section: openName, Line: openStart, Leader: leader})
	}

	return nil
}

// SplitLines splits text on newlines and drops the carriage return of CRLF endings.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

func distinct(leaders []string) []string {
	seen := make(map[string]struct{}, len(leaders))
	out := make([]string, 0, len(leaders))

	for _, leader := range leaders {
		if _, ok := seen[leader]; ok {
			continue
		}

		seen[leader] = struct{}{}
		out = append(out, leader)
	}

	return out
}
