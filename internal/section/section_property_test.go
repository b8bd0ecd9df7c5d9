package section

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildDocument writes every section in order between filler lines, the way a
// template calling GetSection for each name would.
func buildDocument(store *Store, names []string, leader string, markers Markers) (string, error) {
	var b strings.Builder

	for i, name := range names {
		b.WriteString("line before ")
		b.WriteString(name)
		b.WriteString("\n")
		sect, err := GetSection(store, name, leader, markers)
		if err != nil {
			return "", err
		}

		b.WriteString(sect)
		b.WriteString("\n")

		if i == len(names)-1 {
			b.WriteString("tail\n")
		}
	}

	return b.String(), nil
}

// padded surrounds some identifiers with blanks, the way a template author
// might write "greet " by accident.
func padded(name string) string {
	switch len(name) % 3 {
	case 1:
		return " " + name
	case 2:
		return name + "\t "
	default:
		return name
	}
}

func uniqueNames(names []string) []string {
	seen := map[string]bool{}

	var out []string

	for _, name := range names {
		key := strings.TrimSpace(name)
		if key == "" || seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, name)
	}

	return out
}

func TestSectionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	markers := DefaultMarkers()
	scanner := NewScanner(markers)

	properties.Property("render after scan reproduces the document", prop.ForAll(
		func(rawNames []string, body []string) bool {
			names := uniqueNames(rawNames)
			if len(names) == 0 {
				return true
			}

			// seed a store whose first section carries body
			var seed strings.Builder
			seed.WriteString(markers.OpenTag("#", strings.TrimSpace(names[0])) + "\n")
			for _, line := range body {
				seed.WriteString("  " + line + "  \n")
			}
			seed.WriteString(markers.CloseTag("#") + "\n")

			seeded, err := scanner.Scan(SplitLines(seed.String()), []string{"#"})
			if err != nil {
				return false
			}

			first, err := buildDocument(seeded, names, "#", markers)
			if err != nil {
				return false
			}

			kept, ok := seeded.Get(strings.TrimSpace(names[0]))
			if !ok || !strings.Contains(first, strings.Join(kept.Inner(), "\n")) {
				return false
			}

			rescanned, err := scanner.Scan(SplitLines(first), []string{"#"})
			if err != nil || rescanned.Len() != len(names) {
				return false
			}

			second, err := buildDocument(rescanned, names, "#", markers)

			return err == nil && second == first
		},
		gen.SliceOf(gen.Identifier().Map(padded)),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("scanned content is the stripped inner text", prop.ForAll(
		func(name string, body []string) bool {
			text := markers.OpenTag("//", name) + "\n" + strings.Join(body, "\n") + "\n" + markers.CloseTag("//")
			if len(body) == 0 {
				text = markers.OpenTag("//", name) + "\n" + markers.CloseTag("//")
			}

			store, err := scanner.Scan(SplitLines(text), []string{"//"})
			if err != nil {
				return false
			}

			sect, ok := store.Get(name)

			return ok && sect.Content() == strings.Join(body, "\n")
		},
		gen.Identifier(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("names holding the close marker are rejected", prop.ForAll(
		func(left, right string) bool {
			_, err := GetSection(EmptyStore(), left+markers.Close+right, "#", markers)
			return errors.Is(err, ErrInvalidSectionName)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
