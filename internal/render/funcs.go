package render

import (
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"keepgen.dev/pkg/keepgen/internal/section"
)

func (r *Renderer) funcMap() template.FuncMap {
	return template.FuncMap{
		// {{ .ProtectedSections | getsect "name" "#" }}
		"getsect": func(name, leader string, store *section.Store) (string, error) {
			return section.GetSection(store, name, leader, r.markers)
		},
		"quotation":  quotation,
		"exttrim":    strings.TrimSpace,
		"check":      check,
		"join":       join,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"title":      title,
		"capitalize": capitalize,
	}
}

func quotation(s string) string {
	return `"` + s + `"`
}

func check(v any) any {
	slog.Debug("template check", "value", v, "type", fmt.Sprintf("%T", v))
	return v
}

// join accepts the list shapes produced by job decoders and --set flags.
func join(sep string, items any) string {
	switch list := items.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(list, sep)
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}

		return strings.Join(parts, sep)
	default:
		return fmt.Sprint(list)
	}
}

func title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
