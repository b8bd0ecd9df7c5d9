package section

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(text string) []string {
	return SplitLines(strings.TrimPrefix(text, "\n"))
}

func TestScanner_Scan(t *testing.T) {
	scanner := NewScanner(DefaultMarkers())

	t.Run("captures a single section", func(t *testing.T) {
		src := lines(`
# >>> greet <<<
print("hello")
# >>> <<<`)

		store, err := scanner.Scan(src, []string{"#"})
		require.NoError(t, err)
		require.Equal(t, 1, store.Len())

		sect, ok := store.Get("greet")
		require.True(t, ok)
		assert.Equal(t, 0, sect.FirstLine)
		assert.Equal(t, 2, sect.LastLine)
		assert.Equal(t, 3, sect.LineCount())
		assert.Equal(t, src, sect.Lines)
		assert.Equal(t, `print("hello")`, sect.Content())
		assert.Equal(t, "#", sect.Leader)
		assert.Empty(t, store.Anomalies())
	})

	t.Run("strips inner lines and tolerates whitespace around tags", func(t *testing.T) {
		src := lines(`
class A:
    def run(self):
        #   >>>    body   <<<   trailing words
        x = 1
          return x
        # >>><<<
`)

		store, err := scanner.Scan(src, []string{"#"})
		require.NoError(t, err)

		sect, ok := store.Get("body")
		require.True(t, ok)
		assert.Equal(t, 2, sect.FirstLine)
		assert.Equal(t, 5, sect.LastLine)
		assert.Equal(t, "x = 1\nreturn x", sect.Content())
	})

	t.Run("keeps sections in file order", func(t *testing.T) {
		src := lines(`
// >>> b <<<
// >>> <<<
code()
// >>> a <<<
one()
// >>> <<<
// >>> c <<<
// >>> <<<`)

		store, err := scanner.Scan(src, []string{"//"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, store.Names())

		sect, _ := store.Get("b")
		assert.Empty(t, sect.Inner())
		assert.Equal(t, "", sect.Content())
	})

	t.Run("ignores tags of other leaders", func(t *testing.T) {
		src := lines(`
// >>> js <<<
x
// >>> <<<`)

		store, err := scanner.Scan(src, []string{"#"})
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("escapes leaders with regexp meta characters", func(t *testing.T) {
		src := lines(`
/* >>> style <<<
.a { color: red; }
/* >>> <<<
[//]: # ( >>> notes <<< )
keep me
[//]: # ( >>> <<< )`)

		store, err := scanner.Scan(src, []string{"/*", "[//]: # ("})
		require.NoError(t, err)
		assert.Equal(t, []string{"style", "notes"}, store.Names())

		notes, ok := store.Get("notes")
		require.True(t, ok)
		assert.Equal(t, "keep me", notes.Content())
	})

	t.Run("leader is not treated as a pattern", func(t *testing.T) {
		src := lines(`
xx >>> fake <<<
xx >>> <<<`)

		store, err := scanner.Scan(src, []string{".."})
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("duplicate leaders are harmless", func(t *testing.T) {
		src := lines(`
# >>> greet <<<
hi
# >>> <<<
# >>> <<<`)

		store, err := scanner.Scan(src, []string{"#", "#"})
		require.NoError(t, err)
		assert.Equal(t, 1, store.Len())
		assert.Len(t, store.Anomalies(), 1)
	})

	t.Run("regions of different leaders may overlap", func(t *testing.T) {
		src := lines(`
// >>> outer <<<
/* >>> inner <<< */
x
/* >>> <<< */
// >>> <<<`)

		store, err := scanner.Scan(src, []string{"//", "/*"})
		require.NoError(t, err)
		assert.Equal(t, []string{"outer", "inner"}, store.Names())

		inner, _ := store.Get("inner")
		assert.Equal(t, "x", inner.Content())
	})

	t.Run("empty input yields empty store", func(t *testing.T) {
		store, err := scanner.Scan(nil, []string{"#"})
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("no leaders yields empty store", func(t *testing.T) {
		store, err := scanner.Scan(lines("# >>> a <<<\n# >>> <<<"), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, store.Len())
	})
}

func TestScanner_FatalErrors(t *testing.T) {
	scanner := NewScanner(DefaultMarkers())

	t.Run("nested section", func(t *testing.T) {
		src := lines(`
# >>> A <<<
a
# >>> B <<<
b
# >>> <<<
# >>> <<<`)

		store, err := scanner.Scan(src, []string{"#"})
		require.Error(t, err)
		assert.Nil(t, store)
		assert.True(t, errors.Is(err, ErrNestedSection))

		var scanErr *ScanError
		require.True(t, errors.As(err, &scanErr))
		assert.Equal(t, "B", scanErr.Section)
		assert.Equal(t, "A", scanErr.Enclosing)
		assert.Equal(t, 2, scanErr.Line)
	})

	t.Run("duplicate name", func(t *testing.T) {
		src := lines(`
# >>> A <<<
# >>> <<<
# >>> A <<<
# >>> <<<`)

		_, err := scanner.Scan(src, []string{"#"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateSection))
		assert.False(t, errors.Is(err, ErrNestedSection))
	})

	t.Run("source errors carry the path and names", func(t *testing.T) {
		_, err := scanner.ScanSource("/tmp/out.py", "# >>> A <<<\n# >>> B <<<\n", []string{"#"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "/tmp/out.py")
		assert.Contains(t, err.Error(), `"A"`)
		assert.Contains(t, err.Error(), `"B"`)
	})
}

func TestScanner_Anomalies(t *testing.T) {
	scanner := NewScanner(DefaultMarkers())

	t.Run("stray close tag is reported and skipped", func(t *testing.T) {
		src := lines(`
# >>> <<<
# >>> a <<<
x
# >>> <<<`)

		store, err := scanner.Scan(src, []string{"#"})
		require.NoError(t, err)
		assert.True(t, store.Has("a"))

		anomalies := store.Anomalies()
		require.Len(t, anomalies, 1)
		assert.Equal(t, StrayCloseTag, anomalies[0].Kind)
		assert.Equal(t, 0, anomalies[0].Line)
	})

	t.Run("unterminated section is dropped", func(t *testing.T) {
		src := lines(`
# >>> kept <<<
1
# >>> <<<
# >>> lost <<<
2`)

		store, err := scanner.Scan(src, []string{"#"})
		require.NoError(t, err)
		assert.True(t, store.Has("kept"))
		assert.False(t, store.Has("lost"))

		anomalies := store.Anomalies()
		require.Len(t, anomalies, 1)
		assert.Equal(t, UnterminatedSection, anomalies[0].Kind)
		assert.Equal(t, "lost", anomalies[0].Section)
		assert.Equal(t, 3, anomalies[0].Line)
		assert.Contains(t, anomalies[0].String(), "unterminated section")
	})
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\r\nb\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
}

func TestStore_NilSafe(t *testing.T) {
	var store *Store

	_, ok := store.Get("x")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
	assert.Nil(t, store.Names())
	assert.Nil(t, store.Sections())
	assert.Nil(t, store.Anomalies())
}
