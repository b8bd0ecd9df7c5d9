package section

import "strings"

// Entry binds a file type (an extension such as ".py") to a comment leader.
type Entry struct {
	FileType string
	Leader   string
}

var defaultEntries = []Entry{
	{".js", "//"},
	{".py", "#"},
	{".rb", "#"},
	{".java", "//"},
	{".swift", "//"},
	{".cpp", "//"},
	{".php", "//"},
	{".pl", "#"},
	{".r", "#"},
	{".scala", "//"},
	{".sh", "#"},
	{".ps1", "#"},
	{".bat", "REM"},
	{".groovy", "//"},
	{".kt", "//"},
	{".m", "//"},
	{".ts", "//"},
	{".sql", "--"},
	{".css", "/*"},
	{".html", "<!--"},
	{".xml", "<!--"},
	{".md", "[//]:# ("},
	{".md", "[//]: # ("},
	{".ini", ";"},
	{".cfg", "//"},
	{".jinja", "{#"},
	{".ui", "<!--"},
	{".go", "//"},
	{".tmpl", "{{/*"},
	{".yaml", "#"},
	{".yml", "#"},
	{".toml", "#"},
}

// Registry maps file types to the comment leaders accepted for them.
//
// A Registry is configured once and then only read. It is not safe to
// Register while other goroutines Lookup.
type Registry struct {
	entries []Entry
}

// NewRegistry returns a registry seeded with the built-in leader table.
func NewRegistry() *Registry {
	entries := make([]Entry, len(defaultEntries))
	copy(entries, defaultEntries)

	return &Registry{entries: entries}
}

// NewEmptyRegistry returns a registry without any entries.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// Register appends a leader for fileType. A missing leading dot is added.
// Registering the same pair twice is allowed.
func (r *Registry) Register(fileType, leader string) {
	r.entries = append(r.entries, Entry{FileType: normalizeFileType(fileType), Leader: leader})
}

// Lookup returns every leader registered for fileType, in registration order.
func (r *Registry) Lookup(fileType string) []string {
	fileType = normalizeFileType(fileType)

	var leaders []string

	for _, e := range r.entries {
		if e.FileType == fileType {
			leaders = append(leaders, e.Leader)
		}
	}

	return leaders
}

// Entries returns a copy of all entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)

	return out
}

func normalizeFileType(fileType string) string {
	if fileType == "" || strings.HasPrefix(fileType, ".") {
		return fileType
	}

	return "." + fileType
}
