package model

// Job describes one generation request as stored in a job file.
type Job struct {
	Source    Path           // job file the request was loaded from, empty for CLI requests
	Template  string         // template name, resolved against the search paths
	DestPath  string         // destination directory, relative to the template directory
	Filename  string         // destination file name, defaults to the template name minus its last extension
	Protected *bool          // nil means use the configured default
	Context   map[string]any // values exposed to the template
}

// ProtectedOr returns the job's protected-section setting or def when unset.
func (j Job) ProtectedOr(def bool) bool {
	if j.Protected == nil {
		return def
	}

	return *j.Protected
}
