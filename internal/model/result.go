package model

import "keepgen.dev/pkg/keepgen/internal/section"

// Status is the outcome of one generation.
type Status int

const (
	// StatusWritten means the destination was created or replaced.
	StatusWritten Status = iota
	// StatusUnchanged means the rendered output equals the existing file; nothing was written.
	StatusUnchanged
	// StatusDryRun means the output was rendered but not written.
	StatusDryRun
	// StatusFailed means the generation aborted and the destination was left untouched.
	StatusFailed
)

// String returns the status label.
func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusDryRun:
		return "dry-run"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports one generation.
type Result struct {
	Job         Path // job file, empty for CLI requests
	Template    string
	Destination Path
	Status      Status
	Sections    int // protected sections carried over from the previous file
	Anomalies   []section.Anomaly
	Changed     bool   // rendered output differs from the previous file
	Diff        string // unified diff, dry runs only
	Err         error
}

// Label returns the job file, or the template when the request came from the CLI.
func (r Result) Label() string {
	if r.Job != "" {
		return string(r.Job)
	}

	return r.Template
}
