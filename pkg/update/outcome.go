package update

import "github.com/lucas-albers-lz4/vup/pkg/resolve"

// Status classifies what happened to one artifact during a run.
type Status string

const (
	// StatusUpdated means at least one file was (or in dry-run, would be)
	// edited.
	StatusUpdated Status = "updated"
	// StatusUpToDate means the pinned version already matches the best
	// available one.
	StatusUpToDate Status = "up-to-date"
	// StatusSkipped means the artifact could not be evaluated (no parseable
	// pin, no stable versions, structure missing) and was left untouched.
	StatusSkipped Status = "skipped"
	// StatusFailed means the upstream fetch failed after retries.
	StatusFailed Status = "failed"
)

// Change is one applied (or dry-run) edit.
type Change struct {
	Name string
	File string
	Old  string
	New  string
}

// Outcome is the per-artifact result. Major is set whenever a cross-major
// version exists upstream, independent of Status: a fully up-to-date image
// can still have a major upgrade pending human review.
type Outcome struct {
	// Kind is "argo app", "helm chart", or "docker image".
	Kind    string
	Name    string
	Status  Status
	Reason  string
	Changes []Change
	Major   *resolve.MajorUpgrade
}

func skipped(kind, name, reason string) Outcome {
	return Outcome{Kind: kind, Name: name, Status: StatusSkipped, Reason: reason}
}

func failed(kind, name string, err error) Outcome {
	return Outcome{Kind: kind, Name: name, Status: StatusFailed, Reason: err.Error()}
}
