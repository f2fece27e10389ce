package model

import "time"

// GateInput identifies the commit a release gate run inspects
type GateInput struct {
	Owner        string // Repository owner
	Repo         string // Repository name
	CommitSHA    string // Head commit of the qualifying push
	ManifestPath string // Path of the manifest file within the repository
}

// GateDecision is the outcome of a gate run
type GateDecision string

const (
	DecisionReleased GateDecision = "released"
	DecisionSkipped  GateDecision = "skipped"
)

// GateResult represents the outcome of a completed gate run
type GateResult struct {
	Decision    GateDecision
	PrevVersion string // Version at the parent commit, empty when unresolved
	CurrVersion string // Version at the head commit
	Tag         string // Release tag, set only when released
	ReleaseURL  string // HTML URL of the created release, if any
}

// GateRun is a persisted audit record of a completed gate run
type GateRun struct {
	ID          string
	Owner       string
	Repo        string
	CommitSHA   string
	PrevVersion string
	CurrVersion string
	Released    bool
	Tag         string
	CreatedAt   time.Time
}
