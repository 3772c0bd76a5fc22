package domain

import "time"

// RunStatus is the state of a single run.
type RunStatus string

const (
	StatusIdle        RunStatus = "idle"
	StatusValidating  RunStatus = "validating"
	StatusPlanning    RunStatus = "planning"
	StatusExecuting   RunStatus = "executing"
	StatusCompleted   RunStatus = "completed"
	StatusAborted     RunStatus = "aborted"
	StatusInterrupted RunStatus = "interrupted"
)

// RunReport summarises what a run did.
type RunReport struct {
	RunID    string
	Status   RunStatus
	Plan     Plan
	Executed []string
	// PeerFailures are the managed failures that were logged and skipped.
	PeerFailures []*PeerError
	Started      time.Time
	Finished     time.Time
}

// Succeeded reports whether the run reached StatusCompleted.
func (r *RunReport) Succeeded() bool {
	return r != nil && r.Status == StatusCompleted
}
