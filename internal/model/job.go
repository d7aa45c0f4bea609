package model

import "time"

// JobState represents the current state of a scheduled job
type JobState string

const (
	JobStateScheduled JobState = "scheduled"
	JobStateRunning   JobState = "running"
	JobStateExhausted JobState = "exhausted"
)

// JobStatus is a point-in-time view of one registered job, suitable
// for status reporting. NextRun is zero when the job's trigger has no
// further occurrences.
type JobStatus struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	State   JobState  `json:"state"`
	LastRun time.Time `json:"last_run,omitempty"`
	NextRun time.Time `json:"next_run,omitempty"`
	Active  bool      `json:"active"`
}
