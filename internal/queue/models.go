package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether no further automatic transition leaves the status.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is one submitted render request persisted in the store.
type Job struct {
	ID         string
	Status     Status
	Progress   int
	InputPath  string
	OutputPath string
	WorkDir    string
	Message    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Finished reports whether the job reached a terminal state.
func (j *Job) Finished() bool {
	return j.Status.Terminal()
}

// SetFailed marks the job as failed with the given message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.Message = message
}

// StartProcessing resets the job for a fresh render attempt.
func (j *Job) StartProcessing(message string) {
	j.Status = StatusProcessing
	j.Progress = 0
	j.Message = message
}
