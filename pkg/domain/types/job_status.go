package types

import "fmt"

// JobStatus represents the state of a job requisition
type JobStatus string

const (
	JobStatusOpen     JobStatus = "open"
	JobStatusFilled   JobStatus = "filled"
	JobStatusArchived JobStatus = "archived"
)

// AllJobStatuses returns all valid job statuses
func AllJobStatuses() []JobStatus {
	return []JobStatus{
		JobStatusOpen,
		JobStatusFilled,
		JobStatusArchived,
	}
}

// IsValid checks if the job status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusOpen,
		JobStatusFilled,
		JobStatusArchived:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as JobStatusOpen
func (s JobStatus) Normalize() JobStatus {
	if s == "" {
		return JobStatusOpen
	}
	return s
}

func (s JobStatus) String() string {
	return string(s)
}

// ParseJobStatus parses a string into a JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	status := JobStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid job status: %s", s)
	}
	return status, nil
}
