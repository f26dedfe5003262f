package types

import "fmt"

// CandidateStatus represents where a candidate is in the hiring lifecycle
type CandidateStatus string

const (
	CandidateStatusAvailable CandidateStatus = "available"
	CandidateStatusInProcess CandidateStatus = "in_process"
	CandidateStatusPlaced    CandidateStatus = "placed"
	CandidateStatusInactive  CandidateStatus = "inactive"
)

// AllCandidateStatuses returns all valid candidate statuses
func AllCandidateStatuses() []CandidateStatus {
	return []CandidateStatus{
		CandidateStatusAvailable,
		CandidateStatusInProcess,
		CandidateStatusPlaced,
		CandidateStatusInactive,
	}
}

// IsValid checks if the candidate status is valid
func (s CandidateStatus) IsValid() bool {
	switch s {
	case CandidateStatusAvailable,
		CandidateStatusInProcess,
		CandidateStatusPlaced,
		CandidateStatusInactive:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as CandidateStatusAvailable
func (s CandidateStatus) Normalize() CandidateStatus {
	if s == "" {
		return CandidateStatusAvailable
	}
	return s
}

func (s CandidateStatus) String() string {
	return string(s)
}

// ParseCandidateStatus parses a string into a CandidateStatus
func ParseCandidateStatus(s string) (CandidateStatus, error) {
	status := CandidateStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid candidate status: %s", s)
	}
	return status, nil
}
