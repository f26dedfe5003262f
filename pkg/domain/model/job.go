package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// Job is an open requisition, mirrored as a CRM deal
type Job struct {
	ID           types.JobID     `json:"id"`
	Title        string          `json:"title"`
	Company      string          `json:"company"`
	Location     string          `json:"location"`
	Status       types.JobStatus `json:"status"`
	Description  string          `json:"description"`
	Requirements string          `json:"requirements"`
	Salary       string          `json:"salary,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	RemoteID     string          `json:"remoteId,omitempty"`
}

// IsSynced reports whether the job has a CRM deal id
func (j *Job) IsSynced() bool {
	return j.RemoteID != ""
}

func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return goerr.Wrap(ErrInvalidJob, "title is required", goerr.V(JobIDKey, j.ID))
	}
	if j.Status != "" && !j.Status.IsValid() {
		return goerr.Wrap(ErrInvalidJob, "unknown status",
			goerr.V(JobIDKey, j.ID), goerr.V("status", j.Status))
	}
	return nil
}

func (j *Job) Clone() *Job {
	copied := *j
	return &copied
}

// MatchesQuery reports whether q occurs in the title, company or location
func (j *Job) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(j.Title), q) ||
		strings.Contains(strings.ToLower(j.Company), q) ||
		strings.Contains(strings.ToLower(j.Location), q)
}
