package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TenantID identifies a CRM portal (one customer's CRM account)
type TenantID string

func (x TenantID) String() string { return string(x) }

func (x TenantID) Validate() error {
	if x == "" {
		return goerr.New("tenant ID is empty")
	}
	return nil
}

// CandidateID identifies a candidate in the local store
type CandidateID string

func NewCandidateID() CandidateID { return CandidateID(uuid.NewString()) }

func (x CandidateID) String() string { return string(x) }

func (x CandidateID) Validate() error {
	if x == "" {
		return goerr.New("candidate ID is empty")
	}
	return nil
}

// JobID identifies a job in the local store
type JobID string

func NewJobID() JobID { return JobID(uuid.NewString()) }

func (x JobID) String() string { return string(x) }

func (x JobID) Validate() error {
	if x == "" {
		return goerr.New("job ID is empty")
	}
	return nil
}
