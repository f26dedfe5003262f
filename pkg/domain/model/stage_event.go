package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// StageChangeEvent records a successful pipeline move for the activity feed
type StageChangeEvent struct {
	ID          string            `json:"id"`
	Actor       string            `json:"actor"`
	At          time.Time         `json:"at"`
	JobID       types.JobID       `json:"jobId"`
	CandidateID types.CandidateID `json:"candidateId"`
	From        types.Stage       `json:"from"`
	To          types.Stage       `json:"to"`
}

func NewStageChangeEvent(actor string, at time.Time, jobID types.JobID, candidateID types.CandidateID, from, to types.Stage) *StageChangeEvent {
	return &StageChangeEvent{
		ID:          uuid.NewString(),
		Actor:       actor,
		At:          at.UTC(),
		JobID:       jobID,
		CandidateID: candidateID,
		From:        from,
		To:          to,
	}
}
