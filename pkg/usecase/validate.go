package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// ValidationIssue represents a single inconsistency found in stored data
type ValidationIssue struct {
	JobID       types.JobID
	CandidateID types.CandidateID
	Message     string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

// AddIssue adds a validation issue to the result
func (r *ValidationResult) AddIssue(issue ValidationIssue) {
	r.Issues = append(r.Issues, issue)
}

// ValidateDB checks that pipeline boards only reference existing
// candidates, that no candidate occupies two stages of one board, and that
// no two records are mirrored to the same CRM object. It does NOT modify
// any data.
func (uc *UseCases) ValidateDB(ctx context.Context) (*ValidationResult, error) {
	result := &ValidationResult{}

	candidates, err := uc.repo.Candidate().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates")
	}
	jobs, err := uc.repo.Job().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs")
	}

	known := make(map[types.CandidateID]bool, len(candidates))
	contacts := make(map[string]types.CandidateID)
	for _, c := range candidates {
		known[c.ID] = true
		if c.RemoteID == "" {
			continue
		}
		if other, ok := contacts[c.RemoteID]; ok {
			result.AddIssue(ValidationIssue{
				CandidateID: c.ID,
				Message:     fmt.Sprintf("CRM contact %s is shared with candidate %s", c.RemoteID, other),
			})
			continue
		}
		contacts[c.RemoteID] = c.ID
	}

	deals := make(map[string]types.JobID)
	for _, j := range jobs {
		if j.RemoteID != "" {
			if other, ok := deals[j.RemoteID]; ok {
				result.AddIssue(ValidationIssue{
					JobID:   j.ID,
					Message: fmt.Sprintf("CRM deal %s is shared with job %s", j.RemoteID, other),
				})
			} else {
				deals[j.RemoteID] = j.ID
			}
		}

		board, err := uc.repo.Board().Get(ctx, j.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get board", goerr.V(model.JobIDKey, j.ID))
		}
		if board != nil {
			validateBoard(result, board, known)
		}
	}

	return result, nil
}

func validateBoard(result *ValidationResult, board *model.PipelineBoard, known map[types.CandidateID]bool) {
	placed := make(map[types.CandidateID]types.Stage)
	for _, stage := range types.AllStages() {
		for _, id := range board.Stages[stage] {
			if prev, ok := placed[id]; ok {
				result.AddIssue(ValidationIssue{
					JobID:       board.JobID,
					CandidateID: id,
					Message:     fmt.Sprintf("candidate is in both %s and %s", prev, stage),
				})
				continue
			}
			placed[id] = stage

			if !known[id] {
				result.AddIssue(ValidationIssue{
					JobID:       board.JobID,
					CandidateID: id,
					Message:     "candidate on board does not exist",
				})
			}
		}
	}
}
