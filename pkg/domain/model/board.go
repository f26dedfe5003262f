package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// PipelineBoard maps each stage of one job to the candidates occupying it.
// A candidate appears in at most one stage.
type PipelineBoard struct {
	JobID  types.JobID
	Stages map[types.Stage][]types.CandidateID
}

// NewPipelineBoard returns a board with every stage present and empty
func NewPipelineBoard(jobID types.JobID) *PipelineBoard {
	b := &PipelineBoard{
		JobID:  jobID,
		Stages: make(map[types.Stage][]types.CandidateID, len(types.AllStages())),
	}
	for _, s := range types.AllStages() {
		b.Stages[s] = []types.CandidateID{}
	}
	return b
}

// Clone returns a deep copy of the board
func (b *PipelineBoard) Clone() *PipelineBoard {
	c := &PipelineBoard{
		JobID:  b.JobID,
		Stages: make(map[types.Stage][]types.CandidateID, len(b.Stages)),
	}
	for _, s := range types.AllStages() {
		c.Stages[s] = slices.Clone(b.Stages[s])
		if c.Stages[s] == nil {
			c.Stages[s] = []types.CandidateID{}
		}
	}
	return c
}

// StageOf returns the stage a candidate currently occupies
func (b *PipelineBoard) StageOf(candidateID types.CandidateID) (types.Stage, bool) {
	for _, s := range types.AllStages() {
		if slices.Contains(b.Stages[s], candidateID) {
			return s, true
		}
	}
	return "", false
}

// Add places a candidate in the initial stage. It returns false if the
// candidate is already on the board.
func (b *PipelineBoard) Add(candidateID types.CandidateID) bool {
	if _, ok := b.StageOf(candidateID); ok {
		return false
	}
	b.Stages[types.InitialStage] = append(b.Stages[types.InitialStage], candidateID)
	return true
}

// Remove drops a candidate from whichever stage holds it
func (b *PipelineBoard) Remove(candidateID types.CandidateID) bool {
	stage, ok := b.StageOf(candidateID)
	if !ok {
		return false
	}
	b.Stages[stage] = slices.DeleteFunc(b.Stages[stage], func(id types.CandidateID) bool {
		return id == candidateID
	})
	return true
}

// Move transfers a candidate from one stage to another. Both stages are
// validated before the board is touched, so a failed move leaves it unchanged.
// Moving to the same stage is a no-op and reports moved=false.
func (b *PipelineBoard) Move(candidateID types.CandidateID, from, to types.Stage) (moved bool, err error) {
	if !from.IsValid() {
		return false, goerr.Wrap(ErrInvalidStage, "unknown source stage",
			goerr.V(StageKey, from), goerr.V(JobIDKey, b.JobID))
	}
	if !to.IsValid() {
		return false, goerr.Wrap(ErrInvalidStage, "unknown target stage",
			goerr.V(StageKey, to), goerr.V(JobIDKey, b.JobID))
	}

	idx := slices.Index(b.Stages[from], candidateID)
	if idx < 0 {
		return false, goerr.Wrap(ErrCandidateNotInStage, "candidate not found in stage",
			goerr.V(CandidateIDKey, candidateID), goerr.V(StageKey, from), goerr.V(JobIDKey, b.JobID))
	}

	if from == to {
		return false, nil
	}

	b.Stages[from] = slices.Delete(b.Stages[from], idx, idx+1)
	b.Stages[to] = append(b.Stages[to], candidateID)
	return true, nil
}

// Count returns the number of candidates on the board
func (b *PipelineBoard) Count() int {
	n := 0
	for _, ids := range b.Stages {
		n += len(ids)
	}
	return n
}
