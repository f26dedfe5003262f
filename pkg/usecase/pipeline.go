package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// PipelineUseCase tracks which stage each candidate occupies per job.
// Mutations of one job's board are serialized; different jobs proceed
// independently.
type PipelineUseCase struct {
	repo    interfaces.Repository
	emitter interfaces.ActivityEmitter
	now     func() time.Time

	mu    sync.Mutex
	locks map[types.JobID]*sync.Mutex
}

// MoveResult is the outcome of a pipeline move
type MoveResult struct {
	Board *model.PipelineBoard
	// Event is nil when the move was a no-op
	Event *model.StageChangeEvent
}

func NewPipelineUseCase(repo interfaces.Repository, emitter interfaces.ActivityEmitter) *PipelineUseCase {
	return &PipelineUseCase{
		repo:    repo,
		emitter: emitter,
		now:     time.Now,
		locks:   make(map[types.JobID]*sync.Mutex),
	}
}

func (uc *PipelineUseCase) lock(jobID types.JobID) func() {
	uc.mu.Lock()
	l, ok := uc.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		uc.locks[jobID] = l
	}
	uc.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// loadBoard returns the job's board, creating and storing an empty one on
// first access. Caller must hold the job lock.
func (uc *PipelineUseCase) loadBoard(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error) {
	board, err := uc.repo.Board().Get(ctx, jobID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load board", goerr.V(model.JobIDKey, jobID))
	}
	if board != nil {
		return board, nil
	}

	board = model.NewPipelineBoard(jobID)
	if err := uc.repo.Board().Put(ctx, board); err != nil {
		return nil, goerr.Wrap(err, "failed to create board", goerr.V(model.JobIDKey, jobID))
	}
	return board, nil
}

// requireJob fails with model.ErrJobNotFound for unknown jobs so no board
// or lock is ever created for them
func (uc *PipelineUseCase) requireJob(ctx context.Context, jobID types.JobID) error {
	if err := jobID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid job ID")
	}
	if _, err := uc.repo.Job().Get(ctx, jobID); err != nil {
		return goerr.Wrap(err, "failed to get job", goerr.V(model.JobIDKey, jobID))
	}
	return nil
}

// GetBoard returns the job's board. Unknown jobs fail with
// model.ErrJobNotFound.
func (uc *PipelineUseCase) GetBoard(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error) {
	if err := uc.requireJob(ctx, jobID); err != nil {
		return nil, err
	}

	unlock := uc.lock(jobID)
	defer unlock()

	return uc.loadBoard(ctx, jobID)
}

// AddCandidate places a candidate in the initial stage. A candidate already
// on the board stays where it is.
func (uc *PipelineUseCase) AddCandidate(ctx context.Context, jobID types.JobID, candidateID types.CandidateID) (*model.PipelineBoard, error) {
	if err := uc.requireJob(ctx, jobID); err != nil {
		return nil, err
	}
	if _, err := uc.repo.Candidate().Get(ctx, candidateID); err != nil {
		return nil, goerr.Wrap(err, "failed to get candidate", goerr.V(model.CandidateIDKey, candidateID))
	}

	unlock := uc.lock(jobID)
	defer unlock()

	board, err := uc.loadBoard(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !board.Add(candidateID) {
		return board, nil
	}
	if err := uc.repo.Board().Put(ctx, board); err != nil {
		return nil, goerr.Wrap(err, "failed to save board", goerr.V(model.JobIDKey, jobID))
	}
	return board, nil
}

// MoveCandidate moves a candidate between stages and emits a stage change
// event. Moving to the stage the candidate already occupies is a no-op
// without an event. On any error the stored board is left untouched.
func (uc *PipelineUseCase) MoveCandidate(ctx context.Context, actor string, jobID types.JobID, candidateID types.CandidateID, from, to types.Stage) (*MoveResult, error) {
	if err := uc.requireJob(ctx, jobID); err != nil {
		return nil, err
	}

	unlock := uc.lock(jobID)
	defer unlock()

	board, err := uc.loadBoard(ctx, jobID)
	if err != nil {
		return nil, err
	}

	next := board.Clone()
	moved, err := next.Move(candidateID, from, to)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to move candidate",
			goerr.V(model.JobIDKey, jobID), goerr.V(model.CandidateIDKey, candidateID))
	}
	if !moved {
		return &MoveResult{Board: board}, nil
	}

	if err := uc.repo.Board().Put(ctx, next); err != nil {
		return nil, goerr.Wrap(err, "failed to save board", goerr.V(model.JobIDKey, jobID))
	}

	event := model.NewStageChangeEvent(actor, uc.now(), jobID, candidateID, from, to)
	if uc.emitter != nil {
		uc.emitter.Emit(ctx, event)
	}

	logging.From(ctx).Info("candidate moved",
		"job_id", jobID, "candidate_id", candidateID, "from", from, "to", to, "actor", actor)

	return &MoveResult{Board: next, Event: event}, nil
}
