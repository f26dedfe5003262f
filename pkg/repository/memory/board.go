package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

type boardRepository struct {
	mu     sync.RWMutex
	boards map[types.JobID]*model.PipelineBoard
}

func newBoardRepository() *boardRepository {
	return &boardRepository{
		boards: make(map[types.JobID]*model.PipelineBoard),
	}
}

func (r *boardRepository) Get(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.boards[jobID]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (r *boardRepository) Put(ctx context.Context, board *model.PipelineBoard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.boards[board.JobID] = board.Clone()
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, jobID types.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.boards, jobID)
	return nil
}
