package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

type candidateRepository struct {
	mu         sync.RWMutex
	candidates map[types.CandidateID]*model.Candidate
}

func newCandidateRepository() *candidateRepository {
	return &candidateRepository{
		candidates: make(map[types.CandidateID]*model.Candidate),
	}
}

func (r *candidateRepository) Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := c.Clone()
	if created.ID == "" {
		created.ID = types.NewCandidateID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.candidates[created.ID] = created
	return created.Clone(), nil
}

func (r *candidateRepository) Get(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.candidates[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
	}
	return c.Clone(), nil
}

func (r *candidateRepository) List(ctx context.Context) ([]*model.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := make([]*model.Candidate, 0, len(r.candidates))
	for _, c := range r.candidates {
		candidates = append(candidates, c.Clone())
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})

	return candidates, nil
}

func (r *candidateRepository) Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.candidates[c.ID]
	if !ok {
		return nil, goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, c.ID))
	}

	updated := c.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.candidates[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *candidateRepository) Delete(ctx context.Context, id types.CandidateID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.candidates[id]; !ok {
		return goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
	}

	delete(r.candidates, id)
	return nil
}
