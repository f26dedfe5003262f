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

type jobRepository struct {
	mu   sync.RWMutex
	jobs map[types.JobID]*model.Job
}

func newJobRepository() *jobRepository {
	return &jobRepository{
		jobs: make(map[types.JobID]*model.Job),
	}
}

func (r *jobRepository) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := j.Clone()
	if created.ID == "" {
		created.ID = types.NewJobID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.jobs[created.ID] = created
	return created.Clone(), nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
	}
	return j.Clone(), nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]*model.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		jobs = append(jobs, j.Clone())
	}
	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].ID < jobs[k].ID
		}
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})

	return jobs, nil
}

func (r *jobRepository) Update(ctx context.Context, j *model.Job) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.jobs[j.ID]
	if !ok {
		return nil, goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, j.ID))
	}

	updated := j.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.jobs[updated.ID] = updated
	return updated.Clone(), nil
}

func (r *jobRepository) Delete(ctx context.Context, id types.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; !ok {
		return goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
	}

	delete(r.jobs, id)
	return nil
}
