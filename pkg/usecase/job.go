package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// JobUseCase manages job requisitions in the local store
type JobUseCase struct {
	repo           interfaces.Repository
	defaultCompany string
	now            func() time.Time
}

func NewJobUseCase(repo interfaces.Repository, settings *config.Settings) *JobUseCase {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &JobUseCase{
		repo:           repo,
		defaultCompany: settings.DefaultCompany,
		now:            time.Now,
	}
}

func (uc *JobUseCase) normalize(j *model.Job) {
	j.Title = strings.TrimSpace(j.Title)
	j.Company = strings.TrimSpace(j.Company)
	if j.Company == "" {
		j.Company = uc.defaultCompany
	}
	j.Status = j.Status.Normalize()
}

func (uc *JobUseCase) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	j = j.Clone()
	uc.normalize(j)
	if err := j.Validate(); err != nil {
		return nil, err
	}

	j.ID = ""
	j.CreatedAt = uc.now().UTC()

	created, err := uc.repo.Job().Create(ctx, j)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create job")
	}
	return created, nil
}

func (uc *JobUseCase) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	return uc.repo.Job().Get(ctx, id)
}

// List returns jobs newest first, filtered by query when it is not empty
func (uc *JobUseCase) List(ctx context.Context, query string) ([]*model.Job, error) {
	all, err := uc.repo.Job().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs")
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	matched := []*model.Job{}
	for _, j := range all {
		if j.MatchesQuery(query) {
			matched = append(matched, j)
		}
	}
	return matched, nil
}

func (uc *JobUseCase) Update(ctx context.Context, j *model.Job) (*model.Job, error) {
	current, err := uc.repo.Job().Get(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	j = j.Clone()
	uc.normalize(j)
	if err := j.Validate(); err != nil {
		return nil, err
	}
	if j.RemoteID == "" {
		j.RemoteID = current.RemoteID
	}
	j.CreatedAt = current.CreatedAt

	updated, err := uc.repo.Job().Update(ctx, j)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update job", goerr.V(model.JobIDKey, j.ID))
	}
	return updated, nil
}

// Delete removes the job together with its pipeline board
func (uc *JobUseCase) Delete(ctx context.Context, id types.JobID) error {
	if err := uc.repo.Job().Delete(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Board().Delete(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete board", goerr.V(model.JobIDKey, id))
	}
	return nil
}
