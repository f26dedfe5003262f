package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// CandidateUseCase manages candidates in the local store
type CandidateUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func NewCandidateUseCase(repo interfaces.Repository) *CandidateUseCase {
	return &CandidateUseCase{repo: repo, now: time.Now}
}

func normalizeCandidate(c *model.Candidate) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Status = c.Status.Normalize()

	skills := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	c.Skills = skills
}

func (uc *CandidateUseCase) Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	c = c.Clone()
	normalizeCandidate(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.ID = ""
	c.CreatedAt = uc.now().UTC()

	created, err := uc.repo.Candidate().Create(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create candidate")
	}
	return created, nil
}

func (uc *CandidateUseCase) Get(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	return uc.repo.Candidate().Get(ctx, id)
}

// List returns candidates newest first, filtered by query when it is not empty
func (uc *CandidateUseCase) List(ctx context.Context, query string) ([]*model.Candidate, error) {
	all, err := uc.repo.Candidate().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates")
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	matched := []*model.Candidate{}
	for _, c := range all {
		if c.MatchesQuery(query) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// Update replaces the editable fields of a candidate. The remote id is kept
// when the update does not carry one.
func (uc *CandidateUseCase) Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	current, err := uc.repo.Candidate().Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	c = c.Clone()
	normalizeCandidate(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.RemoteID == "" {
		c.RemoteID = current.RemoteID
	}
	c.CreatedAt = current.CreatedAt

	updated, err := uc.repo.Candidate().Update(ctx, c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update candidate", goerr.V(model.CandidateIDKey, c.ID))
	}
	return updated, nil
}

func (uc *CandidateUseCase) Delete(ctx context.Context, id types.CandidateID) error {
	return uc.repo.Candidate().Delete(ctx, id)
}
