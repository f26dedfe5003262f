package usecase

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// NameLookup resolves ids to display names for notifications. Unknown ids
// fall back to the id itself.
type NameLookup struct {
	repo interfaces.Repository
}

func NewNameLookup(repo interfaces.Repository) *NameLookup {
	return &NameLookup{repo: repo}
}

func (x *NameLookup) CandidateName(ctx context.Context, id string) string {
	c, err := x.repo.Candidate().Get(ctx, types.CandidateID(id))
	if err != nil || c.Name == "" {
		return id
	}
	return c.Name
}

func (x *NameLookup) JobTitle(ctx context.Context, id string) string {
	j, err := x.repo.Job().Get(ctx, types.JobID(id))
	if err != nil || j.Title == "" {
		return id
	}
	return j.Title
}
