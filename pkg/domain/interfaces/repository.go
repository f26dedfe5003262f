package interfaces

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Candidate() CandidateRepository
	Job() JobRepository
	Board() BoardRepository

	// Token store methods. Exactly one record exists per tenant; Put overwrites.
	PutToken(ctx context.Context, token *model.TokenRecord) error
	// GetToken returns model.ErrNoToken when the tenant is unknown
	GetToken(ctx context.Context, tenantID types.TenantID) (*model.TokenRecord, error)
	// DeleteToken returns model.ErrNoToken when the tenant is unknown
	DeleteToken(ctx context.Context, tenantID types.TenantID) error
	ListTokens(ctx context.Context) ([]*model.TokenRecord, error)

	Close() error
}

// CandidateRepository persists candidates. Get/Update/Delete return
// model.ErrCandidateNotFound for unknown ids.
type CandidateRepository interface {
	Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error)
	Get(ctx context.Context, id types.CandidateID) (*model.Candidate, error)
	// List returns candidates newest first
	List(ctx context.Context) ([]*model.Candidate, error)
	Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error)
	Delete(ctx context.Context, id types.CandidateID) error
}

// JobRepository persists jobs. Get/Update/Delete return model.ErrJobNotFound
// for unknown ids.
type JobRepository interface {
	Create(ctx context.Context, j *model.Job) (*model.Job, error)
	Get(ctx context.Context, id types.JobID) (*model.Job, error)
	// List returns jobs newest first
	List(ctx context.Context) ([]*model.Job, error)
	Update(ctx context.Context, j *model.Job) (*model.Job, error)
	Delete(ctx context.Context, id types.JobID) error
}

// BoardRepository persists pipeline boards
type BoardRepository interface {
	// Get returns nil without error when the job has no board yet
	Get(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error)
	Put(ctx context.Context, board *model.PipelineBoard) error
	Delete(ctx context.Context, jobID types.JobID) error
}
