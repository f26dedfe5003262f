package interfaces

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// DataSource is the remote side the dashboard reads from and pushes to.
// Implementations are chosen once at startup (fixture or CRM).
type DataSource interface {
	Name() string
	// FetchCandidates is best effort: an unreachable remote yields an empty list
	FetchCandidates(ctx context.Context, tenantID types.TenantID) []*model.Candidate
	// FetchJobs is best effort: an unreachable remote yields an empty list
	FetchJobs(ctx context.Context, tenantID types.TenantID) []*model.Job
	// SyncCandidates pushes every candidate and returns one result per input,
	// in input order. Only a failure affecting the whole batch is returned as error.
	SyncCandidates(ctx context.Context, tenantID types.TenantID, candidates []*model.Candidate) ([]*model.SyncResult, error)
	// SyncJobs behaves like SyncCandidates for jobs
	SyncJobs(ctx context.Context, tenantID types.TenantID, jobs []*model.Job) ([]*model.SyncResult, error)
}
