package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// RemoteUseCase pushes local records to the configured data source and
// reads remote records back through it
type RemoteUseCase struct {
	repo     interfaces.Repository
	source   interfaces.DataSource
	settings *config.Settings
}

func NewRemoteUseCase(repo interfaces.Repository, source interfaces.DataSource, settings *config.Settings) *RemoteUseCase {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &RemoteUseCase{repo: repo, source: source, settings: settings}
}

// Source returns the name of the data source in use
func (uc *RemoteUseCase) Source() string {
	return uc.source.Name()
}

func (uc *RemoteUseCase) FetchCandidates(ctx context.Context, tenantID types.TenantID) []*model.Candidate {
	return uc.source.FetchCandidates(ctx, tenantID)
}

func (uc *RemoteUseCase) FetchJobs(ctx context.Context, tenantID types.TenantID) []*model.Job {
	return uc.source.FetchJobs(ctx, tenantID)
}

// PushCandidates syncs the given candidates, or every unsynced one when ids
// is empty, and stores the remote id of each success
func (uc *RemoteUseCase) PushCandidates(ctx context.Context, tenantID types.TenantID, ids []types.CandidateID) ([]*model.SyncResult, error) {
	if !uc.settings.SyncEnabled {
		return nil, goerr.Wrap(model.ErrSyncDisabled, "candidate sync is disabled")
	}

	candidates, err := uc.selectCandidates(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []*model.SyncResult{}, nil
	}

	results, err := uc.source.SyncCandidates(ctx, tenantID, candidates)
	if err != nil {
		return nil, err
	}

	// write back runs even if the caller went away, remote records already exist
	ctx = context.WithoutCancel(ctx)
	for i, r := range results {
		c := candidates[i]
		if !r.Success || r.RemoteID == "" || r.RemoteID == c.RemoteID {
			continue
		}
		c.RemoteID = r.RemoteID
		if _, err := uc.repo.Candidate().Update(ctx, c); err != nil {
			logging.From(ctx).Error("failed to store remote id of candidate",
				"candidate_id", c.ID, "remote_id", r.RemoteID, "error", err)
		}
	}
	return results, nil
}

// PushJobs behaves like PushCandidates for jobs
func (uc *RemoteUseCase) PushJobs(ctx context.Context, tenantID types.TenantID, ids []types.JobID) ([]*model.SyncResult, error) {
	if !uc.settings.SyncEnabled {
		return nil, goerr.Wrap(model.ErrSyncDisabled, "job sync is disabled")
	}

	jobs, err := uc.selectJobs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return []*model.SyncResult{}, nil
	}

	results, err := uc.source.SyncJobs(ctx, tenantID, jobs)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	for i, r := range results {
		j := jobs[i]
		if !r.Success || r.RemoteID == "" || r.RemoteID == j.RemoteID {
			continue
		}
		j.RemoteID = r.RemoteID
		if _, err := uc.repo.Job().Update(ctx, j); err != nil {
			logging.From(ctx).Error("failed to store remote id of job",
				"job_id", j.ID, "remote_id", r.RemoteID, "error", err)
		}
	}
	return results, nil
}

func (uc *RemoteUseCase) selectCandidates(ctx context.Context, ids []types.CandidateID) ([]*model.Candidate, error) {
	if len(ids) > 0 {
		candidates := make([]*model.Candidate, 0, len(ids))
		for _, id := range ids {
			c, err := uc.repo.Candidate().Get(ctx, id)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, c)
		}
		return candidates, nil
	}

	all, err := uc.repo.Candidate().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates")
	}
	var unsynced []*model.Candidate
	for _, c := range all {
		if !c.IsSynced() {
			unsynced = append(unsynced, c)
		}
	}
	return unsynced, nil
}

func (uc *RemoteUseCase) selectJobs(ctx context.Context, ids []types.JobID) ([]*model.Job, error) {
	if len(ids) > 0 {
		jobs := make([]*model.Job, 0, len(ids))
		for _, id := range ids {
			j, err := uc.repo.Job().Get(ctx, id)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, j)
		}
		return jobs, nil
	}

	all, err := uc.repo.Job().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs")
	}
	var unsynced []*model.Job
	for _, j := range all {
		if !j.IsSynced() {
			unsynced = append(unsynced, j)
		}
	}
	return unsynced, nil
}

// Status counts local records with and without a remote id
func (uc *RemoteUseCase) Status(ctx context.Context) (*model.SyncStatus, error) {
	candidates, err := uc.repo.Candidate().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates")
	}
	jobs, err := uc.repo.Job().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs")
	}

	var status model.SyncStatus
	for _, c := range candidates {
		if c.IsSynced() {
			status.SyncedCandidates++
		} else {
			status.UnsyncedCandidates++
		}
	}
	for _, j := range jobs {
		if j.IsSynced() {
			status.SyncedJobs++
		} else {
			status.UnsyncedJobs++
		}
	}
	return &status, nil
}
