package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/service/crm"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// TokenSource hands out a usable access token for a tenant
type TokenSource interface {
	GetValidToken(ctx context.Context, tenantID types.TenantID) (string, error)
}

// SyncUseCase mirrors local candidates and jobs into the CRM as contacts and
// deals. It is also the CRM backed data source.
type SyncUseCase struct {
	repo     interfaces.Repository
	tokens   TokenSource
	crm      interfaces.CRM
	settings *config.Settings
	now      func() time.Time
}

var _ interfaces.DataSource = &SyncUseCase{}

func NewSyncUseCase(repo interfaces.Repository, tokens TokenSource, client interfaces.CRM, settings *config.Settings) *SyncUseCase {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	return &SyncUseCase{
		repo:     repo,
		tokens:   tokens,
		crm:      client,
		settings: settings,
		now:      time.Now,
	}
}

func (uc *SyncUseCase) Name() string { return "crm" }

// token obtains the tenant's access token. Any failure means no CRM call
// can be made, so it surfaces as ErrAuthenticationRequired.
func (uc *SyncUseCase) token(ctx context.Context, tenantID types.TenantID) (string, error) {
	token, err := uc.tokens.GetValidToken(ctx, tenantID)
	if err != nil {
		return "", goerr.Wrap(model.ErrAuthenticationRequired, "no valid CRM token",
			goerr.V(model.TenantIDKey, tenantID), goerr.V("error", err.Error()))
	}
	return token, nil
}

// SyncCandidates creates a contact for every candidate, or updates it when
// the candidate already carries a remote id. One result is returned per
// input in input order; per-item failures never abort the batch. The token
// is looked up per item so one expiring mid-batch is refreshed.
func (uc *SyncUseCase) SyncCandidates(ctx context.Context, tenantID types.TenantID, candidates []*model.Candidate) ([]*model.SyncResult, error) {
	if _, err := uc.token(ctx, tenantID); err != nil {
		return nil, err
	}

	results := make([]*model.SyncResult, len(candidates))
	for i, c := range candidates {
		results[i] = &model.SyncResult{EntityName: c.Name, EntityID: c.ID.String()}
	}

	runBatch(ctx, results, uc.settings.Sync.Concurrency, func(ctx context.Context, i int, r *model.SyncResult) {
		token, err := uc.token(ctx, tenantID)
		if err != nil {
			record(ctx, r, "", err)
			return
		}
		remoteID, err := uc.pushCandidate(ctx, token, candidates[i])
		record(ctx, r, remoteID, err)
	})

	logBatch(ctx, "candidates", tenantID, results)
	return results, nil
}

// SyncJobs creates or updates a deal for every job, with the same result
// contract as SyncCandidates
func (uc *SyncUseCase) SyncJobs(ctx context.Context, tenantID types.TenantID, jobs []*model.Job) ([]*model.SyncResult, error) {
	if _, err := uc.token(ctx, tenantID); err != nil {
		return nil, err
	}

	results := make([]*model.SyncResult, len(jobs))
	for i, j := range jobs {
		results[i] = &model.SyncResult{EntityName: j.Title, EntityID: j.ID.String()}
	}

	runBatch(ctx, results, uc.settings.Sync.Concurrency, func(ctx context.Context, i int, r *model.SyncResult) {
		token, err := uc.token(ctx, tenantID)
		if err != nil {
			record(ctx, r, "", err)
			return
		}
		remoteID, err := uc.pushJob(ctx, token, jobs[i])
		record(ctx, r, remoteID, err)
	})

	logBatch(ctx, "jobs", tenantID, results)
	return results, nil
}

func (uc *SyncUseCase) pushCandidate(ctx context.Context, token string, c *model.Candidate) (string, error) {
	props := crm.ContactFromCandidate(c)
	if c.IsSynced() {
		obj, err := uc.crm.UpdateObject(ctx, token, model.ObjectContacts, c.RemoteID, props)
		if err != nil {
			return "", err
		}
		return obj.ID, nil
	}

	obj, err := uc.crm.CreateObject(ctx, token, model.ObjectContacts, props)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

func (uc *SyncUseCase) pushJob(ctx context.Context, token string, j *model.Job) (string, error) {
	props := crm.DealFromJob(j, uc.settings.Pipeline, uc.now())
	if j.IsSynced() {
		obj, err := uc.crm.UpdateObject(ctx, token, model.ObjectDeals, j.RemoteID, props)
		if err != nil {
			return "", err
		}
		return obj.ID, nil
	}

	obj, err := uc.crm.CreateObject(ctx, token, model.ObjectDeals, props)
	if err != nil {
		return "", err
	}
	return obj.ID, nil
}

func record(ctx context.Context, r *model.SyncResult, remoteID string, err error) {
	if err != nil {
		r.Success = false
		r.Error = errorDetail(err)
		logging.From(ctx).Warn("sync item failed", "entity", r.EntityName, "entity_id", r.EntityID, "error", err)
		return
	}
	r.Success = true
	r.RemoteID = remoteID
	r.Error = ""
}

// errorDetail prefers the CRM's own message so the user sees why a record
// was rejected
func errorDetail(err error) string {
	if msg := model.RemoteMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}

func logBatch(ctx context.Context, entity string, tenantID types.TenantID, results []*model.SyncResult) {
	var failed int
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	logging.From(ctx).Info("sync batch finished",
		"entity", entity, "tenant_id", tenantID, "total", len(results), "failed", failed)
}

// FetchCandidates reads contacts from the CRM. Any failure, including a
// missing token, is logged and yields an empty list.
func (uc *SyncUseCase) FetchCandidates(ctx context.Context, tenantID types.TenantID) []*model.Candidate {
	candidates := []*model.Candidate{}

	token, err := uc.token(ctx, tenantID)
	if err != nil {
		logging.From(ctx).Warn("cannot fetch candidates from CRM", "tenant_id", tenantID, "error", err)
		return candidates
	}

	objs, err := uc.crm.ListObjects(ctx, token, model.ObjectContacts, interfaces.ListOptions{
		Properties: crm.ContactProperties,
	})
	if err != nil {
		logging.From(ctx).Warn("failed to fetch candidates from CRM", "tenant_id", tenantID, "error", err)
		return candidates
	}

	for _, obj := range objs {
		candidates = append(candidates, crm.CandidateFromContact(obj))
	}
	return candidates
}

// FetchJobs reads deals from the CRM with the same best effort contract as
// FetchCandidates
func (uc *SyncUseCase) FetchJobs(ctx context.Context, tenantID types.TenantID) []*model.Job {
	jobs := []*model.Job{}

	token, err := uc.token(ctx, tenantID)
	if err != nil {
		logging.From(ctx).Warn("cannot fetch jobs from CRM", "tenant_id", tenantID, "error", err)
		return jobs
	}

	objs, err := uc.crm.ListObjects(ctx, token, model.ObjectDeals, interfaces.ListOptions{
		Properties: crm.DealProperties,
	})
	if err != nil {
		logging.From(ctx).Warn("failed to fetch jobs from CRM", "tenant_id", tenantID, "error", err)
		return jobs
	}

	for _, obj := range objs {
		jobs = append(jobs, crm.JobFromDeal(obj, uc.settings.Pipeline))
	}
	return jobs
}

// dealStageFor maps a pipeline stage onto a CRM deal stage. An empty result
// means the deal is left unchanged.
func (uc *SyncUseCase) dealStageFor(to types.Stage) string {
	switch to {
	case types.StageHired:
		return uc.settings.Pipeline.ClosedDealStage
	case types.StageRejected:
		return ""
	default:
		return uc.settings.Pipeline.OpenDealStage
	}
}

// MoveCandidateStage mirrors a pipeline move into the CRM: a note is added
// to the candidate's contact and, when the job has a deal, the deal stage is
// updated. The candidate must already be synced.
func (uc *SyncUseCase) MoveCandidateStage(ctx context.Context, tenantID types.TenantID, jobID types.JobID, candidateID types.CandidateID, from, to types.Stage) (*model.StageMoveResult, error) {
	candidate, err := uc.repo.Candidate().Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if !candidate.IsSynced() {
		return nil, goerr.Wrap(model.ErrNotSynced, "candidate has no CRM contact",
			goerr.V(model.CandidateIDKey, candidateID))
	}

	var job *model.Job
	if jobID != "" {
		job, err = uc.repo.Job().Get(ctx, jobID)
		if err != nil {
			return nil, err
		}
	}

	token, err := uc.token(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// remote writes run to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	result := &model.StageMoveResult{
		CandidateID: candidateID.String(),
		NewStage:    to.String(),
	}

	if err := uc.crm.CreateNote(ctx, token, candidate.RemoteID, crm.StageNote(from, to)); err != nil {
		return result, goerr.Wrap(err, "failed to record stage note",
			goerr.V(model.CandidateIDKey, candidateID))
	}
	result.NoteCreated = true

	if job == nil || !job.IsSynced() {
		return result, nil
	}
	stage := uc.dealStageFor(to)
	if stage == "" {
		return result, nil
	}

	if _, err := uc.crm.UpdateObject(ctx, token, model.ObjectDeals, job.RemoteID, map[string]string{"dealstage": stage}); err != nil {
		return result, goerr.Wrap(err, "failed to update deal stage",
			goerr.V(model.JobIDKey, jobID), goerr.V("deal_stage", stage))
	}
	result.DealUpdated = true

	logging.From(ctx).Info("pipeline move mirrored to CRM",
		"tenant_id", tenantID, "job_id", jobID, "candidate_id", candidateID, "deal_stage", stage)
	return result, nil
}

// Associate links the candidate's contact to the job's deal. Both records
// must already be synced.
func (uc *SyncUseCase) Associate(ctx context.Context, tenantID types.TenantID, jobID types.JobID, candidateID types.CandidateID) error {
	job, err := uc.repo.Job().Get(ctx, jobID)
	if err != nil {
		return err
	}
	candidate, err := uc.repo.Candidate().Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if !job.IsSynced() {
		return goerr.Wrap(model.ErrNotSynced, "job has no CRM deal", goerr.V(model.JobIDKey, jobID))
	}
	if !candidate.IsSynced() {
		return goerr.Wrap(model.ErrNotSynced, "candidate has no CRM contact",
			goerr.V(model.CandidateIDKey, candidateID))
	}

	token, err := uc.token(ctx, tenantID)
	if err != nil {
		return err
	}

	if err := uc.crm.AssociateDealContact(context.WithoutCancel(ctx), token, job.RemoteID, candidate.RemoteID); err != nil {
		return goerr.Wrap(err, "failed to associate contact with deal",
			goerr.V(model.JobIDKey, jobID), goerr.V(model.CandidateIDKey, candidateID))
	}
	return nil
}
