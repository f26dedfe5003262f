package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/errutil"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

const defaultActor = "dashboard"

type stageColumn struct {
	Stage        types.Stage         `json:"stage"`
	CandidateIDs []types.CandidateID `json:"candidateIds"`
}

// boardResponse lists stages in pipeline order
type boardResponse struct {
	JobID  types.JobID   `json:"jobId"`
	Stages []stageColumn `json:"stages"`
}

func newBoardResponse(b *model.PipelineBoard) boardResponse {
	resp := boardResponse{JobID: b.JobID}
	for _, s := range types.AllStages() {
		ids := b.Stages[s]
		if ids == nil {
			ids = []types.CandidateID{}
		}
		resp.Stages = append(resp.Stages, stageColumn{Stage: s, CandidateIDs: ids})
	}
	return resp
}

func getBoardHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := uc.Pipeline.GetBoard(r.Context(), types.JobID(chi.URLParam(r, "jobId")))
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, newBoardResponse(board))
	}
}

type addToBoardRequest struct {
	CandidateID types.CandidateID `json:"candidateId"`
}

func addToBoardHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req addToBoardRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		if _, err := uc.Candidate.Get(ctx, req.CandidateID); err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}

		board, err := uc.Pipeline.AddCandidate(ctx, types.JobID(chi.URLParam(r, "jobId")), req.CandidateID)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, newBoardResponse(board))
	}
}

type moveRequest struct {
	CandidateID types.CandidateID `json:"candidateId"`
	FromStage   types.Stage       `json:"fromStage"`
	ToStage     types.Stage       `json:"toStage"`
	TenantID    types.TenantID    `json:"tenantId"`
	Actor       string            `json:"actor"`
}

type moveResponse struct {
	Board     boardResponse           `json:"board"`
	Moved     bool                    `json:"moved"`
	Event     *model.StageChangeEvent `json:"event,omitempty"`
	CRMSynced bool                    `json:"crmSynced"`
	CRM       *model.StageMoveResult  `json:"crm,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// moveCandidateHandler applies the move locally first, then mirrors it into
// the CRM when a tenant is given. A mirror failure is reported in the
// response body; the local move stands.
func moveCandidateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		jobID := types.JobID(chi.URLParam(r, "jobId"))

		var req moveRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		actor := req.Actor
		if actor == "" {
			actor = defaultActor
		}

		result, err := uc.Pipeline.MoveCandidate(ctx, actor, jobID, req.CandidateID, req.FromStage, req.ToStage)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}

		resp := moveResponse{
			Board: newBoardResponse(result.Board),
			Moved: result.Event != nil,
			Event: result.Event,
		}
		if resp.Moved {
			resp.CRMSynced, resp.CRM, resp.Message = mirrorMove(ctx, uc, req.TenantID, jobID, req)
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}

func mirrorMove(ctx context.Context, uc *usecase.UseCases, tenantID types.TenantID, jobID types.JobID, req moveRequest) (bool, *model.StageMoveResult, string) {
	if uc.Sync == nil {
		return false, nil, "CRM is not configured"
	}
	if tenantID == "" {
		return false, nil, "no tenant given, CRM left unchanged"
	}
	if !uc.Settings().SyncEnabled {
		return false, nil, "CRM sync is disabled"
	}

	crmResult, err := uc.Sync.MoveCandidateStage(ctx, tenantID, jobID, req.CandidateID, req.FromStage, req.ToStage)
	switch {
	case errors.Is(err, model.ErrNotSynced):
		return false, nil, "candidate is not synced to CRM"
	case err != nil:
		logging.From(ctx).Warn("failed to mirror pipeline move to CRM",
			"job_id", jobID, "candidate_id", req.CandidateID, "error", err)
		msg := model.RemoteMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		return false, crmResult, msg
	}
	return true, crmResult, ""
}

type associateRequest struct {
	CandidateID types.CandidateID `json:"candidateId"`
	TenantID    types.TenantID    `json:"tenantId"`
}

func associateHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req associateRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}

		tenantID, err := resolveTenant(ctx, uc, req.TenantID)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}

		if err := uc.Sync.Associate(ctx, tenantID, types.JobID(chi.URLParam(r, "jobId")), req.CandidateID); err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, successResponse{Success: true})
	}
}

// resolveTenant returns the given tenant, or the only connected tenant when
// none is given
func resolveTenant(ctx context.Context, uc *usecase.UseCases, tenantID types.TenantID) (types.TenantID, error) {
	if tenantID != "" || uc.OAuth == nil {
		return tenantID, nil
	}

	status, err := uc.OAuth.Status(ctx)
	if err != nil {
		return "", err
	}
	switch len(status.Tenants) {
	case 0:
		return "", goerr.Wrap(model.ErrAuthenticationRequired, "no CRM tenant is connected")
	case 1:
		return status.Tenants[0].TenantID, nil
	default:
		return "", goerr.Wrap(model.ErrAuthorization, "tenantId is required when several tenants are connected",
			goerr.V("tenants", len(status.Tenants)))
	}
}
