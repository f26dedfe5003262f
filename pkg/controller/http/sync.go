package http

import (
	"net/http"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/errutil"
)

type syncRequest struct {
	TenantID types.TenantID `json:"tenantId"`
	IDs      []string       `json:"ids"`
}

type syncResponse struct {
	Source    string              `json:"source"`
	Total     int                 `json:"total"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []*model.SyncResult `json:"results"`
}

func newSyncResponse(source string, results []*model.SyncResult) syncResponse {
	if results == nil {
		results = []*model.SyncResult{}
	}
	resp := syncResponse{Source: source, Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	return resp
}

func syncCandidatesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req syncRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		tenantID, err := resolveTenant(ctx, uc, req.TenantID)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}

		ids := make([]types.CandidateID, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = types.CandidateID(id)
		}

		results, err := uc.Remote.PushCandidates(ctx, tenantID, ids)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, newSyncResponse(uc.Remote.Source(), results))
	}
}

func syncJobsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req syncRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		tenantID, err := resolveTenant(ctx, uc, req.TenantID)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}

		ids := make([]types.JobID, len(req.IDs))
		for i, id := range req.IDs {
			ids[i] = types.JobID(id)
		}

		results, err := uc.Remote.PushJobs(ctx, tenantID, ids)
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, newSyncResponse(uc.Remote.Source(), results))
	}
}

func syncStatusHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := uc.Remote.Status(r.Context())
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, status)
	}
}

func remoteCandidatesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenantID, err := resolveTenant(ctx, uc, types.TenantID(r.URL.Query().Get("tenantId")))
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, uc.Remote.FetchCandidates(ctx, tenantID))
	}
}

func remoteJobsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenantID, err := resolveTenant(ctx, uc, types.TenantID(r.URL.Query().Get("tenantId")))
		if err != nil {
			errutil.WriteError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, uc.Remote.FetchJobs(ctx, tenantID))
	}
}

type settingsResponse struct {
	CompanyName        string        `json:"companyName"`
	SyncEnabled        bool          `json:"syncEnabled"`
	EmailNotifications bool          `json:"emailNotifications"`
	DefaultCompany     string        `json:"defaultCompany"`
	SyncConcurrency    int           `json:"syncConcurrency"`
	SyncTimeout        string        `json:"syncTimeout"`
	RatePerSecond      float64       `json:"ratePerSecond"`
	OpenDealStage      string        `json:"openDealStage"`
	ClosedDealStage    string        `json:"closedDealStage"`
	Stages             []types.Stage `json:"stages"`
	CRMConfigured      bool          `json:"crmConfigured"`
	DataSource         string        `json:"dataSource,omitempty"`
}

func settingsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := uc.Settings()
		resp := settingsResponse{
			CompanyName:        s.CompanyName,
			SyncEnabled:        s.SyncEnabled,
			EmailNotifications: s.EmailNotifications,
			DefaultCompany:     s.DefaultCompany,
			SyncConcurrency:    s.Sync.Concurrency,
			SyncTimeout:        s.Sync.Timeout.String(),
			RatePerSecond:      s.Sync.RatePerSecond,
			OpenDealStage:      s.Pipeline.OpenDealStage,
			ClosedDealStage:    s.Pipeline.ClosedDealStage,
			Stages:             types.AllStages(),
			CRMConfigured:      uc.OAuth != nil,
		}
		if uc.Remote != nil {
			resp.DataSource = uc.Remote.Source()
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
