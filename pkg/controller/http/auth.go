package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
	"github.com/secmon-lab/talentbridge/pkg/utils/errutil"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// tenantRequest accepts both the current and the legacy field name
type tenantRequest struct {
	TenantID types.TenantID `json:"tenantId"`
	PortalID types.TenantID `json:"portalId"`
}

func (x tenantRequest) tenant() types.TenantID {
	if x.TenantID != "" {
		return x.TenantID
	}
	return x.PortalID
}

func authConnectHandler(oauth *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := oauth.InitiateAuthorization(r.Context())
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// authCallbackHandler completes the authorization code flow and always
// sends the browser back to the dashboard with the outcome in the query
func authCallbackHandler(oauth *usecase.OAuthUseCase, dashboardURL string) http.HandlerFunc {
	redirect := func(w http.ResponseWriter, r *http.Request, params url.Values) {
		http.Redirect(w, r, dashboardURL+"?"+params.Encode(), http.StatusFound)
	}
	fail := func(w http.ResponseWriter, r *http.Request, reason string) {
		redirect(w, r, url.Values{"error": {reason}})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		if denied := q.Get("error"); denied != "" {
			logging.From(ctx).Warn("authorization denied by user", "error", denied)
			fail(w, r, "auth_denied")
			return
		}

		code := q.Get("code")
		if code == "" {
			fail(w, r, "no_code")
			return
		}

		if err := oauth.VerifyState(q.Get("state")); err != nil {
			logging.From(ctx).Warn("invalid OAuth state", "error", err)
			fail(w, r, "invalid_state")
			return
		}

		record, err := oauth.CompleteAuthorization(ctx, code)
		switch {
		case errors.Is(err, model.ErrMetadataFetch):
			fail(w, r, "metadata_fetch_failed")
			return
		case err != nil:
			errutil.Handle(ctx, err, "OAuth callback failed")
			fail(w, r, "token_exchange_failed")
			return
		}

		redirect(w, r, url.Values{
			"auth":   {"success"},
			"portal": {record.TenantID.String()},
		})
	}
}

func authRefreshHandler(oauth *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenantRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		tenantID := req.tenant()
		if err := tenantID.Validate(); err != nil {
			badRequest(w, r, goerr.Wrap(err, "tenantId is required"))
			return
		}

		record, err := oauth.Refresh(r.Context(), tenantID)
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, model.NewTenantStatus(record))
	}
}

func authStatusHandler(oauth *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := oauth.Status(r.Context())
		if err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, status)
	}
}

type successResponse struct {
	Success bool `json:"success"`
}

func authDisconnectHandler(oauth *usecase.OAuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tenantRequest
		if err := decodeJSON(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		tenantID := req.tenant()
		if err := tenantID.Validate(); err != nil {
			badRequest(w, r, goerr.Wrap(err, "tenantId is required"))
			return
		}

		if err := oauth.Disconnect(r.Context(), tenantID); err != nil {
			errutil.WriteError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}
