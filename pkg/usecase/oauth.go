package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

const (
	stateIssuer     = "talentbridge"
	defaultStateTTL = 10 * time.Minute
)

// OAuthUseCase obtains, stores and refreshes CRM tokens per tenant
type OAuthUseCase struct {
	repo     interfaces.Repository
	provider interfaces.OAuthProvider
	stateKey []byte
	stateTTL time.Duration
	now      func() time.Time

	// refreshes collapses concurrent refreshes of one tenant into a single
	// call to the provider
	refreshes singleflight.Group
}

type OAuthOption func(*OAuthUseCase)

// WithStateKey sets the HMAC key used to sign the authorization state.
// Without it a random key is generated, so states do not survive restarts.
func WithStateKey(key []byte) OAuthOption {
	return func(uc *OAuthUseCase) {
		uc.stateKey = key
	}
}

func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(uc *OAuthUseCase) {
		uc.stateTTL = ttl
	}
}

// WithClock replaces the time source, used by tests to expire tokens
func WithClock(now func() time.Time) OAuthOption {
	return func(uc *OAuthUseCase) {
		uc.now = now
	}
}

func NewOAuthUseCase(repo interfaces.Repository, provider interfaces.OAuthProvider, opts ...OAuthOption) *OAuthUseCase {
	uc := &OAuthUseCase{
		repo:     repo,
		provider: provider,
		stateTTL: defaultStateTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if len(uc.stateKey) == 0 {
		uc.stateKey = make([]byte, 32)
		_, _ = rand.Read(uc.stateKey)
	}
	return uc
}

// InitiateAuthorization returns the CRM authorization URL. The embedded
// state is a signed, short lived token so no server side session is kept.
func (uc *OAuthUseCase) InitiateAuthorization(ctx context.Context) (string, error) {
	now := uc.now()
	token, err := jwt.NewBuilder().
		Issuer(stateIssuer).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(uc.stateTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build state token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, uc.stateKey))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign state token")
	}

	return uc.provider.AuthCodeURL(string(signed)), nil
}

// VerifyState checks a state returned on the callback
func (uc *OAuthUseCase) VerifyState(state string) error {
	if state == "" {
		return goerr.Wrap(model.ErrAuthorization, "state is missing")
	}

	_, err := jwt.Parse([]byte(state),
		jwt.WithKey(jwa.HS256, uc.stateKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(stateIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return goerr.Wrap(model.ErrAuthorization, "state is invalid or expired", goerr.V("error", err.Error()))
	}
	return nil
}

// CompleteAuthorization exchanges code for tokens, resolves the tenant from
// the account metadata and stores the record. When the metadata cannot be
// fetched the token is discarded and ErrMetadataFetch is returned.
func (uc *OAuthUseCase) CompleteAuthorization(ctx context.Context, code string) (*model.TokenRecord, error) {
	if code == "" {
		return nil, goerr.Wrap(model.ErrAuthorization, "authorization code is missing")
	}

	grant, err := uc.provider.Exchange(ctx, code)
	if err != nil {
		logging.From(ctx).Warn("token exchange failed", "error", err)
		return nil, goerr.Wrap(model.ErrAuthorization, "token exchange failed",
			goerr.V("error", err.Error()), goerr.V(model.RemoteMsgKey, model.RemoteMessage(err)))
	}

	info, err := uc.provider.AccountInfo(ctx, grant.AccessToken)
	if err != nil {
		logging.From(ctx).Warn("account metadata fetch failed, discarding token", "error", err)
		return nil, goerr.Wrap(model.ErrMetadataFetch, "failed to fetch account metadata",
			goerr.V("error", err.Error()))
	}

	now := uc.now().UTC()
	record := &model.TokenRecord{
		TenantID:     types.TenantID(strconv.FormatInt(info.PortalID, 10)),
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.ExpiresAt,
		AccountName:  info.CompanyName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.PutToken(ctx, record); err != nil {
		return nil, goerr.Wrap(err, "failed to store token", goerr.V(model.TenantIDKey, record.TenantID))
	}

	logging.From(ctx).Info("CRM tenant authorized",
		"tenant_id", record.TenantID, "account", record.AccountName, "expires_at", record.ExpiresAt)
	return record, nil
}

// GetValidToken returns a usable access token, refreshing it first when it
// has expired
func (uc *OAuthUseCase) GetValidToken(ctx context.Context, tenantID types.TenantID) (string, error) {
	record, err := uc.repo.GetToken(ctx, tenantID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load token", goerr.V(model.TenantIDKey, tenantID))
	}
	if !record.IsExpired(uc.now()) {
		return record.AccessToken, nil
	}

	refreshed, err := uc.refresh(ctx, tenantID, uc.isExpired)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh unconditionally runs the refresh grant for a tenant
func (uc *OAuthUseCase) Refresh(ctx context.Context, tenantID types.TenantID) (*model.TokenRecord, error) {
	return uc.refresh(ctx, tenantID, func(*model.TokenRecord) bool { return true })
}

// RefreshExpiring refreshes every token expiring within window and returns
// how many were refreshed. Failures are logged and skipped.
func (uc *OAuthUseCase) RefreshExpiring(ctx context.Context, window time.Duration) (int, error) {
	tokens, err := uc.repo.ListTokens(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list tokens")
	}

	deadline := uc.now().Add(window)
	expiring := func(r *model.TokenRecord) bool { return !deadline.Before(r.ExpiresAt) }

	var refreshed int
	for _, t := range tokens {
		if !expiring(t) {
			continue
		}
		if _, err := uc.refresh(ctx, t.TenantID, expiring); err != nil {
			logging.From(ctx).Warn("background token refresh failed",
				"tenant_id", t.TenantID, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (uc *OAuthUseCase) isExpired(r *model.TokenRecord) bool {
	return r.IsExpired(uc.now())
}

// refresh runs at most one refresh grant per tenant at a time. Callers that
// arrive while a refresh is in flight share its result. The stored record
// is re-read inside the flight so a caller that lost the race against a
// completed refresh reuses the rotated token instead of replaying the old,
// now invalid, refresh token.
func (uc *OAuthUseCase) refresh(ctx context.Context, tenantID types.TenantID, needed func(*model.TokenRecord) bool) (*model.TokenRecord, error) {
	v, err, shared := uc.refreshes.Do(tenantID.String(), func() (any, error) {
		// one caller going away must not fail the others waiting on this flight
		ctx := context.WithoutCancel(ctx)

		record, err := uc.repo.GetToken(ctx, tenantID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load token", goerr.V(model.TenantIDKey, tenantID))
		}
		if !needed(record) {
			return record, nil
		}

		grant, err := uc.provider.Refresh(ctx, record.RefreshToken)
		if err != nil {
			return nil, goerr.Wrap(model.ErrRefreshFailed, "refresh grant failed",
				goerr.V(model.TenantIDKey, tenantID), goerr.V("error", err.Error()),
				goerr.V(model.RemoteMsgKey, model.RemoteMessage(err)))
		}

		updated := record.Clone()
		updated.AccessToken = grant.AccessToken
		if grant.RefreshToken != "" {
			updated.RefreshToken = grant.RefreshToken
		}
		updated.ExpiresAt = grant.ExpiresAt
		updated.UpdatedAt = uc.now().UTC()

		if err := uc.repo.PutToken(ctx, updated); err != nil {
			return nil, goerr.Wrap(err, "failed to store refreshed token", goerr.V(model.TenantIDKey, tenantID))
		}

		logging.From(ctx).Info("CRM token refreshed", "tenant_id", tenantID, "expires_at", updated.ExpiresAt)
		return updated, nil
	})
	if err != nil {
		return nil, err
	}

	record := v.(*model.TokenRecord)
	if shared {
		record = record.Clone()
	}
	return record, nil
}

// Disconnect forgets a tenant. Unknown tenants are not an error.
func (uc *OAuthUseCase) Disconnect(ctx context.Context, tenantID types.TenantID) error {
	if err := uc.repo.DeleteToken(ctx, tenantID); err != nil {
		if errors.Is(err, model.ErrNoToken) {
			return nil
		}
		return goerr.Wrap(err, "failed to delete token", goerr.V(model.TenantIDKey, tenantID))
	}
	logging.From(ctx).Info("CRM tenant disconnected", "tenant_id", tenantID)
	return nil
}

// Status returns the connected tenants sorted by tenant id
func (uc *OAuthUseCase) Status(ctx context.Context) (*model.AuthStatus, error) {
	tokens, err := uc.repo.ListTokens(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tokens")
	}

	status := &model.AuthStatus{
		Authenticated: len(tokens) > 0,
		Tenants:       make([]model.TenantStatus, 0, len(tokens)),
	}
	for _, t := range tokens {
		status.Tenants = append(status.Tenants, model.NewTenantStatus(t))
	}
	sort.Slice(status.Tenants, func(i, j int) bool {
		return status.Tenants[i].TenantID < status.Tenants[j].TenantID
	})
	return status, nil
}
