package usecase_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

func TestGetValidTokenUnknownTenant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, id := range []types.TenantID{"12345", "unknown", "0"} {
		_, err := e.uc.OAuth.GetValidToken(ctx, id)
		gt.Error(t, err).Is(model.ErrNoToken)
	}
	gt.Number(t, e.srv.Refreshes()).Equal(0)
}

func TestAuthorizeEndToEnd(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	before := time.Now()
	record := e.authorize(t)
	after := time.Now()

	gt.Value(t, record.TenantID).Equal(types.TenantID("12345"))
	gt.Value(t, record.AccountName).Equal("Acme Recruiting")

	tokens, err := e.repo.ListTokens(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, tokens).Length(1).Required()
	gt.Value(t, tokens[0].TenantID).Equal(types.TenantID("12345"))

	expiresIn := time.Duration(e.srv.ExpiresIn) * time.Second
	gt.B(t, !tokens[0].ExpiresAt.Before(before.Add(expiresIn).Add(-time.Second))).True()
	gt.B(t, !tokens[0].ExpiresAt.After(after.Add(expiresIn).Add(time.Second))).True()

	token, err := e.uc.OAuth.GetValidToken(ctx, record.TenantID)
	gt.NoError(t, err).Required()
	gt.Value(t, token).Equal(record.AccessToken)
	gt.Number(t, e.srv.Refreshes()).Equal(0)
	gt.Number(t, e.srv.Exchanges()).Equal(1)
}

func TestAuthorizeWithoutExpiresIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.srv.SetExpiresIn(0)

	before := time.Now()
	record := e.authorize(t)
	gt.B(t, record.ExpiresAt.After(before)).True()

	refreshed, err := e.uc.OAuth.Refresh(ctx, record.TenantID)
	gt.NoError(t, err).Required()
	gt.B(t, refreshed.ExpiresAt.After(before)).True()
}

func TestCompleteAuthorizationOverwrites(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.authorize(t)
	second := e.authorize(t)
	gt.Value(t, second.AccessToken).NotEqual(first.AccessToken)

	tokens, err := e.repo.ListTokens(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, tokens).Length(1).Required()
	gt.Value(t, tokens[0].AccessToken).Equal(second.AccessToken)
}

func TestCompleteAuthorizationFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing code does not reach the CRM", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.uc.OAuth.CompleteAuthorization(ctx, "")
		gt.Error(t, err).Is(model.ErrAuthorization)
		gt.Number(t, e.srv.Exchanges()).Equal(0)
	})

	t.Run("rejected code", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.uc.OAuth.CompleteAuthorization(ctx, "bad-code")
		gt.Error(t, err).Is(model.ErrAuthorization)

		tokens, err := e.repo.ListTokens(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tokens).Length(0)
	})

	t.Run("metadata failure discards the token", func(t *testing.T) {
		e := newEnv(t)
		e.srv.FailAccountInfo(true)

		_, err := e.uc.OAuth.CompleteAuthorization(ctx, "abc123")
		gt.Error(t, err).Is(model.ErrMetadataFetch)

		tokens, err := e.repo.ListTokens(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, tokens).Length(0)
	})
}

func TestGetValidTokenSingleFlight(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	record := e.authorize(t)

	// the rotated token must outlive the advanced clock
	e.srv.SetExpiresIn(7200)
	e.srv.SetRefreshDelay(100 * time.Millisecond)
	e.clock.Advance(time.Hour)

	const callers = 20
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = e.uc.OAuth.GetValidToken(ctx, record.TenantID)
		}()
	}
	wg.Wait()

	for i := range callers {
		gt.NoError(t, errs[i])
		gt.Value(t, tokens[i]).Equal(tokens[0])
	}
	gt.Value(t, tokens[0]).NotEqual(record.AccessToken)
	gt.Number(t, e.srv.Refreshes()).Equal(1)

	stored, err := e.repo.GetToken(ctx, record.TenantID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.AccessToken).Equal(tokens[0])
	gt.Value(t, stored.RefreshToken).NotEqual(record.RefreshToken)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the rotated refresh token", func(t *testing.T) {
		e := newEnv(t)
		record := e.authorize(t)

		refreshed, err := e.uc.OAuth.Refresh(ctx, record.TenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, refreshed.RefreshToken).NotEqual(record.RefreshToken)
		gt.Value(t, refreshed.AccessToken).NotEqual(record.AccessToken)
		gt.Value(t, refreshed.CreatedAt).Equal(record.CreatedAt)

		// the new refresh token works, proving the old one is no longer needed
		again, err := e.uc.OAuth.Refresh(ctx, record.TenantID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.RefreshToken).NotEqual(refreshed.RefreshToken)
		gt.Number(t, e.srv.Refreshes()).Equal(2)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		e := newEnv(t)
		record := e.authorize(t)

		broken := record.Clone()
		broken.RefreshToken = "revoked"
		gt.NoError(t, e.repo.PutToken(ctx, broken)).Required()

		_, err := e.uc.OAuth.Refresh(ctx, record.TenantID)
		gt.Error(t, err).Is(model.ErrRefreshFailed)

		e.clock.Advance(time.Hour)
		_, err = e.uc.OAuth.GetValidToken(ctx, record.TenantID)
		gt.Error(t, err).Is(model.ErrRefreshFailed)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.uc.OAuth.Refresh(ctx, "nobody")
		gt.Error(t, err).Is(model.ErrNoToken)
	})
}

func TestRefreshExpiring(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	record := e.authorize(t)

	n, err := e.uc.OAuth.RefreshExpiring(ctx, time.Minute)
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(0)

	n, err = e.uc.OAuth.RefreshExpiring(ctx, time.Hour)
	gt.NoError(t, err).Required()
	gt.Number(t, n).Equal(1)

	stored, err := e.repo.GetToken(ctx, record.TenantID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.AccessToken).NotEqual(record.AccessToken)
}

func TestDisconnectIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	record := e.authorize(t)

	for range 2 {
		gt.NoError(t, e.uc.OAuth.Disconnect(ctx, record.TenantID))

		status, err := e.uc.OAuth.Status(ctx)
		gt.NoError(t, err).Required()
		gt.B(t, status.Authenticated).False()
		gt.Array(t, status.Tenants).Length(0)
	}
}

func TestStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	for _, id := range []types.TenantID{"300", "100", "200"} {
		gt.NoError(t, e.repo.PutToken(ctx, &model.TokenRecord{
			TenantID:     id,
			AccessToken:  "at-" + id.String(),
			RefreshToken: "rt-" + id.String(),
			ExpiresAt:    time.UnixMilli(1700000000000),
			AccountName:  "Portal " + id.String(),
		})).Required()
	}

	status, err := e.uc.OAuth.Status(ctx)
	gt.NoError(t, err).Required()
	gt.B(t, status.Authenticated).True()
	gt.Array(t, status.Tenants).Length(3).Required()
	gt.Value(t, status.Tenants[0].TenantID).Equal(types.TenantID("100"))
	gt.Value(t, status.Tenants[2].TenantID).Equal(types.TenantID("300"))
	gt.Value(t, status.Tenants[1].ExpiresAt).Equal(int64(1700000000000))
	gt.Value(t, status.Tenants[1].AccountName).Equal("Portal 200")
}

func TestAuthorizationState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	raw, err := e.uc.OAuth.InitiateAuthorization(ctx)
	gt.NoError(t, err).Required()

	u, err := url.Parse(raw)
	gt.NoError(t, err).Required()
	state := u.Query().Get("state")
	gt.String(t, state).NotEqual("")
	gt.Value(t, u.Query().Get("client_id")).Equal("client-id")

	gt.NoError(t, e.uc.OAuth.VerifyState(state))
	gt.Error(t, e.uc.OAuth.VerifyState("")).Is(model.ErrAuthorization)
	gt.Error(t, e.uc.OAuth.VerifyState(state+"x")).Is(model.ErrAuthorization)

	e.clock.Advance(11 * time.Minute)
	gt.Error(t, e.uc.OAuth.VerifyState(state)).Is(model.ErrAuthorization)
}
