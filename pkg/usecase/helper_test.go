package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/repository/memory"
	"github.com/secmon-lab/talentbridge/pkg/service/crm"
	"github.com/secmon-lab/talentbridge/pkg/service/crm/crmtest"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	srv   *crmtest.Server
	repo  *memory.Memory
	uc    *usecase.UseCases
	clock *fakeClock
}

type envOption func(*config.Settings)

func newEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	srv := crmtest.NewServer()
	t.Cleanup(srv.Close)

	client := crm.New(crm.WithBaseURL(srv.URL), crm.WithRetry(1, time.Millisecond))
	provider, err := crm.NewOAuth(client, crm.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/auth/callback",
	})
	gt.NoError(t, err).Required()

	settings := config.DefaultSettings()
	for _, opt := range opts {
		opt(settings)
	}

	clock := &fakeClock{now: time.Now()}
	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithSettings(settings),
		usecase.WithCRM(provider, client, usecase.WithClock(clock.Now), usecase.WithStateKey([]byte("test-state-key"))),
	)

	return &testEnv{srv: srv, repo: repo, uc: uc, clock: clock}
}

// authorize runs the callback leg of the OAuth flow and returns the tenant
func (e *testEnv) authorize(t *testing.T) *model.TokenRecord {
	t.Helper()
	record, err := e.uc.OAuth.CompleteAuthorization(context.Background(), "abc123")
	gt.NoError(t, err).Required()
	return record
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*model.StageChangeEvent
}

func (r *recordingEmitter) Emit(ctx context.Context, event *model.StageChangeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) Events() []*model.StageChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.StageChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}
