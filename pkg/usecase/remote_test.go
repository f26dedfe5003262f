package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/repository/memory"
	"github.com/secmon-lab/talentbridge/pkg/service/fixture"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
)

func TestRemoteWithFixture(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo, usecase.WithDataSource(fixture.New()))
	gt.Value(t, uc.Remote).NotNil().Required()
	gt.Value(t, uc.Remote.Source()).Equal("fixture")
	gt.Value(t, uc.OAuth).Nil()

	alice, err := uc.Candidate.Create(ctx, &model.Candidate{Name: "Alice", Email: "alice@example.com"})
	gt.NoError(t, err).Required()
	bob, err := uc.Candidate.Create(ctx, &model.Candidate{Name: "Bob"})
	gt.NoError(t, err).Required()
	_, err = uc.Job.Create(ctx, &model.Job{Title: "Engineer"})
	gt.NoError(t, err).Required()

	results, err := uc.Remote.PushCandidates(ctx, "t1", nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(2).Required()

	stored, err := uc.Candidate.Get(ctx, alice.ID)
	gt.NoError(t, err).Required()
	gt.B(t, stored.IsSynced()).True()

	stored, err = uc.Candidate.Get(ctx, bob.ID)
	gt.NoError(t, err).Required()
	gt.B(t, stored.IsSynced()).False()

	jobResults, err := uc.Remote.PushJobs(ctx, "t1", nil)
	gt.NoError(t, err).Required()
	gt.Array(t, jobResults).Length(1)

	status, err := uc.Remote.Status(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, *status).Equal(model.SyncStatus{
		SyncedCandidates:   1,
		UnsyncedCandidates: 1,
		SyncedJobs:         1,
		UnsyncedJobs:       0,
	})

	remote := uc.Remote.FetchCandidates(ctx, "t1")
	gt.Array(t, remote).Length(1).Required()
	gt.Value(t, remote[0].Email).Equal("alice@example.com")

	t.Run("only unsynced records are pushed by default", func(t *testing.T) {
		again, err := uc.Remote.PushJobs(ctx, "t1", nil)
		gt.NoError(t, err).Required()
		gt.Array(t, again).Length(0)
	})

	t.Run("explicit ids", func(t *testing.T) {
		picked, err := uc.Remote.PushCandidates(ctx, "t1", []types.CandidateID{alice.ID})
		gt.NoError(t, err).Required()
		gt.Array(t, picked).Length(1).Required()
		gt.B(t, picked[0].Success).True()
		gt.Array(t, uc.Remote.FetchCandidates(ctx, "t1")).Length(1)

		_, err = uc.Remote.PushCandidates(ctx, "t1", []types.CandidateID{"missing"})
		gt.Error(t, err).Is(model.ErrCandidateNotFound)
	})
}

func TestRemoteSyncDisabled(t *testing.T) {
	ctx := context.Background()
	settings := config.DefaultSettings()
	settings.SyncEnabled = false
	uc := usecase.New(memory.New(), usecase.WithSettings(settings), usecase.WithDataSource(fixture.New()))

	_, err := uc.Remote.PushCandidates(ctx, "t1", nil)
	gt.Error(t, err).Is(model.ErrSyncDisabled)
	_, err = uc.Remote.PushJobs(ctx, "t1", nil)
	gt.Error(t, err).Is(model.ErrSyncDisabled)

	_, err = uc.Remote.Status(ctx)
	gt.NoError(t, err)
}

func TestRemoteWithCRM(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gt.Value(t, e.uc.Remote.Source()).Equal("crm")

	c, err := e.uc.Candidate.Create(ctx, &model.Candidate{Name: "Sarah Johnson", Email: "sarah.j@example.com"})
	gt.NoError(t, err).Required()

	_, err = e.uc.Remote.PushCandidates(ctx, "12345", nil)
	gt.Error(t, err).Is(model.ErrAuthenticationRequired)

	tenant := e.authorize(t).TenantID
	results, err := e.uc.Remote.PushCandidates(ctx, tenant, nil)
	gt.NoError(t, err).Required()
	gt.Array(t, results).Length(1).Required()
	gt.B(t, results[0].Success).True()

	stored, err := e.uc.Candidate.Get(ctx, c.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.RemoteID).Equal(results[0].RemoteID)

	props, ok := e.srv.Object(model.ObjectContacts, stored.RemoteID)
	gt.B(t, ok).True()
	gt.Value(t, props["lastname"]).Equal("Johnson")
}

func TestUseCasesWithoutSource(t *testing.T) {
	uc := usecase.New(memory.New())
	gt.Value(t, uc.Remote).Nil()
	gt.Value(t, uc.Sync).Nil()
	gt.Value(t, uc.Settings().CompanyName).Equal(config.DefaultCompanyName)
}
