package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

func TestJobRepository(t *testing.T) {
	runAll(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("create and get", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Job().Create(ctx, &model.Job{
				Title:    "Backend Engineer",
				Company:  "Acme",
				Location: "Tokyo",
				Status:   types.JobStatusOpen,
				Salary:   "120000",
			})
			gt.NoError(t, err).Required()

			got, err := repo.Job().Get(ctx, created.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.Title).Equal("Backend Engineer")
			gt.Value(t, got.Company).Equal("Acme")
			gt.Value(t, got.Salary).Equal("120000")
			gt.Value(t, got.Status).Equal(types.JobStatusOpen)
			gt.B(t, got.IsSynced()).False()
		})

		t.Run("update writes back remote id", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			created, err := repo.Job().Create(ctx, &model.Job{Title: "SRE"})
			gt.NoError(t, err).Required()

			created.RemoteID = "deal-7"
			created.Status = types.JobStatusFilled
			_, err = repo.Job().Update(ctx, created)
			gt.NoError(t, err).Required()

			got, err := repo.Job().Get(ctx, created.ID)
			gt.NoError(t, err).Required()
			gt.Value(t, got.RemoteID).Equal("deal-7")
			gt.Value(t, got.Status).Equal(types.JobStatusFilled)
		})

		t.Run("unknown id returns ErrJobNotFound", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			_, err := repo.Job().Get(ctx, "missing")
			gt.Error(t, err).Is(model.ErrJobNotFound)
			gt.Error(t, repo.Job().Delete(ctx, "missing")).Is(model.ErrJobNotFound)
		})

		t.Run("list contains every job", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			for _, title := range []string{"A", "B"} {
				_, err := repo.Job().Create(ctx, &model.Job{Title: title})
				gt.NoError(t, err).Required()
			}

			list, err := repo.Job().List(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, list).Length(2)
		})
	})
}
