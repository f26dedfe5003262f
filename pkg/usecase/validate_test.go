package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"github.com/secmon-lab/talentbridge/pkg/repository/memory"
	"github.com/secmon-lab/talentbridge/pkg/usecase"
)

func TestValidateDB(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent data has no issues", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		c, err := uc.Candidate.Create(ctx, &model.Candidate{Name: "Sarah Johnson", Email: "sarah@example.com"})
		gt.NoError(t, err).Required()
		j, err := uc.Job.Create(ctx, &model.Job{Title: "Backend Engineer"})
		gt.NoError(t, err).Required()
		_, err = uc.Pipeline.AddCandidate(ctx, j.ID, c.ID)
		gt.NoError(t, err).Required()

		result, err := uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.B(t, result.HasIssues()).False()
	})

	t.Run("reports dangling and duplicated placements", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		c, err := uc.Candidate.Create(ctx, &model.Candidate{Name: "Ken Watanabe", Email: "ken@example.com"})
		gt.NoError(t, err).Required()
		j, err := uc.Job.Create(ctx, &model.Job{Title: "Data Analyst"})
		gt.NoError(t, err).Required()

		board := model.NewPipelineBoard(j.ID)
		board.Stages[types.StageScreening] = []types.CandidateID{c.ID}
		board.Stages[types.StageOffer] = []types.CandidateID{c.ID}
		board.Stages[types.StageInterview] = []types.CandidateID{"missing"}
		gt.NoError(t, repo.Board().Put(ctx, board)).Required()

		result, err := uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Issues).Length(2).Required()
		gt.Value(t, result.Issues[0].CandidateID).Equal(types.CandidateID("missing"))
		gt.Value(t, result.Issues[0].JobID).Equal(j.ID)
		gt.Value(t, result.Issues[1].CandidateID).Equal(c.ID)
		gt.Value(t, result.Issues[1].Message).Equal("candidate is in both Screening and Offer")
	})

	t.Run("reports CRM objects shared by two records", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo)

		for _, email := range []string{"a@example.com", "b@example.com"} {
			_, err := repo.Candidate().Create(ctx, &model.Candidate{Name: email, Email: email, RemoteID: "501"})
			gt.NoError(t, err).Required()
		}
		for _, title := range []string{"SRE", "QA"} {
			_, err := repo.Job().Create(ctx, &model.Job{Title: title, RemoteID: "901"})
			gt.NoError(t, err).Required()
		}

		result, err := uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, result.Issues).Length(2)
	})
}
