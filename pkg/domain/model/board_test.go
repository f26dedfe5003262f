package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

func TestNewPipelineBoard(t *testing.T) {
	b := model.NewPipelineBoard("job1")
	gt.Value(t, len(b.Stages)).Equal(len(types.AllStages()))
	for _, s := range types.AllStages() {
		gt.Array(t, b.Stages[s]).Length(0)
	}
	gt.Value(t, b.Count()).Equal(0)
}

func TestPipelineBoard_Move(t *testing.T) {
	t.Run("moves candidate between stages", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		gt.B(t, b.Add("c1")).True()

		moved, err := b.Move("c1", types.StageNewApplicants, types.StageScreening)
		gt.NoError(t, err).Required()
		gt.B(t, moved).True()
		gt.Array(t, b.Stages[types.StageNewApplicants]).Length(0)
		gt.Value(t, b.Stages[types.StageScreening]).Equal([]types.CandidateID{"c1"})
	})

	t.Run("second move from stale stage fails", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		b.Add("c1")
		_, err := b.Move("c1", types.StageNewApplicants, types.StageScreening)
		gt.NoError(t, err).Required()

		_, err = b.Move("c1", types.StageNewApplicants, types.StageScreening)
		gt.Error(t, err).Is(model.ErrCandidateNotInStage)
	})

	t.Run("invalid target leaves board unchanged", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		b.Add("c1")
		before := b.Clone()

		_, err := b.Move("c1", types.StageNewApplicants, types.Stage("Nonexistent"))
		gt.Error(t, err).Is(model.ErrInvalidStage)
		gt.Value(t, b.Stages).Equal(before.Stages)
	})

	t.Run("invalid source stage", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		b.Add("c1")
		_, err := b.Move("c1", types.Stage("Limbo"), types.StageOffer)
		gt.Error(t, err).Is(model.ErrInvalidStage)
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		b.Add("c1")
		moved, err := b.Move("c1", types.StageNewApplicants, types.StageNewApplicants)
		gt.NoError(t, err).Required()
		gt.B(t, moved).False()
		gt.Value(t, b.Stages[types.StageNewApplicants]).Equal([]types.CandidateID{"c1"})
	})

	t.Run("backward move is allowed", func(t *testing.T) {
		b := model.NewPipelineBoard("job1")
		b.Add("c1")
		_, err := b.Move("c1", types.StageNewApplicants, types.StageInterview)
		gt.NoError(t, err).Required()
		_, err = b.Move("c1", types.StageInterview, types.StageScreening)
		gt.NoError(t, err).Required()

		stage, ok := b.StageOf("c1")
		gt.B(t, ok).True()
		gt.Value(t, stage).Equal(types.StageScreening)
	})
}

func TestPipelineBoard_AddRemove(t *testing.T) {
	b := model.NewPipelineBoard("job1")
	gt.B(t, b.Add("c1")).True()
	gt.B(t, b.Add("c1")).False()
	gt.Value(t, b.Count()).Equal(1)

	gt.B(t, b.Remove("c1")).True()
	gt.B(t, b.Remove("c1")).False()
	gt.Value(t, b.Count()).Equal(0)
}

func TestPipelineBoard_Clone(t *testing.T) {
	b := model.NewPipelineBoard("job1")
	b.Add("c1")
	c := b.Clone()
	c.Add("c2")

	gt.Value(t, b.Count()).Equal(1)
	gt.Value(t, c.Count()).Equal(2)
}
