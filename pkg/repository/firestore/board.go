package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type boardRepository struct {
	client     *firestore.Client
	collection string
}

type boardDoc struct {
	JobID  string              `firestore:"job_id"`
	Stages map[string][]string `firestore:"stages"`
}

func (r *boardRepository) Get(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error) {
	snap, err := r.client.Collection(r.collection).Doc(jobID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get board", goerr.V(model.JobIDKey, jobID))
	}

	var doc boardDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode board", goerr.V(model.JobIDKey, jobID))
	}

	board := model.NewPipelineBoard(jobID)
	for stage, ids := range doc.Stages {
		s := types.Stage(stage)
		if !s.IsValid() {
			return nil, goerr.Wrap(model.ErrInvalidStage, "stored board has unknown stage",
				goerr.V(model.JobIDKey, jobID), goerr.V(model.StageKey, stage))
		}
		for _, id := range ids {
			board.Stages[s] = append(board.Stages[s], types.CandidateID(id))
		}
	}
	return board, nil
}

func (r *boardRepository) Put(ctx context.Context, board *model.PipelineBoard) error {
	doc := boardDoc{
		JobID:  board.JobID.String(),
		Stages: make(map[string][]string, len(board.Stages)),
	}
	for _, stage := range types.AllStages() {
		ids := make([]string, 0, len(board.Stages[stage]))
		for _, id := range board.Stages[stage] {
			ids = append(ids, id.String())
		}
		doc.Stages[stage.String()] = ids
	}

	if _, err := r.client.Collection(r.collection).Doc(board.JobID.String()).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put board", goerr.V(model.JobIDKey, board.JobID))
	}
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, jobID types.JobID) error {
	if _, err := r.client.Collection(r.collection).Doc(jobID.String()).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete board", goerr.V(model.JobIDKey, jobID))
	}
	return nil
}
