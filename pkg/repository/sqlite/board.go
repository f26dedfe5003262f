package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// boardRepository stores each board as one row per (job, candidate) with the
// stage and the position inside the stage column.
type boardRepository struct {
	db *sql.DB
}

func (r *boardRepository) Get(ctx context.Context, jobID types.JobID) (*model.PipelineBoard, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM boards WHERE job_id = ?`, jobID.String()).Scan(&exists)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up board", goerr.V(model.JobIDKey, jobID))
	}
	if exists == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT candidate_id, stage FROM board_entries WHERE job_id = ? ORDER BY stage, position`, jobID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load board", goerr.V(model.JobIDKey, jobID))
	}
	defer func() { _ = rows.Close() }()

	board := model.NewPipelineBoard(jobID)
	for rows.Next() {
		var candidateID, stage string
		if err := rows.Scan(&candidateID, &stage); err != nil {
			return nil, goerr.Wrap(err, "failed to scan board entry", goerr.V(model.JobIDKey, jobID))
		}
		s := types.Stage(stage)
		if !s.IsValid() {
			return nil, goerr.Wrap(model.ErrInvalidStage, "stored board has unknown stage",
				goerr.V(model.JobIDKey, jobID), goerr.V(model.StageKey, stage))
		}
		board.Stages[s] = append(board.Stages[s], types.CandidateID(candidateID))
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate board entries", goerr.V(model.JobIDKey, jobID))
	}
	return board, nil
}

func (r *boardRepository) Put(ctx context.Context, board *model.PipelineBoard) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	jobID := board.JobID.String()
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO boards (job_id) VALUES (?)`, jobID); err != nil {
		return goerr.Wrap(err, "failed to upsert board", goerr.V(model.JobIDKey, board.JobID))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM board_entries WHERE job_id = ?`, jobID); err != nil {
		return goerr.Wrap(err, "failed to clear board entries", goerr.V(model.JobIDKey, board.JobID))
	}

	for _, stage := range types.AllStages() {
		for pos, candidateID := range board.Stages[stage] {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO board_entries (job_id, candidate_id, stage, position) VALUES (?, ?, ?, ?)`,
				jobID, candidateID.String(), stage.String(), pos); err != nil {
				return goerr.Wrap(err, "failed to insert board entry",
					goerr.V(model.JobIDKey, board.JobID), goerr.V(model.CandidateIDKey, candidateID))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit board", goerr.V(model.JobIDKey, board.JobID))
	}
	return nil
}

func (r *boardRepository) Delete(ctx context.Context, jobID types.JobID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM board_entries WHERE job_id = ?`, jobID.String()); err != nil {
		return goerr.Wrap(err, "failed to delete board entries", goerr.V(model.JobIDKey, jobID))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM boards WHERE job_id = ?`, jobID.String()); err != nil {
		return goerr.Wrap(err, "failed to delete board", goerr.V(model.JobIDKey, jobID))
	}
	return tx.Commit()
}
