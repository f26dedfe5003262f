package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

type candidateRepository struct {
	db *sql.DB
}

const candidateColumns = `id, name, email, phone, location, primary_skill, skills, status, notes, remote_id, created_at, updated_at`

func (r *candidateRepository) Create(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	now := time.Now().UTC()
	created := c.Clone()
	if created.ID == "" {
		created.ID = types.NewCandidateID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	skills, err := encodeSkills(created.Skills)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO candidates (`+candidateColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.Name, created.Email, created.Phone, created.Location, created.PrimarySkill,
		skills, created.Status.String(), created.Notes, created.RemoteID,
		toMillis(created.CreatedAt), toMillis(created.UpdatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert candidate", goerr.V(model.CandidateIDKey, created.ID))
	}

	return created, nil
}

func (r *candidateRepository) Get(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id.String())
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get candidate", goerr.V(model.CandidateIDKey, id))
	}
	return c, nil
}

func (r *candidateRepository) List(ctx context.Context) ([]*model.Candidate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list candidates")
	}
	defer func() { _ = rows.Close() }()

	candidates := []*model.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan candidate")
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate candidates")
	}
	return candidates, nil
}

func (r *candidateRepository) Update(ctx context.Context, c *model.Candidate) (*model.Candidate, error) {
	existing, err := r.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	updated := c.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	skills, err := encodeSkills(updated.Skills)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `
UPDATE candidates SET name = ?, email = ?, phone = ?, location = ?, primary_skill = ?, skills = ?,
  status = ?, notes = ?, remote_id = ?, updated_at = ?
WHERE id = ?`,
		updated.Name, updated.Email, updated.Phone, updated.Location, updated.PrimarySkill, skills,
		updated.Status.String(), updated.Notes, updated.RemoteID, toMillis(updated.UpdatedAt), updated.ID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update candidate", goerr.V(model.CandidateIDKey, c.ID))
	}
	return updated, nil
}

func (r *candidateRepository) Delete(ctx context.Context, id types.CandidateID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete candidate", goerr.V(model.CandidateIDKey, id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
	}
	return nil
}

func scanCandidate(row scanner) (*model.Candidate, error) {
	var (
		c                    model.Candidate
		id, status, skills   string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.Location, &c.PrimarySkill,
		&skills, &status, &c.Notes, &c.RemoteID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(skills), &c.Skills); err != nil {
		return nil, goerr.Wrap(err, "failed to decode skills", goerr.V(model.CandidateIDKey, id))
	}
	c.ID = types.CandidateID(id)
	c.Status = types.CandidateStatus(status)
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}

func encodeSkills(skills []string) (string, error) {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode skills")
	}
	return string(raw), nil
}
