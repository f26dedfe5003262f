package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

type jobRepository struct {
	db *sql.DB
}

const jobColumns = `id, title, company, location, status, description, requirements, salary, remote_id, created_at, updated_at`

func (r *jobRepository) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	now := time.Now().UTC()
	created := j.Clone()
	if created.ID == "" {
		created.ID = types.NewJobID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID.String(), created.Title, created.Company, created.Location, created.Status.String(),
		created.Description, created.Requirements, created.Salary, created.RemoteID,
		toMillis(created.CreatedAt), toMillis(created.UpdatedAt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to insert job", goerr.V(model.JobIDKey, created.ID))
	}
	return created, nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id.String())
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get job", goerr.V(model.JobIDKey, id))
	}
	return j, nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list jobs")
	}
	defer func() { _ = rows.Close() }()

	jobs := []*model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate jobs")
	}
	return jobs, nil
}

func (r *jobRepository) Update(ctx context.Context, j *model.Job) (*model.Job, error) {
	existing, err := r.Get(ctx, j.ID)
	if err != nil {
		return nil, err
	}

	updated := j.Clone()
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
UPDATE jobs SET title = ?, company = ?, location = ?, status = ?, description = ?, requirements = ?,
  salary = ?, remote_id = ?, updated_at = ?
WHERE id = ?`,
		updated.Title, updated.Company, updated.Location, updated.Status.String(), updated.Description,
		updated.Requirements, updated.Salary, updated.RemoteID, toMillis(updated.UpdatedAt), updated.ID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update job", goerr.V(model.JobIDKey, j.ID))
	}
	return updated, nil
}

func (r *jobRepository) Delete(ctx context.Context, id types.JobID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete job", goerr.V(model.JobIDKey, id))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
	}
	return nil
}

func scanJob(row scanner) (*model.Job, error) {
	var (
		j                    model.Job
		id, status           string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &j.Title, &j.Company, &j.Location, &status, &j.Description,
		&j.Requirements, &j.Salary, &j.RemoteID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	j.ID = types.JobID(id)
	j.Status = types.JobStatus(status)
	j.CreatedAt = fromMillis(createdAt)
	j.UpdatedAt = fromMillis(updatedAt)
	return &j, nil
}
