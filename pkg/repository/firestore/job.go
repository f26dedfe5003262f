package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type jobRepository struct {
	client     *firestore.Client
	collection string
}

type jobDoc struct {
	ID           string    `firestore:"id"`
	Title        string    `firestore:"title"`
	Company      string    `firestore:"company"`
	Location     string    `firestore:"location"`
	Status       string    `firestore:"status"`
	Description  string    `firestore:"description"`
	Requirements string    `firestore:"requirements"`
	Salary       string    `firestore:"salary"`
	RemoteID     string    `firestore:"remote_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func newJobDoc(j *model.Job) *jobDoc {
	return &jobDoc{
		ID:           j.ID.String(),
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		Status:       j.Status.String(),
		Description:  j.Description,
		Requirements: j.Requirements,
		Salary:       j.Salary,
		RemoteID:     j.RemoteID,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func (d *jobDoc) toModel() *model.Job {
	return &model.Job{
		ID:           types.JobID(d.ID),
		Title:        d.Title,
		Company:      d.Company,
		Location:     d.Location,
		Status:       types.JobStatus(d.Status),
		Description:  d.Description,
		Requirements: d.Requirements,
		Salary:       d.Salary,
		RemoteID:     d.RemoteID,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

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

	if _, err := r.client.Collection(r.collection).Doc(created.ID.String()).Set(ctx, newJobDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create job", goerr.V(model.JobIDKey, created.ID))
	}
	return created, nil
}

func (r *jobRepository) Get(ctx context.Context, id types.JobID) (*model.Job, error) {
	snap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get job", goerr.V(model.JobIDKey, id))
	}

	var doc jobDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode job", goerr.V(model.JobIDKey, id))
	}
	return doc.toModel(), nil
}

func (r *jobRepository) List(ctx context.Context) ([]*model.Job, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	jobs := []*model.Job{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate jobs")
		}

		var doc jobDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode job", goerr.V("doc_id", snap.Ref.ID))
		}
		jobs = append(jobs, doc.toModel())
	}

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
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

	if _, err := r.client.Collection(r.collection).Doc(updated.ID.String()).Set(ctx, newJobDoc(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update job", goerr.V(model.JobIDKey, j.ID))
	}
	return updated, nil
}

func (r *jobRepository) Delete(ctx context.Context, id types.JobID) error {
	docRef := r.client.Collection(r.collection).Doc(id.String())
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrJobNotFound, "job not found", goerr.V(model.JobIDKey, id))
		}
		return goerr.Wrap(err, "failed to check job existence", goerr.V(model.JobIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete job", goerr.V(model.JobIDKey, id))
	}
	return nil
}
