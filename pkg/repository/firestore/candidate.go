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

type candidateRepository struct {
	client     *firestore.Client
	collection string
}

type candidateDoc struct {
	ID           string    `firestore:"id"`
	Name         string    `firestore:"name"`
	Email        string    `firestore:"email"`
	Phone        string    `firestore:"phone"`
	Location     string    `firestore:"location"`
	PrimarySkill string    `firestore:"primary_skill"`
	Skills       []string  `firestore:"skills"`
	Status       string    `firestore:"status"`
	Notes        string    `firestore:"notes"`
	RemoteID     string    `firestore:"remote_id"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func newCandidateDoc(c *model.Candidate) *candidateDoc {
	return &candidateDoc{
		ID:           c.ID.String(),
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Location:     c.Location,
		PrimarySkill: c.PrimarySkill,
		Skills:       c.Skills,
		Status:       c.Status.String(),
		Notes:        c.Notes,
		RemoteID:     c.RemoteID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (d *candidateDoc) toModel() *model.Candidate {
	return &model.Candidate{
		ID:           types.CandidateID(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Location:     d.Location,
		PrimarySkill: d.PrimarySkill,
		Skills:       d.Skills,
		Status:       types.CandidateStatus(d.Status),
		Notes:        d.Notes,
		RemoteID:     d.RemoteID,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

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

	if _, err := r.client.Collection(r.collection).Doc(created.ID.String()).Set(ctx, newCandidateDoc(created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create candidate", goerr.V(model.CandidateIDKey, created.ID))
	}
	return created, nil
}

func (r *candidateRepository) Get(ctx context.Context, id types.CandidateID) (*model.Candidate, error) {
	snap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get candidate", goerr.V(model.CandidateIDKey, id))
	}

	var doc candidateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode candidate", goerr.V(model.CandidateIDKey, id))
	}
	return doc.toModel(), nil
}

func (r *candidateRepository) List(ctx context.Context) ([]*model.Candidate, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	candidates := []*model.Candidate{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate candidates")
		}

		var doc candidateDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode candidate", goerr.V("doc_id", snap.Ref.ID))
		}
		candidates = append(candidates, doc.toModel())
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
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

	if _, err := r.client.Collection(r.collection).Doc(updated.ID.String()).Set(ctx, newCandidateDoc(updated)); err != nil {
		return nil, goerr.Wrap(err, "failed to update candidate", goerr.V(model.CandidateIDKey, c.ID))
	}
	return updated, nil
}

func (r *candidateRepository) Delete(ctx context.Context, id types.CandidateID) error {
	docRef := r.client.Collection(r.collection).Doc(id.String())
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrCandidateNotFound, "candidate not found", goerr.V(model.CandidateIDKey, id))
		}
		return goerr.Wrap(err, "failed to check candidate existence", goerr.V(model.CandidateIDKey, id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete candidate", goerr.V(model.CandidateIDKey, id))
	}
	return nil
}
