package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
)

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
	candidate        *candidateRepository
	job              *jobRepository
	board            *boardRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections, mainly for tests sharing a project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}

	f.candidate = &candidateRepository{client: client, collection: f.collection("candidates")}
	f.job = &jobRepository{client: client, collection: f.collection("jobs")}
	f.board = &boardRepository{client: client, collection: f.collection("boards")}

	return f, nil
}

func (f *Firestore) collection(name string) string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_" + name
	}
	return name
}

func (f *Firestore) Candidate() interfaces.CandidateRepository {
	return f.candidate
}

func (f *Firestore) Job() interfaces.JobRepository {
	return f.job
}

func (f *Firestore) Board() interfaces.BoardRepository {
	return f.board
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
