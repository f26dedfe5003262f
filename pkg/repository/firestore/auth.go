package firestore

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type tokenDoc struct {
	TenantID     string    `firestore:"tenant_id"`
	AccessToken  string    `firestore:"access_token"`
	RefreshToken string    `firestore:"refresh_token"`
	ExpiresAt    time.Time `firestore:"expires_at"`
	AccountName  string    `firestore:"account_name"`
	CreatedAt    time.Time `firestore:"created_at"`
	UpdatedAt    time.Time `firestore:"updated_at"`
}

func (d *tokenDoc) toModel() *model.TokenRecord {
	return &model.TokenRecord{
		TenantID:     types.TenantID(d.TenantID),
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		ExpiresAt:    d.ExpiresAt.UTC(),
		AccountName:  d.AccountName,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func (f *Firestore) PutToken(ctx context.Context, token *model.TokenRecord) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	doc := tokenDoc{
		TenantID:     token.TenantID.String(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
		AccountName:  token.AccountName,
		CreatedAt:    token.CreatedAt,
		UpdatedAt:    token.UpdatedAt,
	}

	docRef := f.client.Collection(f.collection("tokens")).Doc(token.TenantID.String())
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put token to firestore", goerr.V(model.TenantIDKey, token.TenantID))
	}
	return nil
}

func (f *Firestore) GetToken(ctx context.Context, tenantID types.TenantID) (*model.TokenRecord, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tenant ID")
	}

	snap, err := f.client.Collection(f.collection("tokens")).Doc(tenantID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
		}
		return nil, goerr.Wrap(err, "failed to get token from firestore", goerr.V(model.TenantIDKey, tenantID))
	}

	var doc tokenDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal token", goerr.V(model.TenantIDKey, tenantID))
	}
	return doc.toModel(), nil
}

func (f *Firestore) DeleteToken(ctx context.Context, tenantID types.TenantID) error {
	if err := tenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}

	docRef := f.client.Collection(f.collection("tokens")).Doc(tenantID.String())
	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
		}
		return goerr.Wrap(err, "failed to get token from firestore", goerr.V(model.TenantIDKey, tenantID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete token from firestore", goerr.V(model.TenantIDKey, tenantID))
	}
	return nil
}

func (f *Firestore) ListTokens(ctx context.Context) ([]*model.TokenRecord, error) {
	iter := f.client.Collection(f.collection("tokens")).Documents(ctx)
	defer iter.Stop()

	tokens := []*model.TokenRecord{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tokens")
		}

		var doc tokenDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal token", goerr.V("doc_id", snap.Ref.ID))
		}
		tokens = append(tokens, doc.toModel())
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].TenantID < tokens[j].TenantID
	})
	return tokens, nil
}
