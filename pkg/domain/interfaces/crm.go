package interfaces

import (
	"context"

	"github.com/secmon-lab/talentbridge/pkg/domain/model"
)

// OAuthProvider speaks the CRM's OAuth 2.0 endpoints
type OAuthProvider interface {
	// AuthCodeURL builds the authorization URL with the configured scopes
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for a token pair
	Exchange(ctx context.Context, code string) (*model.TokenGrant, error)
	// Refresh mints a new token pair from a refresh token
	Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error)
	// AccountInfo fetches portal metadata with a bearer token
	AccountInfo(ctx context.Context, accessToken string) (*model.AccountInfo, error)
}

// ListOptions controls object listing
type ListOptions struct {
	Limit      int
	After      string
	Properties []string
}

// CRM is the object API of the CRM. Every call takes the bearer token of the
// tenant it acts for.
type CRM interface {
	CreateObject(ctx context.Context, token, objectType string, props map[string]string) (*model.RemoteObject, error)
	GetObject(ctx context.Context, token, objectType, id string) (*model.RemoteObject, error)
	ListObjects(ctx context.Context, token, objectType string, opts ListOptions) ([]*model.RemoteObject, error)
	UpdateObject(ctx context.Context, token, objectType, id string, props map[string]string) (*model.RemoteObject, error)
	DeleteObject(ctx context.Context, token, objectType, id string) error
	SearchObjects(ctx context.Context, token, objectType, property, value string) ([]*model.RemoteObject, error)
	AssociateDealContact(ctx context.Context, token, dealID, contactID string) error
	CreateNote(ctx context.Context, token, contactID, body string) error
}
