package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

type tokenStore struct {
	mu     sync.RWMutex
	tokens map[types.TenantID]*model.TokenRecord
}

func newTokenStore() *tokenStore {
	return &tokenStore{
		tokens: make(map[types.TenantID]*model.TokenRecord),
	}
}

func (r *Repository) PutToken(ctx context.Context, token *model.TokenRecord) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	r.tokens.tokens[token.TenantID] = token.Clone()
	return nil
}

func (r *Repository) GetToken(ctx context.Context, tenantID types.TenantID) (*model.TokenRecord, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tenant ID")
	}

	r.tokens.mu.RLock()
	defer r.tokens.mu.RUnlock()

	token, ok := r.tokens.tokens[tenantID]
	if !ok {
		return nil, goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
	}

	return token.Clone(), nil
}

func (r *Repository) DeleteToken(ctx context.Context, tenantID types.TenantID) error {
	if err := tenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}

	r.tokens.mu.Lock()
	defer r.tokens.mu.Unlock()

	if _, ok := r.tokens.tokens[tenantID]; !ok {
		return goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
	}

	delete(r.tokens.tokens, tenantID)
	return nil
}

func (r *Repository) ListTokens(ctx context.Context) ([]*model.TokenRecord, error) {
	r.tokens.mu.RLock()
	defer r.tokens.mu.RUnlock()

	tokens := make([]*model.TokenRecord, 0, len(r.tokens.tokens))
	for _, t := range r.tokens.tokens {
		tokens = append(tokens, t.Clone())
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].TenantID < tokens[j].TenantID
	})

	return tokens, nil
}
