package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/types"
)

// TokenRecord holds the OAuth credentials of one CRM tenant
type TokenRecord struct {
	TenantID     types.TenantID
	AccessToken  string `masq:"secret"`
	RefreshToken string `masq:"secret"`
	ExpiresAt    time.Time
	AccountName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExpired reports whether the access token must be refreshed at now
func (t *TokenRecord) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ExpiresAtMillis returns the expiry as epoch milliseconds
func (t *TokenRecord) ExpiresAtMillis() int64 {
	return t.ExpiresAt.UnixMilli()
}

func (t *TokenRecord) Validate() error {
	if err := t.TenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token record")
	}
	if t.AccessToken == "" {
		return goerr.New("access token is empty", goerr.V(TenantIDKey, t.TenantID))
	}
	if t.ExpiresAt.IsZero() {
		return goerr.New("expiry is not set", goerr.V(TenantIDKey, t.TenantID))
	}
	return nil
}

// Clone returns a copy that can be mutated without affecting the original
func (t *TokenRecord) Clone() *TokenRecord {
	c := *t
	return &c
}

// TenantStatus is the token metadata exposed to clients; it never carries tokens
type TenantStatus struct {
	TenantID    types.TenantID `json:"tenantId"`
	AccountName string         `json:"accountName"`
	ExpiresAt   int64          `json:"expiresAt"`
}

// AuthStatus is a read-only snapshot of the connected tenants
type AuthStatus struct {
	Authenticated bool           `json:"authenticated"`
	Tenants       []TenantStatus `json:"tenants"`
}

// NewTenantStatus projects a token record onto its public metadata
func NewTenantStatus(t *TokenRecord) TenantStatus {
	return TenantStatus{
		TenantID:    t.TenantID,
		AccountName: t.AccountName,
		ExpiresAt:   t.ExpiresAtMillis(),
	}
}
