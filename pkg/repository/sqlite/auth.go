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

func (s *SQLite) PutToken(ctx context.Context, token *model.TokenRecord) error {
	if err := token.Validate(); err != nil {
		return goerr.Wrap(err, "invalid token")
	}

	now := time.Now().UTC()
	createdAt := token.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := token.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO tokens (tenant_id, access_token, refresh_token, expires_at, account_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(tenant_id) DO UPDATE SET
  access_token = excluded.access_token,
  refresh_token = excluded.refresh_token,
  expires_at = excluded.expires_at,
  account_name = excluded.account_name,
  created_at = excluded.created_at,
  updated_at = excluded.updated_at`,
		token.TenantID.String(), token.AccessToken, token.RefreshToken,
		toMillis(token.ExpiresAt), token.AccountName, toMillis(createdAt), toMillis(updatedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to put token", goerr.V(model.TenantIDKey, token.TenantID))
	}
	return nil
}

func (s *SQLite) GetToken(ctx context.Context, tenantID types.TenantID) (*model.TokenRecord, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid tenant ID")
	}

	row := s.db.QueryRowContext(ctx, `
SELECT tenant_id, access_token, refresh_token, expires_at, account_name, created_at, updated_at
FROM tokens WHERE tenant_id = ?`, tenantID.String())

	token, err := scanToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get token", goerr.V(model.TenantIDKey, tenantID))
	}
	return token, nil
}

func (s *SQLite) DeleteToken(ctx context.Context, tenantID types.TenantID) error {
	if err := tenantID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant ID")
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE tenant_id = ?`, tenantID.String())
	if err != nil {
		return goerr.Wrap(err, "failed to delete token", goerr.V(model.TenantIDKey, tenantID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return goerr.Wrap(model.ErrNoToken, "token not found", goerr.V(model.TenantIDKey, tenantID))
	}
	return nil
}

func (s *SQLite) ListTokens(ctx context.Context) ([]*model.TokenRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT tenant_id, access_token, refresh_token, expires_at, account_name, created_at, updated_at
FROM tokens ORDER BY tenant_id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tokens")
	}
	defer func() { _ = rows.Close() }()

	tokens := []*model.TokenRecord{}
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tokens")
	}
	return tokens, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanToken(row scanner) (*model.TokenRecord, error) {
	var (
		t                               model.TokenRecord
		tenantID                        string
		expiresAt, createdAt, updatedAt int64
	)
	if err := row.Scan(&tenantID, &t.AccessToken, &t.RefreshToken, &expiresAt, &t.AccountName, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.TenantID = types.TenantID(tenantID)
	t.ExpiresAt = fromMillis(expiresAt)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return &t, nil
}
