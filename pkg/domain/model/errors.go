package model

import "github.com/m-mizutani/goerr/v2"

// Token lifecycle errors
var (
	ErrAuthorization          = goerr.New("authorization failed")
	ErrMetadataFetch          = goerr.New("failed to fetch CRM account metadata")
	ErrNoToken                = goerr.New("no token stored for tenant")
	ErrRefreshFailed          = goerr.New("token refresh failed")
	ErrAuthenticationRequired = goerr.New("CRM authentication required")
)

// Pipeline errors
var (
	ErrInvalidStage        = goerr.New("invalid pipeline stage")
	ErrCandidateNotInStage = goerr.New("candidate is not in the source stage")
)

// Outbound CRM call errors
var (
	// ErrNetwork is transient and safe to retry with backoff
	ErrNetwork = goerr.New("CRM network error")
	// ErrRemoteValidation is a non-retryable 4xx rejection from the CRM
	ErrRemoteValidation = goerr.New("CRM rejected the request")
	// ErrRemoteUnauthorized means the caller must re-authenticate
	ErrRemoteUnauthorized = goerr.New("CRM rejected the credentials")
)

// Local store errors
var (
	ErrCandidateNotFound = goerr.New("candidate not found")
	ErrJobNotFound       = goerr.New("job not found")
	ErrInvalidCandidate  = goerr.New("invalid candidate")
	ErrInvalidJob        = goerr.New("invalid job")
	ErrNotSynced         = goerr.New("record is not synced to CRM")
)

// Context keys for error values
const (
	TenantIDKey    = "tenant_id"
	CandidateIDKey = "candidate_id"
	JobIDKey       = "job_id"
	StageKey       = "stage"
	StatusCodeKey  = "status_code"
	RemoteMsgKey   = "remote_message"
)

// RemoteMessage returns the CRM's error detail carried by err, if any
func RemoteMessage(err error) string {
	e := goerr.Unwrap(err)
	if e == nil {
		return ""
	}
	if v, ok := e.Values()[RemoteMsgKey].(string); ok {
		return v
	}
	return ""
}

// ErrSyncDisabled is returned by push operations when settings turn sync off
var ErrSyncDisabled = goerr.New("CRM sync is disabled by settings")
