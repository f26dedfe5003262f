package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/domain/model/config"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

var statusMap = []struct {
	target error
	status int
}{
	{model.ErrInvalidStage, http.StatusBadRequest},
	{model.ErrInvalidCandidate, http.StatusBadRequest},
	{model.ErrInvalidJob, http.StatusBadRequest},
	{model.ErrAuthorization, http.StatusBadRequest},
	{config.ErrInvalidSettings, http.StatusBadRequest},

	{model.ErrAuthenticationRequired, http.StatusUnauthorized},
	{model.ErrRemoteUnauthorized, http.StatusUnauthorized},
	{model.ErrRefreshFailed, http.StatusUnauthorized},

	{model.ErrNoToken, http.StatusNotFound},
	{model.ErrCandidateNotFound, http.StatusNotFound},
	{model.ErrJobNotFound, http.StatusNotFound},

	{model.ErrCandidateNotInStage, http.StatusConflict},
	{model.ErrNotSynced, http.StatusConflict},
	{model.ErrSyncDisabled, http.StatusConflict},

	{model.ErrRemoteValidation, http.StatusBadGateway},
	{model.ErrMetadataFetch, http.StatusBadGateway},

	{model.ErrNetwork, http.StatusServiceUnavailable},
}

// StatusCode maps a domain error onto an HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	for _, m := range statusMap {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// Handle logs the error with a message and reports it to Sentry when a
// client is configured. The error is returned unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logError(ctx, msg, err, "")
	report(err, http.StatusInternalServerError)
	return err
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
	// Detail carries the CRM's own explanation when it rejected a request
	Detail string `json:"detail,omitempty"`
}

// HandleHTTP logs the error and writes a JSON error response. 5xx errors
// are also reported to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		logError(ctx, "HTTP error", err, strconv.Itoa(statusCode))
		report(err, statusCode)
	} else {
		logging.From(ctx).Warn("HTTP error", "status", statusCode, "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:  err.Error(),
		Detail: model.RemoteMessage(err),
	})
}

// WriteError writes err with the status derived from StatusCode
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	HandleHTTP(ctx, w, err, StatusCode(err))
}

func logError(ctx context.Context, msg string, err error, status string) {
	logger := logging.From(ctx)
	attrs := []any{"error", err.Error()}
	if status != "" {
		attrs = append(attrs, "status", status)
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values(), "stack", ge.Stacks())
	}
	logger.Error(msg, attrs...)
}

func report(err error, status int) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("http.status", strconv.Itoa(status))
		sentry.CaptureException(err)
	})
}
