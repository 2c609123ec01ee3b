package calendar

import (
	"context"
	"net/url"

	"ddlcal/internal/model"
)

// CompletionPathPrefix is the fixed route of the external completion
// endpoint.
const CompletionPathPrefix = "/projects/complete/"

// CompletionPath returns the endpoint path for marking id complete.
func CompletionPath(id model.ID) string {
	return CompletionPathPrefix + url.PathEscape(string(id))
}

// Completer marks a deadline complete on the server that owns it.
type Completer interface {
	Complete(ctx context.Context, id model.ID) error
}

// RequestCompletion hands id to the completer. Ids that cannot name a
// record are ignored. The calendar itself never changes; callers reload
// the feed to observe the result.
func RequestCompletion(ctx context.Context, cp Completer, id model.ID) error {
	if cp == nil || !id.Valid() {
		return nil
	}
	return cp.Complete(ctx, id)
}
