// Package complete forwards "mark complete" requests to the application
// that owns deadline records.
package complete

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ddlcal/internal/calendar"
	appLog "ddlcal/internal/log"
	"ddlcal/internal/model"
)

// CSRFField is the form field the host application checks.
const CSRFField = "csrf_token"

// FormClient posts an empty form (plus csrf_token) to
// <BaseURL>/projects/complete/{id}, the way a browser form submission
// would. Redirects are not followed: a 3xx is the host's normal reply.
type FormClient struct {
	baseURL   string
	csrfToken string
	client    *http.Client
}

var _ calendar.Completer = (*FormClient)(nil)

// NewFormClient returns a client for baseURL. A nil client gets a 10 second
// timeout.
func NewFormClient(baseURL, csrfToken string, client *http.Client) *FormClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &FormClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		csrfToken: csrfToken,
		client:    &c,
	}
}

// WithToken returns a copy that sends token instead of the configured one.
// An empty token keeps the configured one.
func (f *FormClient) WithToken(token string) *FormClient {
	if token == "" {
		return f
	}
	cp := *f
	cp.csrfToken = token
	return &cp
}

// Complete implements calendar.Completer.
func (f *FormClient) Complete(ctx context.Context, id model.ID) error {
	if !id.Valid() {
		return errors.New("complete: invalid deadline id")
	}
	if f.baseURL == "" {
		return errors.New("complete: base URL is not configured")
	}

	form := url.Values{}
	if f.csrfToken != "" {
		form.Set(CSRFField, f.csrfToken)
	}
	target := f.baseURL + calendar.CompletionPath(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("complete %s: %w", id, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("complete %s: unexpected status %s", id, resp.Status)
	}
	appLog.Info("completion forwarded", "id", id, "status", resp.StatusCode)
	return nil
}
