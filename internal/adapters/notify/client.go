package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"communityhub/internal/domain"
)

type httpDispatcher struct {
	client  *http.Client
	baseURL string
	secret  string
}

// NewHTTPDispatcher returns a dispatcher that posts jobs to the internal
// notification endpoint, authenticated with the shared cron secret.
func NewHTTPDispatcher(client *http.Client, baseURL, secret string) domain.NotificationDispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpDispatcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
	}
}

func (d *httpDispatcher) Dispatch(ctx context.Context, job *domain.NotificationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode notification job: %w", err)
	}
	url := d.baseURL + "/internal/notifications"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", d.secret)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post notification job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
