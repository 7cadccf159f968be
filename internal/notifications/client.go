// Package notifications pushes an optional completion message to an ntfy
// topic after an import run, so long-running fills can be watched from a
// phone.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	topic      string
	enabled    bool
}

func NewClient(baseURL, topic string, enabled bool) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		topic:   topic,
		enabled: enabled,
	}
}

// SendNotification posts message to the configured topic. A disabled client
// is a silent no-op so call sites need no guards.
func (c *Client) SendNotification(ctx context.Context, title, message string) error {
	if !c.enabled {
		log.Debug().Msg("Notifications disabled, skipping")
		return nil
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), c.topic)
	req, err := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Title", title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notification request failed with status %d: %s", resp.StatusCode, string(body))
	}

	log.Debug().Str("topic", c.topic).Msg("Sent notification")
	return nil
}

// NotifyImportComplete summarizes an import run.
func (c *Client) NotifyImportComplete(ctx context.Context, parsed, enabled, filled int) error {
	message := fmt.Sprintf("Parsed %d rows (%d usable), filled %d listing rows.", parsed, enabled, filled)
	return c.SendNotification(ctx, "Bulk import finished", message)
}
