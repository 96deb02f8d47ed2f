package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/fireplace-controller/internal/env"
)

var baseURL = "https://ntfy.sh"

type Client struct {
	http  *http.Client
	topic string
}

// Init returns nil when no ntfy topic is configured.
func Init() *Client {
	if env.Cfg.NtfyTopic == "" {
		log.Warn().Msg("Ntfy topic not configured - notifications disabled")
		return nil
	}

	c := &Client{
		http:  &http.Client{Timeout: 10 * time.Second},
		topic: env.Cfg.NtfyTopic,
	}

	log.Info().
		Str("topic", c.topic).
		Msg("Ntfy notifications initialized")
	return c
}

// Send posts a notification to the configured ntfy topic.
func (c *Client) Send(title, message string) error {
	payload := map[string]interface{}{
		"topic":   c.topic,
		"title":   title,
		"message": message,
		"tags":    []string{"fire"},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// ntfy accepts JSON publishes on the root URL, with the topic in the body
	req, err := http.NewRequest(http.MethodPost, baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy returned non-success status: %d", resp.StatusCode)
	}

	log.Debug().
		Str("title", title).
		Int("status", resp.StatusCode).
		Msg("Notification sent successfully")

	return nil
}
