package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client sends transactional email through a third-party HTTP endpoint.
// The endpoint signals success with an explicit flag in the response body;
// an HTTP 2xx alone is not enough.
type Client struct {
	httpClient *http.Client
	endpoint   string
	recipient  string
	name       string
}

type emailRequest struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
}

type emailResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewClient(endpoint, recipient, name string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   endpoint,
		recipient:  recipient,
		name:       name,
	}
}

// Send posts one email. Callers treat a returned error as "retry next
// cycle"; nothing is surfaced to the user.
func (c *Client) Send(subject, message string) error {
	payload := emailRequest{
		RecipientEmail: c.recipient,
		RecipientName:  c.name,
		Subject:        subject,
		Message:        message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email service returned non-success status: %d", resp.StatusCode)
	}

	var body emailResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode email response: %w", err)
	}
	if !body.Success {
		return fmt.Errorf("email service reported failure: %s", body.Error)
	}

	log.Debug().
		Str("subject", subject).
		Int("status", resp.StatusCode).
		Msg("Email sent successfully")

	return nil
}
