package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultMaxLength = 130
	defaultMinLength = 30

)

// MinInputLength is the shortest text worth summarizing; anything shorter is
// already summary-sized. Callers can use it to decide whether to go looking
// for a longer text first.
const MinInputLength = 30

// Client talks to an external summarization service. Summaries are strictly
// best-effort: any failure, timeout or short input yields nil, and callers
// must tolerate a permanently absent summary.
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

type summarizeRequest struct {
	Text      string `json:"text"`
	MaxLength int    `json:"max_length"`
	MinLength int    `json:"min_length"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// Summarize returns a machine-generated summary of text, or nil when the
// input is too short, the service is unconfigured, or the call fails.
func (c *Client) Summarize(ctx context.Context, text string) *string {
	if !c.Enabled() || len(text) < MinInputLength {
		return nil
	}

	summary, err := c.post(ctx, summarizeRequest{
		Text:      text,
		MaxLength: defaultMaxLength,
		MinLength: defaultMinLength,
	})
	if err != nil {
		return nil
	}
	if summary == "" {
		return nil
	}

	return &summary
}

func (c *Client) post(ctx context.Context, payload summarizeRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return decoded.Summary, nil
}
