// Package ai is a client for the external categorization service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// BatchItem is one memo to categorize. Index ties the answer back to the
// caller's slice; memos are truncated server-request-side to keep the
// payload bounded.
type BatchItem struct {
	Index int    `json:"index"`
	Memo  string `json:"memo"`
}

type batchRequest struct {
	Items      []BatchItem `json:"items"`
	Categories []string    `json:"categories"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Enabled reports whether a service URL was configured. With no URL the
// resolver skips the AI tier entirely.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// CategorizeBatch sends one batch of memos plus the valid category list
// and returns the service's index→category-name mapping. Indexes come
// back as strings because the payload is a JSON object.
func (c *Client) CategorizeBatch(ctx context.Context, items []BatchItem, categories []string) (map[string]string, error) {
	body, err := json.Marshal(batchRequest{Items: items, Categories: categories})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/categorize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("categorize failed: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]string
	if err := json.Unmarshal(StripCodeFences(respBody), &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag. Model-backed services often wrap JSON this way.
func StripCodeFences(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	if !strings.HasPrefix(s, "```") {
		return b
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
