// Package model provides the client for the external language-model service.
// The service converts a natural-language message into a reply and a
// candidate action payload; it is treated as an opaque, possibly-unreliable
// collaborator, so the client returns its raw response text and leaves
// payload extraction to the dispatcher.
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mathpeer/mathpeer/internal/domain"
)

// TutorContext is the tutor slice sent to the model service: name and
// subjects only, no pricing or imagery.
type TutorContext struct {
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
}

// Context carries the entity-catalog snapshot the model grounds its action
// payloads on.
type Context struct {
	CurrentPath string         `json:"currentPath"`
	Pages       []string       `json:"pages"`
	StudyGroups []string       `json:"studyGroups"`
	Tutors      []TutorContext `json:"tutors"`
	Quizzes     []string       `json:"quizzes"`
}

// Request is the outbound payload for one conversational turn.
type Request struct {
	Message string        `json:"message"`
	Context Context       `json:"context"`
	History []domain.Turn `json:"history"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("model: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// Client posts chat requests to the model service endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a model service client for the given endpoint URL.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("model: service URL must not be empty")
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Complete sends one conversational turn and returns the service's raw
// response text. The response is expected to embed a JSON envelope, possibly
// wrapped in prose; no parsing happens here.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("model: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("model: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        c.baseURL,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("model: read response body: %w", err)
	}
	return string(buf), nil
}
