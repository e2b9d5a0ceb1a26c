// Package ha is a minimal Home Assistant REST client plus the background
// odometer poller built on top of it. Only the two endpoints the journal
// needs are implemented: reading an entity state and invoking a service.
package ha

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUnauthorized   = fmt.Errorf("home assistant: unauthorized")
	ErrEntityNotFound = fmt.Errorf("home assistant: entity not found")
)

// State is one entity state as returned by /api/states/{entity_id}.
type State struct {
	EntityID    string          `json:"entity_id"`
	State       string          `json:"state"`
	Attributes  json.RawMessage `json:"attributes"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Client talks to one Home Assistant instance with a long-lived access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 15s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithInsecureTLS disables certificate verification. Home Assistant boxes on
// home networks commonly run with self-signed certificates.
func WithInsecureTLS() Option {
	return func(c *Client) {
		c.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
}

// NewClient creates a client for the given base URL and access token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetState fetches the current state of one entity.
func (c *Client) GetState(ctx context.Context, entityID string) (State, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/states/"+entityID, nil)
	if err != nil {
		return State{}, fmt.Errorf("ha.Client.GetState: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return State{}, fmt.Errorf("ha.Client.GetState: %w", ErrUnauthorized)
	case http.StatusNotFound:
		return State{}, fmt.Errorf("ha.Client.GetState: %s: %w", entityID, ErrEntityNotFound)
	default:
		body, _ := io.ReadAll(resp.Body)
		return State{}, fmt.Errorf("ha.Client.GetState: status=%d body=%s", resp.StatusCode, string(body))
	}

	var s State
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return State{}, fmt.Errorf("ha.Client.GetState: decode: %w", err)
	}
	return s, nil
}

// CallService invokes /api/services/{domain}/{service} with the given JSON
// payload. A nil payload sends an empty object.
func (c *Client) CallService(ctx context.Context, domain, service string, data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage(`{}`)
	}

	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	resp, err := c.doRequest(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ha.Client.CallService: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("ha.Client.CallService: %w", ErrUnauthorized)
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ha.Client.CallService: %s.%s: status=%d body=%s", domain, service, resp.StatusCode, string(body))
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
