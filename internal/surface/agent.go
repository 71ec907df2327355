package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vextm/tm-bridge/internal/domain/field"
)

// AgentClient reaches the automation agent that owns the Tournament Manager
// UI over JSON/HTTP. One agent serves every field set on its machine; field
// sets are addressed by window title.
type AgentClient struct {
	// baseURL is the agent endpoint without a trailing slash.
	baseURL string
	// httpClient performs the actual requests.
	httpClient *http.Client
	// callTimeout is the default timeout for individual agent calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*AgentClient)

// WithCallTimeout sets a default timeout for agent calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *AgentClient) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *AgentClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// errEndpointRequired is returned when the agent endpoint is missing.
var errEndpointRequired = errors.New("agent endpoint must be provided")

// defaultCallTimeout bounds agent calls when no timeout option is given.
const defaultCallTimeout = 5 * time.Second

// NewAgentClient creates a client for the agent at the given base URL.
func NewAgentClient(endpoint string, opts ...Option) (*AgentClient, error) {
	if endpoint == "" {
		return nil, errEndpointRequired
	}

	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid agent endpoint: %w", err)
	}

	client := &AgentClient{
		baseURL:     strings.TrimRight(endpoint, "/"),
		httpClient:  &http.Client{},
		callTimeout: defaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases idle connections held by the underlying client.
func (c *AgentClient) Close() error {
	if c == nil || c.httpClient == nil {
		return nil
	}

	c.httpClient.CloseIdleConnections()

	return nil
}

// Fetch retrieves the current snapshot of a field set from the agent.
func (c *AgentClient) Fetch(ctx context.Context, fieldID string) (field.Snapshot, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	endpoint := c.fieldsetURL(fieldID, "overview")

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return field.Snapshot{}, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return field.Snapshot{}, fmt.Errorf("fetch overview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return field.Snapshot{}, fmt.Errorf("fetch overview: agent returned %s", resp.Status)
	}

	var snap field.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return field.Snapshot{}, fmt.Errorf("decode overview: %w", err)
	}

	if err := snap.Validate(); err != nil {
		return field.Snapshot{}, fmt.Errorf("invalid overview: %w", err)
	}

	return snap, nil
}

// Invoke issues a command to the agent. HTTP 4xx answers are mapped to
// *field.CommandRejectedError carrying the agent-reported reason.
func (c *AgentClient) Invoke(
	ctx context.Context,
	fieldID string,
	kind field.CommandKind,
	params field.CommandParams,
) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode command params: %w", err)
	}

	endpoint := c.fieldsetURL(fieldID, "commands", string(kind))

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build command request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("issue command: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &field.CommandRejectedError{Reason: rejectionReason(resp)}
	default:
		return fmt.Errorf("issue command: agent returned %s", resp.Status)
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *AgentClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

// fieldsetURL builds an agent URL for the given field set and path parts.
func (c *AgentClient) fieldsetURL(fieldID string, parts ...string) string {
	segments := append([]string{"fieldsets", fieldID}, parts...)
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	return c.baseURL + "/" + strings.Join(segments, "/")
}

// rejectionReason extracts the agent's error payload, falling back to the
// HTTP status line.
func rejectionReason(resp *http.Response) string {
	var payload struct {
		Error string `json:"error"`
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}

	return resp.Status
}
