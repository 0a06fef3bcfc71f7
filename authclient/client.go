package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-teetime/internal/errors"
)

const (
	SignInPath = "/auth/signin"
	SignUpPath = "/auth/signup"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// RemoteError is a non-2xx answer from the auth backend
type RemoteError struct {
	Status  int
	Message string // server supplied message, may be empty
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth backend returned %d", e.Status)
	}
	return fmt.Sprintf("auth backend returned %d: %s", e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return errors.ErrRemote
}

// Authenticator is the part of the client the sign-in flow depends on
type Authenticator interface {
	SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error)
	SignUp(ctx context.Context, req SignUpRequest) (*TokenResponse, error)
}

// Client calls the external sign-in and sign-up endpoints
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Authenticator = (*Client)(nil)

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of each request
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a client for the backend at baseURL
func New(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("[authclient.New] base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// SignIn exchanges credentials for tokens
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*TokenResponse, error) {
	return c.post(ctx, SignInPath, req)
}

// SignUp creates an account and returns its tokens
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*TokenResponse, error) {
	return c.post(ctx, SignUpPath, req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*TokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "[authclient] encoding %s request", path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "[authclient] building %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("auth backend unreachable")
		return nil, fmt.Errorf("[authclient] %s: %w: %w", path, errors.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("[authclient] reading %s response: %w: %w", path, errors.ErrTransport, err)
	}

	log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("auth backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, &RemoteError{Status: resp.StatusCode, Message: eb.text()}
	}

	var tokens TokenResponse
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("[authclient] decoding %s response: %w: %w", path, errors.ErrRemote, err)
	}
	if tokens.IDToken == "" {
		return nil, fmt.Errorf("[authclient] %s response has no idToken: %w", path, errors.ErrRemote)
	}
	if tokens.ExpiresIn <= 0 {
		return nil, fmt.Errorf("[authclient] %s response has invalid expiresIn %d: %w", path, tokens.ExpiresIn, errors.ErrRemote)
	}
	return &tokens, nil
}
