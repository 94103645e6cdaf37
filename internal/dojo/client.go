package dojo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/matryer/resync"
	"go.uber.org/zap"
)

const loginPath = "/authentication/personal_access_token_login"

// Credentials identify the account used to obtain an access token.
type Credentials struct {
	Username string
	Token    string
}

// Response is the JSON object returned by a create or update call.
type Response map[string]any

type loginRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginResponse is returned by the personal access token login endpoint.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Client talks to the dojo REST API. A Client logs in lazily on its first call
// and reuses the access token until the API answers 401.
type Client struct {
	HTTPClient  *resty.Client
	credentials Credentials

	loginOnce   resync.Once
	accessToken string
	loginErr    error
}

// Option customizes the underlying resty client.
type Option func(*resty.Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *resty.Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

// WithRequestID tags every request with an X-Request-ID header.
func WithRequestID(id string) Option {
	return func(c *resty.Client) {
		if id != "" {
			c.SetHeader("X-Request-ID", id)
		}
	}
}

// WithLogger logs method, URL and status of every call at debug level.
// Bodies are never logged since the login request carries the token.
func WithLogger(logger *zap.Logger) Option {
	return func(c *resty.Client) {
		if logger == nil {
			return
		}
		c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			logger.Debug("dojo api call",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("duration", resp.Time()),
			)
			return nil
		})
	}
}

func New(baseURL string, credentials Credentials, options ...Option) *Client {
	clientName, _ := os.Executable()

	httpClient := resty.NewWithClient(&http.Client{Transport: http.DefaultTransport}).
		SetHeader("User-Agent", filepath.Base(clientName)).
		SetHeader("Accept", "application/json").
		SetAuthScheme("Bearer").
		SetBaseURL(baseURL)
	for _, option := range options {
		option(httpClient)
	}

	return &Client{
		HTTPClient:  httpClient,
		credentials: credentials,
	}
}

// Login exchanges the personal access token for an API access token.
func (c *Client) Login(ctx context.Context) (string, error) {
	resp, err := c.HTTPClient.R().
		SetResult(LoginResponse{}).
		SetError(&ErrorResponse{}).
		SetContext(ctx).
		SetBody(&loginRequest{
			Username: c.credentials.Username,
			Token:    c.credentials.Token,
		}).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("login: %w", handleError(resp))
	}

	result := resp.Result().(*LoginResponse)
	if result.AccessToken == "" {
		return "", ErrorMissingAccessToken
	}
	return result.AccessToken, nil
}

// token returns the cached access token, logging in on first use. A failed
// login is not cached so the next entity gets a fresh attempt.
func (c *Client) token(ctx context.Context) (string, error) {
	c.loginOnce.Do(func() {
		c.accessToken, c.loginErr = c.Login(ctx)
	})
	if c.loginErr != nil {
		err := c.loginErr
		c.loginOnce.Reset()
		return "", err
	}
	return c.accessToken, nil
}

// InvalidateToken drops the cached access token.
func (c *Client) InvalidateToken() {
	c.loginOnce.Reset()
}

func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	return c.HTTPClient.R().
		SetAuthToken(token).
		SetError(&ErrorResponse{}).
		SetContext(ctx), nil
}

func resourcePath(kind Kind, id string) string {
	return kind.Path() + "/" + url.PathEscape(id)
}

// Exists probes GET {kind}/{id}. Only 200 and 404 are conclusive; any other
// status is an error.
func (c *Client) Exists(ctx context.Context, kind Kind, id string) (bool, error) {
	req, err := c.request(ctx)
	if err != nil {
		return false, err
	}
	resp, err := req.Get(resourcePath(kind, id))
	if err != nil {
		return false, fmt.Errorf("get %s %q: %w", kind, id, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	case http.StatusUnauthorized:
		c.InvalidateToken()
	}
	return false, fmt.Errorf("impossible to know whether the %s %q already exists: %w", kind, id, handleError(resp))
}

// Create issues POST {kind} with body.
func (c *Client) Create(ctx context.Context, kind Kind, id string, body any) (Response, error) {
	return c.mutate(ctx, http.MethodPost, kind.Path(), kind, id, body)
}

// Update issues PATCH {kind}/{id} with body.
func (c *Client) Update(ctx context.Context, kind Kind, id string, body any) (Response, error) {
	return c.mutate(ctx, http.MethodPatch, resourcePath(kind, id), kind, id, body)
}

func (c *Client) mutate(ctx context.Context, method, path string, kind Kind, id string, body any) (Response, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s %q: %w", method, kind, id, err)
	}
	if !resp.IsSuccess() {
		if resp.StatusCode() == http.StatusUnauthorized {
			c.InvalidateToken()
		}
		return nil, fmt.Errorf("%s %s %q: %w", method, kind, id, handleError(resp))
	}

	// The body only feeds the debug log; a success that is not a JSON object
	// is still a success.
	result := Response{}
	_ = json.Unmarshal(resp.Body(), &result)
	return result, nil
}

func handleError(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return ErrorNotFound
	case http.StatusUnauthorized:
		return ErrorUnauthorized
	case http.StatusInternalServerError:
		return &APIError{StatusCode: resp.StatusCode(), Message: "dojo API returned 500 Internal Server Error"}
	}
	if errResp, ok := resp.Error().(*ErrorResponse); ok && errResp != nil {
		if message := errResp.Text(); message != "" {
			return &APIError{StatusCode: resp.StatusCode(), Message: message}
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
}
