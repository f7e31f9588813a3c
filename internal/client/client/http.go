package client

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

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

const (
	routeMe       = "/auth/me"
	routeLogin    = "/auth/login"
	routeLogout   = "/auth/logout"
	routeRegister = "/auth/register"
	routeHello    = "/api/hello"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestDecorator adds credentials to outbound requests.
type RequestDecorator interface {
	Decorate(req *http.Request)
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Decorator  RequestDecorator
}

// HTTPClient talks JSON to the backend API.
type HTTPClient struct {
	baseURL   string
	client    HTTPDoer
	decorator RequestDecorator
}

type userDTO struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Username  string `json:"username"`
}

type authResponseDTO struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        userDTO `json:"user"`
}

type helloRequestDTO struct {
	Name string `json:"name"`
}

type helloResponseDTO struct {
	Message string `json:"message"`
}

type errorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (u userDTO) toModel() *models.User {
	return &models.User{ID: u.ID, CreatedAt: time.UnixMilli(u.CreatedAt), Username: u.Username}
}

func (a authResponseDTO) toModel() *models.AuthResult {
	return &models.AuthResult{User: *a.User.toModel(), Token: a.AccessToken, TokenType: a.TokenType}
}

// NewHTTPClient validates the base URL and builds a client. Without an
// explicit HTTPClient a net/http client with cfg.Timeout (default 10s) is used.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", cfg.BaseURL)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	c := &HTTPClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    cfg.HTTPClient,
		decorator: cfg.Decorator,
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: cfg.Timeout}
	}
	return c, nil
}

func (c *HTTPClient) FetchCurrentUser(ctx context.Context) (*models.User, error) {
	var resp userDTO
	if err := c.do(ctx, http.MethodGet, routeMe, nil, &resp); err != nil {
		return nil, c.mapError(err, map[int]error{
			http.StatusUnauthorized: ErrUnauthenticated,
			http.StatusForbidden:    ErrUnauthenticated,
		})
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: user without id", ErrUnexpectedResponse)
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	var resp authResponseDTO
	if err := c.do(ctx, http.MethodPost, routeLogin, in, &resp); err != nil {
		return nil, c.mapError(err, map[int]error{
			http.StatusBadRequest:   ErrInvalidCredentials,
			http.StatusUnauthorized: ErrInvalidCredentials,
			http.StatusForbidden:    ErrInvalidCredentials,
		})
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrUnexpectedResponse)
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	var resp authResponseDTO
	if err := c.do(ctx, http.MethodPost, routeRegister, in, &resp); err != nil {
		return nil, c.mapError(err, map[int]error{
			http.StatusConflict: ErrAlreadyExists,
		})
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrUnexpectedResponse)
	}
	return resp.toModel(), nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, routeLogout, nil, nil); err != nil {
		return c.mapError(err, map[int]error{
			http.StatusUnauthorized: ErrUnauthenticated,
		})
	}
	return nil
}

func (c *HTTPClient) Hello(ctx context.Context, name string) (string, error) {
	var resp helloResponseDTO
	if err := c.do(ctx, http.MethodPost, routeHello, helloRequestDTO{Name: name}, &resp); err != nil {
		return "", c.mapError(err, map[int]error{
			http.StatusUnauthorized: ErrUnauthenticated,
		})
	}
	return resp.Message, nil
}

// Close releases idle connections of the default transport client.
func (c *HTTPClient) Close() error {
	if hc, ok := c.client.(*http.Client); ok {
		hc.CloseIdleConnections()
	}
	return nil
}

// do sends one JSON request. Non-2xx answers come back as *StatusError and
// transport failures wrap ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, method, route string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.decorator != nil {
		c.decorator.Decorate(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, route, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorDTO
		_ = json.Unmarshal(data, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}

// mapError turns a StatusError into the operation's sentinel error. Codes
// not listed fall back to ErrUnavailable for 5xx and ErrInvalidRequest for 4xx.
func (c *HTTPClient) mapError(err error, codes map[int]error) error {
	var se *StatusError
	if !errors.As(err, &se) {
		return err
	}
	if mapped, ok := codes[se.Code]; ok {
		return fmt.Errorf("%w: %v", mapped, se)
	}
	if se.Code >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %v", ErrUnavailable, se)
	}
	return fmt.Errorf("%w: %v", ErrInvalidRequest, se)
}
