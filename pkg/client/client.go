package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/auth"
	"github.com/aretw0/unitgrid/pkg/domain"
)

// DefaultTimeout bounds each REST call. Event streams are not bounded.
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unitgrid: %d %s", e.Status, e.Message)
}

// Unwrap maps the response back to a domain error where the message names one.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound, http.StatusBadRequest:
		for _, sentinel := range []error{
			domain.ErrRestorePointNotFound,
			domain.ErrLastRow,
			domain.ErrIndexOutOfRange,
			domain.ErrInvalidStatus,
			domain.ErrInvalidProject,
		} {
			if strings.Contains(e.Message, sentinel.Error()) {
				return sentinel
			}
		}
		if e.Status == http.StatusNotFound {
			return domain.ErrProjectNotFound
		}
	case http.StatusUnauthorized:
		return auth.ErrInvalidToken
	}
	if e.Status >= http.StatusInternalServerError {
		return domain.ErrPersistence
	}
	return nil
}

// Client is a REST client for one server and bearer token.
type Client struct {
	baseURL string
	token   string

	http   *http.Client
	stream *http.Client
	retry  RetryPolicy
	logger *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for REST calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRetry sets the reconnect policy of Subscribe.
func WithRetry(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for baseURL.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
		stream:  &http.Client{},
		retry:   RetryPolicy{Delay: DefaultRetryDelay},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create starts a project for companyID.
func (c *Client) Create(ctx context.Context, name, companyID string) (*domain.Project, error) {
	body := map[string]string{"name": name, "companyId": companyID}
	var p domain.Project
	if err := c.do(ctx, http.MethodPost, "/api/project", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get loads the project with id.
func (c *Client) Get(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	if err := c.do(ctx, http.MethodGet, "/api/project/project/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCompany returns the company's non-archived projects.
func (c *Client) ListByCompany(ctx context.Context, companyID string) ([]*domain.Project, error) {
	var out []*domain.Project
	if err := c.do(ctx, http.MethodGet, "/api/project/"+url.PathEscape(companyID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInputData saves the provided grid and/or schema. The server broadcasts the result.
func (c *Client) UpdateInputData(ctx context.Context, id string, in unitgrid.UpdateInput) (*domain.Project, error) {
	var p domain.Project
	if err := c.do(ctx, http.MethodPut, "/api/project/"+url.PathEscape(id)+"/inputData", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateRestorePoint snapshots the stored grid.
func (c *Client) CreateRestorePoint(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	if err := c.do(ctx, http.MethodPost, "/api/project/"+url.PathEscape(id)+"/restorePoints", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Restore replaces the stored grid with restore point index.
func (c *Client) Restore(ctx context.Context, id string, index int) (*domain.Project, error) {
	path := "/api/project/" + url.PathEscape(id) + "/restorePoints/" + strconv.Itoa(index) + "/restore"
	var p domain.Project
	if err := c.do(ctx, http.MethodPost, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetStatus changes the project's lifecycle status.
func (c *Client) SetStatus(ctx context.Context, id string, status domain.ProjectStatus) (*domain.Project, error) {
	body := map[string]domain.ProjectStatus{"status": status}
	var p domain.Project
	if err := c.do(ctx, http.MethodPut, "/api/project/"+url.PathEscape(id)+"/status", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// IsNotFound reports whether err is a missing project or restore point.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrProjectNotFound) || errors.Is(err, domain.ErrRestorePointNotFound)
}
