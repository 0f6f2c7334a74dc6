// Package api is the client for the recipe backend REST API. Every endpoint
// answers with the same envelope:
//
//	{"ok": true, "data": ...}
//	{"ok": false, "error": {"code": "...", "message": "..."}}
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/cookflow/internal/domain"
	"github.com/hammamikhairi/cookflow/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.CompletionReporter = (*Client)(nil)
	_ domain.RecipeSource       = (*Client)(nil)
)

// ── Wire types ───────────────────────────────────────────────────

type envelope struct {
	OK    *bool           `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *wireError      `json:"error"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wireStep struct {
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	TimerSeconds int    `json:"timer_seconds"`
}

type wireRecipe struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Steps       []wireStep  `json:"steps"`
}

type wireRecipePage struct {
	Items []wireRecipe `json:"items"`
	Total int          `json:"total"`
}

type wireCompletion struct {
	Message             string `json:"message"`
	ProgressUpdated     int    `json:"progress_updated"`
	ChallengesCompleted int    `json:"challenges_completed"`
}

// ── Client ───────────────────────────────────────────────────────

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPTimeout sets the HTTP client timeout.
func WithHTTPTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCSRFToken sets the token sent as X-CSRFToken on unsafe methods.
func WithCSRFToken(token string) ClientOption {
	return func(c *Client) { c.csrfToken = token }
}

// WithSessionCookie authenticates requests with the backend session cookie.
func WithSessionCookie(value string) ClientOption {
	return func(c *Client) { c.sessionCookie = value }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// Client talks to the recipe backend.
type Client struct {
	baseURL       string
	csrfToken     string
	sessionCookie string
	pageSize      int
	http          *http.Client
	log           *logger.Logger
}

// NewClient creates a backend client rooted at baseURL (e.g. "http://localhost:5000").
func NewClient(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		pageSize: 50,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NotifyCompletion records that the user cooked recipeID to the end.
func (c *Client) NotifyCompletion(ctx context.Context, recipeID string) (*domain.CompletionResult, error) {
	var out wireCompletion
	path := "/api/cooking/complete/" + url.PathEscape(recipeID)
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		return nil, err.with(domain.ErrCompletionReportFailed)
	}

	return &domain.CompletionResult{
		Message:             out.Message,
		ProgressUpdated:     out.ProgressUpdated,
		ChallengesCompleted: out.ChallengesCompleted,
	}, nil
}

// Get fetches a recipe with its steps.
func (c *Client) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	var out wireRecipe
	if err := c.do(ctx, http.MethodGet, "/api/recipes/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// List returns the first page of recipes, newest first.
func (c *Client) List(ctx context.Context) ([]domain.RecipeSummary, error) {
	var out wireRecipePage
	q := url.Values{}
	q.Set("page", "1")
	q.Set("per_page", fmt.Sprint(c.pageSize))
	if err := c.do(ctx, http.MethodGet, "/api/recipes?"+q.Encode(), &out); err != nil {
		return nil, err
	}

	summaries := make([]domain.RecipeSummary, 0, len(out.Items))
	for _, r := range out.Items {
		summaries = append(summaries, domain.RecipeSummary{
			ID:          r.ID.String(),
			Title:       r.Title,
			Description: r.Description,
		})
	}
	return summaries, nil
}

// do sends one request and unwraps the envelope into out.
func (c *Client) do(ctx context.Context, method, path string, out any) *Error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return (&Error{Code: CodeAPI, Message: "could not build request"}).with(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.csrfToken != "" && !isSafeMethod(method) {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}
	if c.sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: c.sessionCookie})
	}

	c.log.Debug("api: %s %s", method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return (&Error{Code: CodeNetwork, Message: "backend unreachable"}).with(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return (&Error{Status: resp.StatusCode, Code: CodeNetwork, Message: "could not read response"}).with(err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := &Error{Status: resp.StatusCode, Code: CodeHTTP, Message: "Request failed"}
		if decodeErr == nil && env.Error != nil {
			e.fill(env.Error)
		}
		if resp.StatusCode == http.StatusNotFound {
			e.with(domain.ErrNotFound)
		}
		c.log.Debug("api: %s %s -> %s", method, path, e)
		return e
	}

	if decodeErr != nil {
		return (&Error{Status: resp.StatusCode, Code: CodeBadResponse, Message: "unexpected response from backend"}).with(decodeErr)
	}

	if env.OK != nil && !*env.OK {
		e := &Error{Status: resp.StatusCode, Code: CodeAPI, Message: "Error"}
		if env.Error != nil {
			e.fill(env.Error)
		}
		c.log.Debug("api: %s %s -> %s", method, path, e)
		return e
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return (&Error{Status: resp.StatusCode, Code: CodeBadResponse, Message: "unexpected response from backend"}).with(err)
	}
	return nil
}

// fill copies backend-provided details, keeping defaults for blanks.
func (e *Error) fill(w *wireError) {
	if w.Code != "" {
		e.Code = w.Code
	}
	if w.Message != "" {
		e.Message = w.Message
	}
}

func (r wireRecipe) toDomain() *domain.Recipe {
	steps := make([]domain.Step, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, domain.Step{
			Description:  s.Description,
			TimerSeconds: s.TimerSeconds,
			ImageURL:     s.ImageURL,
		})
	}
	return &domain.Recipe{
		ID:          r.ID.String(),
		Title:       r.Title,
		Description: r.Description,
		Steps:       steps,
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
