// Package github is a minimal client for the repository and contents REST endpoints.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apphttp "venture-builder/internal/common/http"
)

const DefaultBaseURL = "https://api.github.com"

var ErrNotFound = errors.New("github: not found")

// APIError is a non-2xx response. Message is the body's "message" field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error (status %d): %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *apphttp.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, apphttp.NewClient(timeout))
}

func NewClientWithHTTP(baseURL string, hc *apphttp.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc}
}

type CreateRepositoryRequest struct {
	Name     string `json:"name"`
	Private  bool   `json:"private"`
	AutoInit bool   `json:"auto_init"`
}

type Owner struct {
	Login string `json:"login"`
}

type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Owner         Owner  `json:"owner"`
}

type Content struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type PutContentRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
	SHA     string `json:"sha,omitempty"`
}

type PutContentResponse struct {
	Content Content `json:"content"`
}

// CreateRepository creates a repository owned by the authenticated user.
func (c *Client) CreateRepository(ctx context.Context, token string, req CreateRepositoryRequest) (*Repository, error) {
	var repo Repository
	if err := c.call(ctx, token, http.MethodPost, "/user/repos", req, &repo); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *Client) GetRepository(ctx context.Context, token, owner, repo string) (*Repository, error) {
	var out Repository
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	if err := c.call(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContent reads file metadata. A missing file yields ErrNotFound.
func (c *Client) GetContent(ctx context.Context, token, owner, repo, filePath, ref string) (*Content, error) {
	path := contentsPath(owner, repo, filePath)
	if ref != "" {
		path += "?ref=" + url.QueryEscape(ref)
	}
	var out Content
	if err := c.call(ctx, token, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PutContent creates or updates a file. req.Content must already be base64 encoded.
func (c *Client) PutContent(ctx context.Context, token, owner, repo, filePath string, req PutContentRequest) (*PutContentResponse, error) {
	var out PutContentResponse
	if err := c.call(ctx, token, http.MethodPut, contentsPath(owner, repo, filePath), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func contentsPath(owner, repo, filePath string) string {
	segments := strings.Split(strings.TrimPrefix(filePath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("/repos/%s/%s/contents/%s", url.PathEscape(owner), url.PathEscape(repo), strings.Join(segments, "/"))
}

func (c *Client) call(ctx context.Context, token, method, path string, body, out interface{}) error {
	headers := map[string]string{
		"Authorization":        "token " + token,
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}

	resp, err := c.http.DoJSON(ctx, method, c.baseURL+path, headers, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound && method == http.MethodGet {
		return ErrNotFound
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body, resp.StatusCode)}
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	return resp.Decode(out)
}

func errorMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		if len(payload.Errors) > 0 && payload.Errors[0].Message != "" {
			return payload.Errors[0].Message
		}
		return payload.Message
	}
	return http.StatusText(status)
}
