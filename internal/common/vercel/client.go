// Package vercel is a minimal client for the deployments REST endpoints.
package vercel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apphttp "venture-builder/internal/common/http"
)

const (
	DefaultBaseURL = "https://api.vercel.com"
	FallbackError  = "Deployment failed"
)

// APIError is a non-2xx response decoded from {"error":{"code","message"}}.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vercel api error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL string
	teamID  string
	http    *apphttp.Client
}

func NewClient(baseURL, teamID string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, teamID, apphttp.NewClient(timeout))
}

func NewClientWithHTTP(baseURL, teamID string, hc *apphttp.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), teamID: teamID, http: hc}
}

type DeploymentFile struct {
	File string `json:"file"`
	Data string `json:"data"`
}

type ProjectSettings struct {
	Framework string `json:"framework"`
}

type CreateDeploymentRequest struct {
	Name            string           `json:"name"`
	Files           []DeploymentFile `json:"files"`
	ProjectSettings *ProjectSettings `json:"projectSettings,omitempty"`
	Target          string           `json:"target,omitempty"`
}

// Deployment is the subset of the deployment object the publisher needs. URL has no scheme.
type Deployment struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	InspectorURL string `json:"inspectorUrl"`
	ReadyState   string `json:"readyState"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *Client) CreateDeployment(ctx context.Context, token string, req CreateDeploymentRequest) (*Deployment, error) {
	var out Deployment
	if err := c.call(ctx, token, http.MethodPost, "/v13/deployments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDeployment(ctx context.Context, token, id string) (*Deployment, error) {
	var out Deployment
	if err := c.call(ctx, token, http.MethodGet, "/v13/deployments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, token, method, path string, body, out interface{}) error {
	endpoint := c.baseURL + path
	if c.teamID != "" {
		endpoint += "?teamId=" + url.QueryEscape(c.teamID)
	}

	resp, err := c.http.DoJSON(ctx, method, endpoint, map[string]string{"Authorization": "Bearer " + token}, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return decodeError(resp.StatusCode, resp.Body)
	}
	return resp.Decode(out)
}

func decodeError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status, Message: FallbackError}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Error.Code
		if payload.Error.Message != "" {
			apiErr.Message = payload.Error.Message
		}
	}
	return apiErr
}
