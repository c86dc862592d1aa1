package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRepository(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "token ghp_test", r.Header.Get("Authorization"))

		var req CreateRepositoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, CreateRepositoryRequest{Name: "acme", Private: true, AutoInit: true}, req)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"name":"acme","full_name":"octo/acme","html_url":"https://github.com/octo/acme","owner":{"login":"octo"}}`))
	}))
	defer server.Close()

	repo, err := NewClient(server.URL, 5*time.Second).CreateRepository(context.Background(), "ghp_test",
		CreateRepositoryRequest{Name: "acme", Private: true, AutoInit: true})
	require.NoError(t, err)
	assert.Equal(t, "octo", repo.Owner.Login)
	assert.Equal(t, "https://github.com/octo/acme", repo.HTMLURL)
}

func TestCreateRepository_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"validation detail", 422, `{"message":"Repository creation failed.","errors":[{"message":"name already exists on this account"}]}`, "name already exists on this account"},
		{"top-level message", 401, `{"message":"Bad credentials"}`, "Bad credentials"},
		{"no body", 500, ``, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, time.Second).CreateRepository(context.Background(), "t", CreateRepositoryRequest{Name: "acme"})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestGetContent_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/acme/contents/docs/read me.md", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).GetContent(context.Background(), "t", "octo", "acme", "docs/read me.md", "main")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/repos/octo/acme/contents/README.md", r.URL.Path)

		var req PutContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "abc123", req.SHA)
		assert.Equal(t, "main", req.Branch)

		w.Write([]byte(`{"content":{"path":"README.md","sha":"def456"}}`))
	}))
	defer server.Close()

	out, err := NewClient(server.URL, time.Second).PutContent(context.Background(), "t", "octo", "acme", "README.md",
		PutContentRequest{Message: "Update README.md", Content: "IyBBY21l", Branch: "main", SHA: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, "def456", out.Content.SHA)
}

func TestPutContent_NotFoundIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).PutContent(context.Background(), "t", "octo", "acme", "a.txt", PutContentRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not Found", apiErr.Message)
}
