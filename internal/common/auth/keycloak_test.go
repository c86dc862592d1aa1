package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venture-builder/internal/common/errors"
	apphttp "venture-builder/internal/common/http"
)

func newIntrospectionServer(t *testing.T, status int, body string) *KeycloakClient {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realms/ventures/protocol/openid-connect/token/introspect", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "session-token", r.PostForm.Get("token"))
		assert.Equal(t, "venture-builder", r.PostForm.Get("client_id"))
		assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewKeycloakClient(server.URL+"/", "ventures", "venture-builder", "s3cret")
}

func TestAuthorize_Active(t *testing.T) {
	k := newIntrospectionServer(t, http.StatusOK, `{"active":true,"sub":"user-1","username":"ada"}`)

	info, err := k.Authorize(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", info.Sub)
}

func TestAuthorize_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{"inactive token", http.StatusOK, `{"active":false}`, errors.ErrCodeUnauthorized},
		{"client rejected", http.StatusUnauthorized, `{"error":"invalid_client"}`, errors.ErrCodeUnauthorized},
		{"keycloak down", http.StatusServiceUnavailable, ``, errors.ErrCodeServiceUnavailable},
		{"garbage body", http.StatusOK, `not json`, errors.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := newIntrospectionServer(t, tt.status, tt.body)
			_, err := k.Authorize(context.Background(), "session-token")
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAuthorize_EmptyToken(t *testing.T) {
	k := NewKeycloakClient("http://127.0.0.1:1", "ventures", "c", "s")
	_, err := k.Authorize(context.Background(), " ")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnauthorized))
}

func TestIntrospectToken_SharedHTTPClientHonorsContext(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"active":true,"sub":"user-2"}`))
	}))
	t.Cleanup(server.Close)

	k := NewKeycloakClientWithHTTP(server.URL, "ventures", "c", "s", apphttp.NewClientWith(server.Client()))

	info, err := k.IntrospectToken(context.Background(), "session-token")
	require.NoError(t, err)
	assert.Equal(t, "user-2", info.Sub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = k.IntrospectToken(ctx, "session-token")
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable), "got %v", err)
	assert.Equal(t, 1, calls)
}
