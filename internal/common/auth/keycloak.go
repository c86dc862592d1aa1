package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"venture-builder/internal/common/errors"
	apphttp "venture-builder/internal/common/http"
)

// KeycloakClient introspects session tokens before a publish is allowed.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *apphttp.Client
}

// TokenInfo holds the information returned by the token introspection endpoint.
type TokenInfo struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Sub       string `json:"sub,omitempty"`
	Iss       string `json:"iss,omitempty"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return NewKeycloakClientWithHTTP(baseURL, realm, clientID, clientSecret, apphttp.NewClient(30*time.Second))
}

func NewKeycloakClientWithHTTP(baseURL, realm, clientID, clientSecret string, hc *apphttp.Client) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   hc,
	}
}

// IntrospectToken asks Keycloak whether token is active. An inactive token is not an error
// here; callers decide via TokenInfo.Active.
func (k *KeycloakClient) IntrospectToken(ctx context.Context, token string) (*TokenInfo, error) {
	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequest(http.MethodPost, introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("create introspection request: %v", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return nil, errors.NewServiceUnavailableError("keycloak", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("introspection returned status %d: %s", resp.StatusCode, string(body))
		if isTransientHTTPError(resp.StatusCode) {
			return nil, errors.NewServiceUnavailableError("keycloak", err)
		}
		return nil, errors.NewUnauthorizedError(err.Error())
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("decode introspection response: %v", err))
	}
	return &info, nil
}

// Authorize fails with UNAUTHORIZED unless token is present and active.
func (k *KeycloakClient) Authorize(ctx context.Context, token string) (*TokenInfo, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.NewUnauthorizedError("session token is required")
	}
	info, err := k.IntrospectToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.Active {
		return nil, errors.NewUnauthorizedError("token is expired, revoked or invalid")
	}
	return info, nil
}

func isTransientHTTPError(statusCode int) bool {
	switch statusCode {
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
