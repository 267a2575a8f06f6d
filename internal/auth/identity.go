// internal/auth/identity.go
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
)

// DefaultEndpoint is the Identity Platform REST surface.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

const defaultExpiresIn = 3600 // seconds, when the provider omits expiresIn

// IdentityClient talks to the Identity Platform accounts API. Every call is
// gated on the provider being configured; without the minimum credentials no
// network I/O is attempted.
type IdentityClient struct {
	cfg        config.IdentityConfig
	endpoint   string
	httpClient *http.Client
}

// TokenResponse is the provider's response to signUp, signInWithPassword,
// and update (with returnSecureToken). ExpiresIn arrives as a decimal string.
type TokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
}

// ExpirySeconds parses ExpiresIn, falling back to one hour.
func (t *TokenResponse) ExpirySeconds() int64 {
	n, err := strconv.ParseInt(t.ExpiresIn, 10, 64)
	if err != nil || n <= 0 {
		return defaultExpiresIn
	}
	return n
}

func NewIdentityClient(cfg config.IdentityConfig) *IdentityClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &IdentityClient{
		cfg:        cfg,
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the minimum credentials are present.
func (c *IdentityClient) Configured() bool {
	return c.cfg.Enabled()
}

// SignUp creates a new email/password account.
func (c *IdentityClient) SignUp(ctx context.Context, email, password string) (*TokenResponse, error) {
	return c.call(ctx, "accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// SignInWithPassword exchanges credentials for tokens.
func (c *IdentityClient) SignInWithPassword(ctx context.Context, email, password string) (*TokenResponse, error) {
	return c.call(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
}

// UpdateProfile sets the display name on the account behind idToken. The
// provider may rotate the token on profile changes, so the caller must adopt
// the token from this response.
func (c *IdentityClient) UpdateProfile(ctx context.Context, idToken, displayName string) (*TokenResponse, error) {
	return c.call(ctx, "accounts:update", map[string]interface{}{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	})
}

// providerError is the error envelope the accounts API returns.
type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *IdentityClient) call(ctx context.Context, action string, payload map[string]interface{}) (*TokenResponse, error) {
	if !c.Configured() {
		return nil, errors.NewAuthNotConfiguredError()
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.endpoint, action, c.cfg.APIKey)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewRequestFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewInvalidResponseError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewInvalidResponseError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		return nil, errors.NewAuthFailedError(pe.Error.Message)
	}

	var tok TokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, errors.NewInvalidResponseError(err)
	}

	return &tok, nil
}
