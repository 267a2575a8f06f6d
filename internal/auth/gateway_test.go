package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/config"
	stderrors "github.com/Shravani-Dhumal/Verifixia/internal/common/errors"
	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
	"github.com/Shravani-Dhumal/Verifixia/internal/session"
)

// ==========================
// Test Helper Functions
// ==========================

// identityStub fakes the Identity Platform accounts API and records the
// actions it served, in order.
type identityStub struct {
	t           *testing.T
	actions     []string
	failWith    string // provider error code for every call, "" for success
	rotateToken bool   // accounts:update answers with a fresh idToken
}

func (s *identityStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.t, http.MethodPost, r.Method)
		require.NotEmpty(s.t, r.URL.Query().Get("key"), "API key must ride the query string")

		action := strings.TrimPrefix(r.URL.Path, "/")
		s.actions = append(s.actions, action)

		if s.failWith != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": s.failWith},
			})
			return
		}

		var body map[string]interface{}
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))

		resp := map[string]interface{}{
			"idToken":      "token-" + action,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
			"localId":      "uid-1",
			"email":        "user@example.com",
		}
		if action == "accounts:update" {
			resp["displayName"] = body["displayName"]
			if s.rotateToken {
				resp["idToken"] = "token-rotated"
			}
		}
		json.NewEncoder(w).Encode(resp)
	}
}

type profileSyncSpy struct {
	calls int32
	err   error
	last  atomic.Value
}

func (p *profileSyncSpy) SyncProfile(_ context.Context, update models.ProfileUpdate) error {
	atomic.AddInt32(&p.calls, 1)
	p.last.Store(update)
	return p.err
}

func newTestGateway(t *testing.T, stub *identityStub) (*Gateway, session.Store, *profileSyncSpy) {
	t.Helper()

	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	identity := NewIdentityClient(config.IdentityConfig{
		APIKey:    "test-api-key",
		ProjectID: "test-project",
		Endpoint:  srv.URL,
	})

	store, err := session.NewFileStore(config.FileConfig{
		Path: filepath.Join(t.TempDir(), session.DefaultFileName),
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	spy := &profileSyncSpy{}
	return NewGateway(identity, store, spy, logger.NewTestLogger(t)), store, spy
}

// ==========================
// Login
// ==========================

func TestGateway_LoginWithEmail(t *testing.T) {
	stub := &identityStub{t: t}
	gw, store, spy := newTestGateway(t, stub)

	before := time.Now()
	user, err := gw.LoginWithEmail(context.Background(), Credentials{Email: "user@example.com", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, []string{"accounts:signInWithPassword"}, stub.actions)
	assert.Equal(t, "uid-1", user.UID)
	assert.Equal(t, "user@example.com", user.Email)

	sess := store.Read()
	require.NotNil(t, sess)
	assert.Equal(t, "token-accounts:signInWithPassword", sess.IDToken)
	assert.Equal(t, "refresh-1", sess.RefreshToken)

	// expiresAt ~ now + expiresIn*1000
	wantExpiry := before.UnixMilli() + 3600*1000
	assert.InDelta(t, wantExpiry, sess.ExpiresAt, float64(5*time.Second.Milliseconds()))

	assert.Equal(t, user, gw.CurrentUser())
	assert.Equal(t, sess.IDToken, gw.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&spy.calls), "profile sync runs after login")
}

func TestGateway_LoginFailurePropagates(t *testing.T) {
	stub := &identityStub{t: t, failWith: "INVALID_LOGIN_CREDENTIALS"}
	gw, store, _ := newTestGateway(t, stub)

	_, err := gw.LoginWithEmail(context.Background(), Credentials{Email: "user@example.com", Password: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID LOGIN CREDENTIALS", "provider code separators become spaces")
	assert.Nil(t, store.Read(), "no session persisted on failure")
}

// ==========================
// Register
// ==========================

func TestGateway_RegisterWithDisplayNameAdoptsRotatedToken(t *testing.T) {
	stub := &identityStub{t: t, rotateToken: true}
	gw, store, spy := newTestGateway(t, stub)

	user, err := gw.RegisterWithEmail(context.Background(), Credentials{
		Email:       "user@example.com",
		Password:    "secret",
		DisplayName: "Shravani",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"accounts:signUp", "accounts:update"}, stub.actions)
	assert.Equal(t, "Shravani", user.DisplayName)

	sess := store.Read()
	require.NotNil(t, sess)
	assert.Equal(t, "token-rotated", sess.IDToken, "session must hold the update call's token")

	require.Equal(t, int32(1), atomic.LoadInt32(&spy.calls))
	update := spy.last.Load().(models.ProfileUpdate)
	require.NotNil(t, update.DisplayName)
	assert.Equal(t, "Shravani", *update.DisplayName)
}

func TestGateway_RegisterWithoutDisplayNameSkipsUpdate(t *testing.T) {
	stub := &identityStub{t: t}
	gw, _, _ := newTestGateway(t, stub)

	_, err := gw.RegisterWithEmail(context.Background(), Credentials{Email: "user@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts:signUp"}, stub.actions)
}

func TestGateway_ProfileSyncFailureIsSoft(t *testing.T) {
	stub := &identityStub{t: t}
	gw, store, spy := newTestGateway(t, stub)
	spy.err = assert.AnError

	user, err := gw.LoginWithEmail(context.Background(), Credentials{Email: "user@example.com", Password: "secret"})
	require.NoError(t, err, "sync failure must not fail the login flow")
	assert.NotNil(t, user)
	assert.NotNil(t, store.Read())
}

// ==========================
// Logout / configuration gate
// ==========================

func TestGateway_LogoutClearsSessionAndNotifiesOnce(t *testing.T) {
	stub := &identityStub{t: t}
	gw, store, _ := newTestGateway(t, stub)

	_, err := gw.LoginWithEmail(context.Background(), Credentials{Email: "user@example.com", Password: "secret"})
	require.NoError(t, err)

	var changes int32
	var last atomic.Value
	unsubscribe := store.Subscribe(func(u *models.User) {
		if atomic.AddInt32(&changes, 1) > 1 {
			if u == nil {
				last.Store("absent")
			} else {
				last.Store(u.UID)
			}
		}
	})
	defer unsubscribe()

	require.NoError(t, gw.Logout())

	assert.Nil(t, gw.CurrentUser())
	assert.Empty(t, gw.Token())
	assert.Equal(t, int32(2), atomic.LoadInt32(&changes), "exactly one change notification")
	assert.Equal(t, "absent", last.Load())
}

func TestGateway_NotConfiguredFailsFast(t *testing.T) {
	// Endpoint deliberately unroutable: a configuration failure must surface
	// before any network I/O is attempted.
	identity := NewIdentityClient(config.IdentityConfig{Endpoint: "http://127.0.0.1:1"})

	store, err := session.NewFileStore(config.FileConfig{
		Path: filepath.Join(t.TempDir(), session.DefaultFileName),
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer store.Close()

	gw := NewGateway(identity, store, nil, logger.NewTestLogger(t))

	_, err = gw.LoginWithEmail(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeAuthNotConfigured, stderrors.CodeOf(err))

	_, err = gw.RegisterWithEmail(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeAuthNotConfigured, stderrors.CodeOf(err))
}
