// internal/auth/gateway.go
package auth

import (
	"context"
	"time"

	"github.com/Shravani-Dhumal/Verifixia/internal/common/logger"
	"github.com/Shravani-Dhumal/Verifixia/internal/models"
	"github.com/Shravani-Dhumal/Verifixia/internal/session"
)

// ProfileSyncer pushes profile edits to the inference backend. The gateway
// treats this as soft sync: a failure is logged and never fails the auth flow.
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, update models.ProfileUpdate) error
}

// Gateway performs sign-up and sign-in against the identity provider and owns
// the resulting session's lifecycle in the Store.
type Gateway struct {
	identity *IdentityClient
	store    session.Store
	profile  ProfileSyncer
	log      logger.Logger
	now      func() time.Time
}

type Credentials struct {
	Email       string
	Password    string
	DisplayName string
}

func NewGateway(identity *IdentityClient, store session.Store, profile ProfileSyncer, log logger.Logger) *Gateway {
	return &Gateway{
		identity: identity,
		store:    store,
		profile:  profile,
		log:      log.WithFields(map[string]interface{}{"component": "auth-gateway"}),
		now:      time.Now,
	}
}

// RegisterWithEmail creates the account, optionally sets the display name in
// a second provider call, persists the session, and best-effort syncs the
// profile to the backend. The session adopts the token from whichever
// provider call ran last: a display-name update can rotate the token.
func (g *Gateway) RegisterWithEmail(ctx context.Context, creds Credentials) (*models.User, error) {
	tok, err := g.identity.SignUp(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	if creds.DisplayName != "" {
		updated, err := g.identity.UpdateProfile(ctx, tok.IDToken, creds.DisplayName)
		if err != nil {
			return nil, err
		}
		tok = updated
	}

	sess := g.buildSession(tok)
	if err := g.store.Write(sess); err != nil {
		return nil, err
	}

	var displayName *string
	if creds.DisplayName != "" {
		displayName = &creds.DisplayName
	}
	g.softSyncProfile(ctx, models.ProfileUpdate{DisplayName: displayName})

	return sess.User, nil
}

// LoginWithEmail signs in, persists the session, and best-effort syncs the
// profile to the backend.
func (g *Gateway) LoginWithEmail(ctx context.Context, creds Credentials) (*models.User, error) {
	tok, err := g.identity.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}

	sess := g.buildSession(tok)
	if err := g.store.Write(sess); err != nil {
		return nil, err
	}

	g.softSyncProfile(ctx, models.ProfileUpdate{})

	return sess.User, nil
}

// Logout clears the local session. Purely local, so it cannot fail because
// of network state.
func (g *Gateway) Logout() error {
	return g.store.Clear()
}

// CurrentUser returns the cached user, nil when no valid session exists.
func (g *Gateway) CurrentUser() *models.User {
	if s := g.store.Read(); s != nil {
		return s.User
	}
	return nil
}

// Token returns the current bearer token, empty when no valid session exists.
func (g *Gateway) Token() string {
	if s := g.store.Read(); s != nil {
		return s.IDToken
	}
	return ""
}

func (g *Gateway) buildSession(tok *TokenResponse) *models.Session {
	return &models.Session{
		IDToken:      tok.IDToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    g.now().UnixMilli() + tok.ExpirySeconds()*1000,
		User: &models.User{
			UID:         tok.LocalID,
			Email:       tok.Email,
			DisplayName: tok.DisplayName,
			PhotoURL:    tok.PhotoURL,
		},
	}
}

// softSyncProfile is fire-and-forget: the backend's copy of the profile is
// optional, so sync failure must not fail login or registration.
func (g *Gateway) softSyncProfile(ctx context.Context, update models.ProfileUpdate) {
	if g.profile == nil {
		return
	}
	if err := g.profile.SyncProfile(ctx, update); err != nil {
		g.log.Warn("profile sync to backend failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
