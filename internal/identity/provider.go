// Package identity is the boundary to the identity provider: it signs people
// in, creates accounts, runs the federated popup flow and reports auth state
// changes for a session.
package identity

import (
	"context"
	"time"
)

// Identity is what the provider knows about an authenticated user.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	PhotoURL    string `json:"photo_url"`
	Provider    string `json:"provider"`
}

// Session is a signed-in identity plus the tokens that prove it.
type Session struct {
	Identity     *Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type SessionOptions struct {
	// Remember selects the long-lived refresh token.
	Remember bool
}

type AccountRequest struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

// FederatedChallenge is what the client needs to open the consent popup.
type FederatedChallenge struct {
	AuthURL string
	State   string
}

// FederatedCallback is the popup's result. Error is the OAuth error
// parameter, or "popup_closed_by_user" when the client saw the popup close.
type FederatedCallback struct {
	State string
	Code  string
	Error string
}

// StateChange is one value of the auth-state stream. A nil Identity with a
// nil Err means signed out.
type StateChange struct {
	Identity *Identity
	Err      error
}

type Provider interface {
	SignInWithPassword(ctx context.Context, identifier, password string, opts SessionOptions) (*Session, error)
	CreateAccount(ctx context.Context, req AccountRequest) (*Identity, error)
	FederatedStart(ctx context.Context, origin string) (*FederatedChallenge, error)
	FederatedComplete(ctx context.Context, cb FederatedCallback) (*Session, error)
	Resolve(ctx context.Context, token string) (*Identity, error)
	// Watch emits the token's current state immediately, then every change.
	// The channel is closed when ctx ends or the session can no longer change.
	Watch(ctx context.Context, token string) (<-chan StateChange, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// FederatedIdentity is a verified identity asserted by the OAuth provider.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Federation runs the OAuth popup flow for one external provider.
type Federation interface {
	Start(ctx context.Context, origin string) (*FederatedChallenge, error)
	Complete(ctx context.Context, cb FederatedCallback) (*FederatedIdentity, error)
}
