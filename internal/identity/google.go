package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const stateTTL = 10 * time.Minute

type GoogleConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURL       string
	AuthorizedDomains []string

	// Overrides for tests.
	Endpoint   oauth2.Endpoint
	JWKSURL    string
	HTTPClient *http.Client
}

type pendingState struct {
	verifier  string
	expiresAt time.Time
}

// GoogleFederation runs the Google consent popup with PKCE. Pending states
// live in memory, so the start and callback must hit the same instance.
type GoogleFederation struct {
	oauth      *oauth2.Config
	verifier   *JWKSVerifier
	domains    []string
	httpClient *http.Client
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]pendingState
}

var _ Federation = (*GoogleFederation)(nil)

func NewGoogleFederation(cfg GoogleConfig) *GoogleFederation {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}
	return &GoogleFederation{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoint,
		},
		verifier:   NewJWKSVerifier(cfg.JWKSURL, cfg.HTTPClient),
		domains:    cfg.AuthorizedDomains,
		httpClient: cfg.HTTPClient,
		now:        time.Now,
		pending:    make(map[string]pendingState),
	}
}

func (g *GoogleFederation) Start(_ context.Context, origin string) (*FederatedChallenge, error) {
	if !g.authorized(origin) {
		return nil, newError(CodeUnauthorizedDomain, fmt.Errorf("origin %q is not authorized", origin))
	}

	state, err := randomState()
	if err != nil {
		return nil, newError(CodeInternal, err)
	}
	verifier := oauth2.GenerateVerifier()

	g.mu.Lock()
	g.sweepLocked()
	g.pending[state] = pendingState{verifier: verifier, expiresAt: g.now().Add(stateTTL)}
	g.mu.Unlock()

	authURL := g.oauth.AuthCodeURL(state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return &FederatedChallenge{AuthURL: authURL, State: state}, nil
}

func (g *GoogleFederation) Complete(ctx context.Context, cb FederatedCallback) (*FederatedIdentity, error) {
	// The state is single use, even when the popup was dismissed.
	pending, ok := g.consume(cb.State)

	switch cb.Error {
	case "":
	case "access_denied", "popup_closed_by_user":
		return nil, ErrPopupClosed
	default:
		return nil, newError(CodeInternal, fmt.Errorf("oauth error: %s", cb.Error))
	}
	if cb.Code == "" {
		return nil, ErrPopupClosed
	}
	if !ok {
		return nil, ErrInvalidState
	}

	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}
	token, err := g.oauth.Exchange(ctx, cb.Code, oauth2.VerifierOption(pending.verifier))
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			return nil, newError(CodeInvalidCredential, err)
		}
		return nil, newError(CodeInternal, fmt.Errorf("token exchange failed: %w", err))
	}

	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		return nil, newError(CodeInvalidCredential, errors.New("token response has no id_token"))
	}
	claims, err := g.verifier.Verify(ctx, rawID, g.oauth.ClientID)
	if err != nil {
		return nil, newError(CodeInvalidCredential, fmt.Errorf("id_token verification failed: %w", err))
	}

	return &FederatedIdentity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.Verified(),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func (g *GoogleFederation) consume(state string) (pendingState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.pending[state]
	if !ok {
		return pendingState{}, false
	}
	delete(g.pending, state)
	if g.now().After(p.expiresAt) {
		return pendingState{}, false
	}
	return p, true
}

func (g *GoogleFederation) sweepLocked() {
	now := g.now()
	for k, p := range g.pending {
		if now.After(p.expiresAt) {
			delete(g.pending, k)
		}
	}
}

// authorized matches the origin host against the allowed domains, exactly or
// as a subdomain.
func (g *GoogleFederation) authorized(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false
	}
	if !strings.Contains(origin, "://") {
		origin = "http://" + origin
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, d := range g.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
