// Package auth turns submitted sign-in, signup and federated sign-in forms
// into provider calls and user-facing outcomes.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/dto"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/profile"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/validation"
)

// ProfileSyncer is the part of profile.Synchronizer the dispatcher needs.
type ProfileSyncer interface {
	Sync(ctx context.Context, ident *identity.Identity, meta *profile.SignupMetadata) (*models.UserProfile, bool, error)
}

type Dispatcher struct {
	provider identity.Provider
	profiles ProfileSyncer
	guard    *Guard
	metrics  *metrics.Metrics
	opts     validation.Options
}

func NewDispatcher(provider identity.Provider, profiles ProfileSyncer, m *metrics.Metrics, opts validation.Options) *Dispatcher {
	return &Dispatcher{
		provider: provider,
		profiles: profiles,
		guard:    NewGuard(),
		metrics:  m,
		opts:     opts,
	}
}

func (d *Dispatcher) Guard() *Guard { return d.guard }

// Login signs in with an email or phone and a password.
func (d *Dispatcher) Login(ctx context.Context, client string, req dto.LoginRequest) Outcome {
	return d.run(ActionLogin, client, func() Outcome {
		creds, errs := validation.ValidateLogin(req)
		if len(errs) > 0 {
			return invalid(errs)
		}

		session, err := d.provider.SignInWithPassword(ctx, creds.Identifier, creds.Password, identity.SessionOptions{Remember: creds.RememberMe})
		if err != nil {
			code := identity.CodeOf(err)
			if code == identity.CodeInternal {
				slog.Error("sign-in failed", "action", ActionLogin, "code", string(code), "error", err)
			}
			return failed(code, MsgInvalidCredentials)
		}

		d.syncProfile(ctx, ActionLogin, session.Identity, nil)
		return Outcome{Status: StatusSuccess, Navigate: DashboardPath, Session: session}
	})
}

// Signup creates an account and its profile. The user is not signed in; the
// client switches to the login view.
func (d *Dispatcher) Signup(ctx context.Context, client string, req dto.SignupRequest) Outcome {
	return d.run(ActionSignup, client, func() Outcome {
		s, errs := validation.ValidateSignup(req, d.opts)
		if len(errs) > 0 {
			return invalid(errs)
		}

		ident, err := d.provider.CreateAccount(ctx, identity.AccountRequest{
			Email:       s.Email,
			Password:    s.Password,
			DisplayName: s.FullName,
			Phone:       s.Phone,
		})
		if err != nil {
			code := identity.CodeOf(err)
			if errors.Is(err, identity.ErrEmailInUse) {
				return failed(code, MsgEmailInUse)
			}
			slog.Error("account creation failed", "action", ActionSignup, "code", string(code), "error", err)
			return failed(code, MsgSignupFailed)
		}

		d.syncProfile(ctx, ActionSignup, ident, &profile.SignupMetadata{
			FullName: s.FullName,
			Phone:    s.Phone,
			Role:     s.Role,
			ClubID:   s.ClubID,
		})
		return Outcome{Status: StatusSuccess, Message: MsgSignupSuccess, NextView: LoginView}
	})
}

// FederatedStart opens the consent popup for origin.
func (d *Dispatcher) FederatedStart(ctx context.Context, client, origin string) Outcome {
	return d.run(ActionFederatedStart, client, func() Outcome {
		ch, err := d.provider.FederatedStart(ctx, origin)
		if err != nil {
			return d.federatedFailure(ActionFederatedStart, err)
		}
		return Outcome{Status: StatusSuccess, Challenge: ch}
	})
}

// FederatedComplete finishes the popup flow with the provider's callback.
func (d *Dispatcher) FederatedComplete(ctx context.Context, client string, cb identity.FederatedCallback) Outcome {
	return d.run(ActionFederated, client, func() Outcome {
		session, err := d.provider.FederatedComplete(ctx, cb)
		if err != nil {
			return d.federatedFailure(ActionFederated, err)
		}

		d.syncProfile(ctx, ActionFederated, session.Identity, nil)
		return Outcome{Status: StatusSuccess, Navigate: DashboardPath, Session: session}
	})
}

func (d *Dispatcher) federatedFailure(action string, err error) Outcome {
	code := identity.CodeOf(err)
	switch {
	case errors.Is(err, identity.ErrPopupClosed):
		// Closing the popup is not an error worth showing.
		return Outcome{Status: StatusDismissed, Code: code}
	case errors.Is(err, identity.ErrUnauthorizedDomain):
		return failed(code, MsgUnauthorizedDomain)
	case errors.Is(err, identity.ErrNotConfigured):
		return failed(code, MsgFederationDisabled)
	}
	slog.Error("federated sign-in failed", "action", action, "code", string(code), "error", err)
	return failed(code, MsgFederatedFailed)
}

// SignOut ends the session behind token.
func (d *Dispatcher) SignOut(ctx context.Context, token string) error {
	err := d.provider.SignOut(ctx, token)
	if err != nil {
		d.metrics.AuthAction(ActionSignOut, string(StatusFailed))
		return err
	}
	d.metrics.AuthAction(ActionSignOut, string(StatusSuccess))
	return nil
}

func (d *Dispatcher) Refresh(ctx context.Context, refreshToken string) (*identity.Session, error) {
	return d.provider.Refresh(ctx, refreshToken)
}

func (d *Dispatcher) run(action, client string, fn func() Outcome) Outcome {
	release, err := d.guard.Acquire(action, client)
	if err != nil {
		d.metrics.AuthAction(action, string(StatusPending))
		return pending()
	}
	defer release()

	out := fn()
	d.metrics.AuthAction(action, string(out.Status))
	return out
}

// syncProfile never fails the action: the account exists either way and the
// profile is created on the next sign-in.
func (d *Dispatcher) syncProfile(ctx context.Context, action string, ident *identity.Identity, meta *profile.SignupMetadata) {
	if d.profiles == nil || ident == nil {
		return
	}
	if _, _, err := d.profiles.Sync(ctx, ident, meta); err != nil {
		slog.Error("profile sync failed", "action", action, "user_id", ident.ID, "error", err)
	}
}
