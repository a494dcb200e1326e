// Package profile keeps the per-user profile record in step with the
// identity provider.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
)

const AnonymousName = "Anonymous User"

// SignupMetadata is what the signup form knew that the provider does not.
type SignupMetadata struct {
	FullName string
	Phone    string
	Role     string
	ClubID   string
}

type Synchronizer struct {
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewSynchronizer(store Store, m *metrics.Metrics) *Synchronizer {
	return &Synchronizer{store: store, metrics: m, now: time.Now}
}

// Sync makes sure a profile exists for ident. A new profile is built from the
// identity and meta; an existing one only has its last login refreshed, so
// role, club and preferences set at signup are never overwritten.
func (s *Synchronizer) Sync(ctx context.Context, ident *identity.Identity, meta *SignupMetadata) (*models.UserProfile, bool, error) {
	if ident == nil || ident.ID == "" {
		return nil, false, errors.New("profile sync requires an identity")
	}
	now := s.now().UTC()

	existing, err := s.store.Get(ctx, ident.ID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		s.metrics.ProfileSync("error")
		return nil, false, err
	}

	if existing == nil {
		p := newProfile(ident, meta, now)
		created, err := s.store.CreateIfAbsent(ctx, p)
		if err != nil {
			s.metrics.ProfileSync("error")
			return nil, false, err
		}
		if created {
			s.metrics.ProfileSync("created")
			slog.Info("profile created", "user_id", ident.ID, "role", p.Role)
			return p, true, nil
		}
		// Lost the race to a concurrent sync; fall through to the update path.
	}

	if err := s.store.TouchLastLogin(ctx, ident.ID, now); err != nil {
		s.metrics.ProfileSync("error")
		return nil, false, fmt.Errorf("failed to refresh profile: %w", err)
	}
	if existing == nil {
		// Only the race loser lacks a copy of the stored profile.
		if existing, err = s.store.Get(ctx, ident.ID); err != nil {
			s.metrics.ProfileSync("error")
			return nil, false, err
		}
	} else {
		existing.LastLogin = now
	}
	s.metrics.ProfileSync("updated")
	return existing, false, nil
}

func (s *Synchronizer) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.store.Get(ctx, id)
}

func newProfile(ident *identity.Identity, meta *SignupMetadata, now time.Time) *models.UserProfile {
	if meta == nil {
		meta = &SignupMetadata{}
	}

	p := &models.UserProfile{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: firstNonEmpty(ident.DisplayName, meta.FullName, AnonymousName),
		Phone:       firstNonEmpty(ident.Phone, meta.Phone),
		Role:        firstNonEmpty(meta.Role, models.RoleUser),
		CreatedAt:   now,
		LastLogin:   now,
	}
	if club := strings.TrimSpace(meta.ClubID); club != "" {
		p.ClubID = &club
	}
	return p
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
