package profile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/identity"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynchronizer(t *testing.T) (*Synchronizer, *GormStore) {
	t.Helper()
	store := NewGormStore(testutil.NewDB(t))
	return NewSynchronizer(store, nil), store
}

func TestSync_CreatesWithDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		ident     identity.Identity
		meta      *SignupMetadata
		wantName  string
		wantPhone string
		wantRole  string
		wantClub  *string
	}{
		{
			name:     "NoMetadata",
			ident:    identity.Identity{ID: "u1", Email: "a@example.com"},
			wantName: AnonymousName,
			wantRole: models.RoleUser,
		},
		{
			name:      "MetadataFillsGaps",
			ident:     identity.Identity{ID: "u2", Email: "b@example.com"},
			meta:      &SignupMetadata{FullName: "Bea", Phone: "+15550100199", Role: models.RoleSunriseMember, ClubID: "CLUB-7"},
			wantName:  "Bea",
			wantPhone: "+15550100199",
			wantRole:  models.RoleSunriseMember,
			wantClub:  strPtr("CLUB-7"),
		},
		{
			name:      "ProviderWins",
			ident:     identity.Identity{ID: "u3", Email: "c@example.com", DisplayName: "Provider Name", Phone: "+15550000000"},
			meta:      &SignupMetadata{FullName: "Form Name", Phone: "+15551111111"},
			wantName:  "Provider Name",
			wantPhone: "+15550000000",
			wantRole:  models.RoleUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSynchronizer(t)

			p, created, err := s.Sync(ctx, &tt.ident, tt.meta)
			require.NoError(t, err)
			assert.True(t, created)
			assert.Equal(t, tt.ident.Email, p.Email)
			assert.Equal(t, tt.wantName, p.DisplayName)
			assert.Equal(t, tt.wantPhone, p.Phone)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.Equal(t, tt.wantClub, p.ClubID)
			assert.False(t, p.Pinned)

			stored, err := s.Get(ctx, tt.ident.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, stored.Role)
		})
	}
}

func TestSync_ExistingOnlyTouchesLastLogin(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSynchronizer(t)

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	ident := &identity.Identity{ID: "u1", Email: "a@example.com"}
	_, created, err := s.Sync(ctx, ident, &SignupMetadata{FullName: "Ada", Role: models.RoleSunriseMember, ClubID: "CLUB-1"})
	require.NoError(t, err)
	require.True(t, created)

	later := start.Add(48 * time.Hour)
	s.now = func() time.Time { return later }

	p, created, err := s.Sync(ctx, &identity.Identity{ID: "u1", Email: "a@example.com", DisplayName: "Changed"}, &SignupMetadata{Role: models.RoleUser})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.RoleSunriseMember, p.Role)
	require.NotNil(t, p.ClubID)
	assert.Equal(t, "CLUB-1", *p.ClubID)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.True(t, p.LastLogin.Equal(later), "last login %v", p.LastLogin)
	assert.True(t, p.CreatedAt.Equal(start), "created at %v", p.CreatedAt)

	var count int64
	store.db.Model(&models.UserProfile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSync_ConcurrentCreatesOnce(t *testing.T) {
	ctx := context.Background()
	s, store := newTestSynchronizer(t)
	ident := &identity.Identity{ID: "racer", Email: "r@example.com"}

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
		errs    []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.Sync(ctx, ident, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if created {
				creates++
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, errs)
	assert.Equal(t, 1, creates)

	var count int64
	store.db.Model(&models.UserProfile{}).Where("id = ?", "racer").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGormStore_CreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	_, store := newTestSynchronizer(t)

	created, err := store.CreateIfAbsent(ctx, &models.UserProfile{ID: "x", Role: models.RoleSunriseMember})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.CreateIfAbsent(ctx, &models.UserProfile{ID: "x", Role: models.RoleUser})
	require.NoError(t, err)
	assert.False(t, created)

	p, err := store.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSunriseMember, p.Role)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, store.TouchLastLogin(ctx, "missing", time.Now()), ErrProfileNotFound)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) Get(context.Context, string) (*models.UserProfile, error) {
	return nil, f.err
}

func TestSync_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	s := NewSynchronizer(failingStore{err: boom}, nil)

	_, _, err := s.Sync(context.Background(), &identity.Identity{ID: "u"}, nil)
	assert.ErrorIs(t, err, boom)

	_, _, err = s.Sync(context.Background(), nil, nil)
	assert.Error(t, err)
}

// countingStore records store traffic around a real GormStore.
type countingStore struct {
	*GormStore
	gets, creates, touches int
	hideFirstGet           bool
}

func (c *countingStore) Get(ctx context.Context, id string) (*models.UserProfile, error) {
	c.gets++
	if c.hideFirstGet && c.gets == 1 {
		return nil, ErrProfileNotFound
	}
	return c.GormStore.Get(ctx, id)
}

func (c *countingStore) CreateIfAbsent(ctx context.Context, p *models.UserProfile) (bool, error) {
	c.creates++
	return c.GormStore.CreateIfAbsent(ctx, p)
}

func (c *countingStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	c.touches++
	return c.GormStore.TouchLastLogin(ctx, id, at)
}

func TestSync_StoreRoundTrips(t *testing.T) {
	ctx := context.Background()
	ident := &identity.Identity{ID: "u1", Email: "a@example.com"}

	t.Run("ExistingProfile", func(t *testing.T) {
		base := NewGormStore(testutil.NewDB(t))
		_, err := base.CreateIfAbsent(ctx, &models.UserProfile{ID: "u1", Role: models.RoleUser})
		require.NoError(t, err)

		store := &countingStore{GormStore: base}
		p, created, err := NewSynchronizer(store, nil).Sync(ctx, ident, nil)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "u1", p.ID)
		assert.Equal(t, 1, store.gets)
		assert.Equal(t, 0, store.creates)
		assert.Equal(t, 1, store.touches)
	})

	t.Run("LostCreateRace", func(t *testing.T) {
		base := NewGormStore(testutil.NewDB(t))
		_, err := base.CreateIfAbsent(ctx, &models.UserProfile{ID: "u1", Role: models.RoleSunriseMember})
		require.NoError(t, err)

		store := &countingStore{GormStore: base, hideFirstGet: true}
		p, created, err := NewSynchronizer(store, nil).Sync(ctx, ident, nil)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, models.RoleSunriseMember, p.Role)
		assert.Equal(t, 2, store.gets)
		assert.Equal(t, 1, store.creates)
		assert.Equal(t, 1, store.touches)
	})
}

func strPtr(s string) *string { return &s }
