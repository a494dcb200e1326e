package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/authstate"
	"github.com/ahmetcoskunkizilkaya/newsaccess/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

type LocalConfig struct {
	JWTSecret     string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration // "remember me" sessions
	SessionExpiry time.Duration // everything else
}

// Local is the identity provider backed by our own accounts table. Passwords
// are bcrypt hashed; sessions are HS256 access tokens plus a stored refresh
// token whose row ID is the "sid" claim.
type Local struct {
	db         *gorm.DB
	cfg        LocalConfig
	bus        authstate.Bus
	federation Federation
	now        func() time.Time
}

var _ Provider = (*Local)(nil)

// NewLocal builds the provider. federation may be nil, in which case the
// federated methods fail with ErrNotConfigured.
func NewLocal(db *gorm.DB, cfg LocalConfig, bus authstate.Bus, federation Federation) *Local {
	return &Local{
		db:         db,
		cfg:        cfg,
		bus:        bus,
		federation: federation,
		now:        time.Now,
	}
}

// dummyHash is compared against when no account matches, so unknown users
// cost the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("newsaccess-no-such-account"), bcrypt.DefaultCost)
	return h
})

// SignInWithPassword accepts an email or a phone number. Phone numbers are not
// unique, so every account holding the phone is tried, oldest first.
func (l *Local) SignInWithPassword(ctx context.Context, identifier, password string, opts SessionOptions) (*Session, error) {
	query := l.db.WithContext(ctx)
	if strings.Contains(identifier, "@") {
		query = query.Where("email = ?", strings.ToLower(identifier))
	} else {
		query = query.Where("phone = ?", identifier)
	}

	var accts []models.Account
	if err := query.Order("created_at ASC").Find(&accts).Error; err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to load account: %w", err))
	}
	if len(accts) == 0 {
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		return nil, ErrUserNotFound
	}

	for i := range accts {
		// Federated-only accounts have no password to compare against.
		hash := []byte(accts[i].PasswordHash)
		if len(hash) == 0 {
			hash = dummyHash()
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil && accts[i].PasswordHash != "" {
			return l.issueSession(ctx, &accts[i], opts.Remember)
		}
	}
	return nil, ErrWrongPassword
}

func (l *Local) CreateAccount(ctx context.Context, req AccountRequest) (*Identity, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing int64
	if err := l.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to check email: %w", err))
	}
	if existing > 0 {
		return nil, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to hash password: %w", err))
	}

	acct := models.Account{
		ID:           uuid.New(),
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		AuthProvider: ProviderPassword,
	}
	if err := l.db.WithContext(ctx).Create(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, newError(CodeInternal, fmt.Errorf("failed to create account: %w", err))
	}

	return toIdentity(&acct), nil
}

// EnsureAccount creates the account unless one with the email already exists.
// Used to seed the demo sign-in.
func (l *Local) EnsureAccount(ctx context.Context, req AccountRequest) error {
	_, err := l.CreateAccount(ctx, req)
	if errors.Is(err, ErrEmailInUse) {
		return nil
	}
	return err
}

func (l *Local) FederatedStart(ctx context.Context, origin string) (*FederatedChallenge, error) {
	if l.federation == nil {
		return nil, ErrNotConfigured
	}
	return l.federation.Start(ctx, origin)
}

func (l *Local) FederatedComplete(ctx context.Context, cb FederatedCallback) (*Session, error) {
	if l.federation == nil {
		return nil, ErrNotConfigured
	}
	fi, err := l.federation.Complete(ctx, cb)
	if err != nil {
		return nil, err
	}

	acct, err := l.linkFederated(ctx, fi)
	if err != nil {
		return nil, err
	}
	return l.issueSession(ctx, acct, false)
}

// linkFederated finds the account for a Google identity, attaching the Google
// subject to an existing password account with the same verified email, or
// creating a new account.
func (l *Local) linkFederated(ctx context.Context, fi *FederatedIdentity) (*models.Account, error) {
	db := l.db.WithContext(ctx)
	email := strings.ToLower(fi.Email)

	var acct models.Account
	err := db.Where("google_subject = ?", fi.Subject).First(&acct).Error
	if err == nil {
		return &acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(CodeInternal, fmt.Errorf("failed to load account: %w", err))
	}

	if email != "" && fi.EmailVerified {
		err = db.Where("email = ?", email).First(&acct).Error
		if err == nil {
			updates := map[string]interface{}{"google_subject": fi.Subject}
			if acct.DisplayName == "" && fi.Name != "" {
				updates["display_name"] = fi.Name
			}
			if acct.PhotoURL == "" && fi.Picture != "" {
				updates["photo_url"] = fi.Picture
			}
			if err := db.Model(&acct).Updates(updates).Error; err != nil {
				return nil, newError(CodeInternal, fmt.Errorf("failed to link account: %w", err))
			}
			return &acct, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(CodeInternal, fmt.Errorf("failed to load account: %w", err))
		}
	}

	if email == "" {
		email = fi.Subject + "@users.noreply.google.com"
	}
	subject := fi.Subject
	acct = models.Account{
		ID:            uuid.New(),
		Email:         email,
		DisplayName:   fi.Name,
		PhotoURL:      fi.Picture,
		GoogleSubject: &subject,
		AuthProvider:  ProviderGoogle,
	}
	if err := db.Create(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailInUse
		}
		return nil, newError(CodeInternal, fmt.Errorf("failed to create federated account: %w", err))
	}
	return &acct, nil
}

func (l *Local) Resolve(ctx context.Context, token string) (*Identity, error) {
	ident, _, _, err := l.resolve(ctx, token)
	return ident, err
}

func (l *Local) resolve(ctx context.Context, token string) (*Identity, string, time.Time, error) {
	claims, err := l.parseAccessToken(token, true)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	db := l.db.WithContext(ctx)
	var session models.RefreshToken
	if err := db.First(&session, "id = ? AND revoked = ?", claims.SessionID, false).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", time.Time{}, ErrInvalidToken
		}
		return nil, "", time.Time{}, newError(CodeInternal, fmt.Errorf("failed to load session: %w", err))
	}

	var acct models.Account
	if err := db.First(&acct, "id = ?", claims.Subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", time.Time{}, ErrInvalidToken
		}
		return nil, "", time.Time{}, newError(CodeInternal, fmt.Errorf("failed to load account: %w", err))
	}

	return toIdentity(&acct), claims.SessionID, claims.ExpiresAt.Time, nil
}

// Watch subscribes before resolving, so a sign-out that races the initial
// resolution is still observed.
func (l *Local) Watch(ctx context.Context, token string) (<-chan StateChange, error) {
	watchCtx, cancel := context.WithCancel(ctx)
	events, err := l.bus.Subscribe(watchCtx)
	if err != nil {
		cancel()
		return nil, newError(CodeInternal, fmt.Errorf("failed to subscribe to auth state: %w", err))
	}

	out := make(chan StateChange, 1)
	go func() {
		defer close(out)
		defer cancel()

		send := func(sc StateChange) bool {
			select {
			case out <- sc:
				return true
			case <-watchCtx.Done():
				return false
			}
		}

		ident, sid, exp, err := l.resolve(watchCtx, token)
		switch {
		case err == nil:
			if !send(StateChange{Identity: ident}) {
				return
			}
		case errors.Is(err, ErrInvalidToken):
			send(StateChange{})
			return
		default:
			send(StateChange{Err: err})
			return
		}

		expiry := time.NewTimer(time.Until(exp))
		defer expiry.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case <-expiry.C:
				send(StateChange{})
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Kind != authstate.SignedOut || ev.AccountID != ident.ID {
					continue
				}
				if ev.SessionID == "" || ev.SessionID == sid {
					send(StateChange{})
					return
				}
			}
		}
	}()
	return out, nil
}

func (l *Local) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	db := l.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(refreshToken), false).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, newError(CodeInternal, fmt.Errorf("failed to load refresh token: %w", err))
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to rotate refresh token: %w", err))
	}
	if l.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var acct models.Account
	if err := db.First(&acct, "id = ?", stored.AccountID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	return l.issueSession(ctx, &acct, stored.Remember)
}

// SignOut revokes the session behind an access token. Expired tokens are
// accepted so a client can always sign out.
func (l *Local) SignOut(ctx context.Context, token string) error {
	claims, err := l.parseAccessToken(token, false)
	if err != nil {
		return err
	}

	result := l.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", claims.SessionID, false).
		Update("revoked", true)
	if result.Error != nil {
		return newError(CodeInternal, fmt.Errorf("failed to revoke session: %w", result.Error))
	}

	l.publish(ctx, authstate.Event{
		AccountID: claims.Subject,
		SessionID: claims.SessionID,
		Kind:      authstate.SignedOut,
		At:        l.now(),
	})
	return nil
}

type accessClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (l *Local) parseAccessToken(raw string, validate bool) (*accessClaims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if validate {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(l.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, newError(CodeInvalidToken, err)
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (l *Local) issueSession(ctx context.Context, acct *models.Account, remember bool) (*Session, error) {
	now := l.now()

	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to generate random bytes: %w", err))
	}
	rawRefresh := base64.URLEncoding.EncodeToString(rawBytes)

	lifetime := l.cfg.SessionExpiry
	if remember {
		lifetime = l.cfg.RefreshExpiry
	}
	record := models.RefreshToken{
		ID:        uuid.New(),
		AccountID: acct.ID,
		TokenHash: hashToken(rawRefresh),
		ExpiresAt: now.Add(lifetime),
		Remember:  remember,
	}
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to store refresh token: %w", err))
	}

	expiresAt := now.Add(l.cfg.AccessExpiry)
	claims := accessClaims{
		Email:     acct.Email,
		SessionID: record.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(l.cfg.JWTSecret))
	if err != nil {
		return nil, newError(CodeInternal, fmt.Errorf("failed to sign access token: %w", err))
	}

	l.publish(ctx, authstate.Event{
		AccountID: acct.ID.String(),
		SessionID: record.ID.String(),
		Kind:      authstate.SignedIn,
		At:        now,
	})

	return &Session{
		Identity:     toIdentity(acct),
		AccessToken:  access,
		RefreshToken: rawRefresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func (l *Local) publish(ctx context.Context, ev authstate.Event) {
	if err := l.bus.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish auth state", "error", err, "kind", string(ev.Kind), "user_id", ev.AccountID)
	}
}

func toIdentity(acct *models.Account) *Identity {
	return &Identity{
		ID:          acct.ID.String(),
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		Phone:       acct.Phone,
		PhotoURL:    acct.PhotoURL,
		Provider:    acct.AuthProvider,
	}
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
