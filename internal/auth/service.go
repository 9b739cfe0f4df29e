package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
)

type Mailer interface {
	SendResetLink(ctx context.Context, to, link string) error
}

type TempleLookup interface {
	Exists(ctx context.Context, code string) (bool, error)
}

type NGOLookup interface {
	GetByID(ctx context.Context, id uint) (*ngo.NGO, error)
}

type Service interface {
	SignUp(ctx context.Context, in SignUpInput) (*Principal, error)
	SignInWithPassword(ctx context.Context, in SignInInput) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)

	// Resolve maps a token to its principal without a role check.
	Resolve(ctx context.Context, accessToken string) (*Principal, error)
	// Authorize is Resolve plus the role gate.
	Authorize(ctx context.Context, accessToken, role string) (*Principal, error)

	SendPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	LinkProfile(ctx context.Context, profileID string, in LinkInput) (*Profile, error)
	SeedAdmin(ctx context.Context, email, password string) error

	Watch(ctx context.Context, userID string) (<-chan SessionEvent, func(), error)
}

type Options struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Retry         RetryPolicy
	// ResetURL is the frontend page that accepts ?token=.
	ResetURL string
}

type Deps struct {
	Repo    Repository
	Tokens  TokenStore
	Bus     SessionBus
	Mailer  Mailer
	Temples TempleLookup
	NGOs    NGOLookup
}

type service struct {
	Deps
	issuer   *tokenIssuer
	retry    RetryPolicy
	resetURL string
	log      *zap.SugaredLogger
}

func NewService(d Deps, opts Options, log *zap.SugaredLogger) Service {
	if d.Bus == nil {
		d.Bus = NewLocalSessionBus()
	}
	if d.Tokens == nil {
		d.Tokens = NewMemoryTokenStore()
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = DefaultRetryPolicy
	}
	return &service{
		Deps: d,
		issuer: &tokenIssuer{
			accessSecret:  []byte(opts.AccessSecret),
			refreshSecret: []byte(opts.RefreshSecret),
			accessTTL:     opts.AccessTTL,
			refreshTTL:    opts.RefreshTTL,
			now:           time.Now,
		},
		retry:    opts.Retry,
		resetURL: opts.ResetURL,
		log:      log.With("service", "AuthService"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp writes the credentials and profile rows together. Admins cannot
// self-register.
func (s *service) SignUp(ctx context.Context, in SignUpInput) (*Principal, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	switch role {
	case RoleNGO, RoleTemple:
	case RoleAdmin:
		return nil, apperr.New(apperr.KindForbidden, "admin accounts cannot self-register")
	default:
		return nil, apperr.Validation("role must be ngo or temple")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	p, err := s.createAccount(ctx, normalizeEmail(in.Email), in.Password, role, strings.TrimSpace(in.FullName), strings.TrimSpace(in.Phone))
	if err != nil {
		return nil, err
	}
	s.log.Infow("account created", "user_id", p.ID, "role", role)
	return p.Principal(), nil
}

func (s *service) createAccount(ctx context.Context, email, password, role, fullName, phone string) (*Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	profile := &Profile{ID: user.ID, Email: email, Role: role, FullName: fullName, Phone: phone}
	// Both rows or neither.
	err = s.Repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		if err := tx.CreateProfile(ctx, profile); err != nil {
			return fmt.Errorf("create profile for %s: %w", user.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) SignInWithPassword(ctx context.Context, in SignInInput) (*Session, error) {
	user, err := s.Repo.FindUserByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	profile, err := fetchProfileWithRetry(ctx, s.Repo, user.ID, s.retry)
	if err != nil {
		return nil, err
	}
	landing, err := LandingRoute(profile.Role)
	if err != nil {
		s.log.Errorw("profile has unusable role", "user_id", user.ID, "role", profile.Role)
		return nil, err
	}
	pair, err := s.issuer.pair(user.ID, profile.Role)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, user.ID, EventSignedIn)
	return &Session{TokenPair: pair, Principal: profile.Principal(), Landing: landing}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	profile, err := s.Repo.FindProfile(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.KindUnauthenticated, "account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	access, exp, err := s.issuer.issue(profile.ID, profile.Role, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, profile.ID, EventRefreshed)
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken, ExpiresAt: exp}, nil
}

// SignOut denylists the access token's id until the token would have expired.
func (s *service) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.issuer.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl > 0 {
		if err := s.Tokens.Set(ctx, revokedPrefix+claims.ID, claims.Subject, ttl); err != nil {
			return err
		}
	}
	s.notify(ctx, claims.Subject, EventSignedOut)
	return nil
}

func (s *service) checkRevoked(ctx context.Context, jti string) error {
	_, err := s.Tokens.Get(ctx, revokedPrefix+jti)
	switch {
	case err == nil:
		return apperr.New(apperr.KindUnauthenticated, "session has been signed out")
	case errors.Is(err, apperr.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *service) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	claims, err := s.issuer.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	p, err := s.principalFor(ctx, claims)
	if err != nil {
		return nil, err
	}
	landing, err := LandingRoute(p.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		TokenPair: TokenPair{AccessToken: accessToken, ExpiresAt: claims.ExpiresAt.Time},
		Principal: p,
		Landing:   landing,
	}, nil
}

func (s *service) Resolve(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.issuer.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return s.principalFor(ctx, claims)
}

// principalFor reads the role from the profile row, not from the token.
func (s *service) principalFor(ctx context.Context, claims *Claims) (*Principal, error) {
	if err := s.checkRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	profile, err := s.Repo.FindProfile(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.KindForbidden, "no profile for this account")
	}
	if err != nil {
		return nil, err
	}
	return profile.Principal(), nil
}

func (s *service) Authorize(ctx context.Context, accessToken, role string) (*Principal, error) {
	p, err := s.Resolve(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if p.Role != role {
		return nil, apperr.New(apperr.KindForbidden, "requires role %s", role)
	}
	return p, nil
}

// SendPasswordReset answers the same way whether or not the email is known.
func (s *service) SendPasswordReset(ctx context.Context, email string) error {
	user, err := s.Repo.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		s.log.Infow("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := secureToken()
	if err != nil {
		return err
	}
	if err := s.Tokens.Set(ctx, resetTokenPrefix+token, user.ID, resetTokenTTL); err != nil {
		return err
	}
	if s.Mailer == nil {
		s.log.Warnw("no mailer configured, reset link not sent", "user_id", user.ID)
		return nil
	}
	link := fmt.Sprintf("%s?token=%s", s.resetURL, token)
	if err := s.Mailer.SendResetLink(ctx, user.Email, link); err != nil {
		s.log.Errorw("reset email failed", "user_id", user.ID, "err", err)
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	key := resetTokenPrefix + strings.TrimSpace(token)
	userID, err := s.Tokens.Get(ctx, key)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Validation("invalid or expired token")
	}
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	if err := s.Tokens.Delete(ctx, key); err != nil {
		s.log.Warnw("reset token not cleaned up", "err", err)
	}
	s.log.Infow("password reset", "user_id", userID)
	return nil
}

// LinkProfile attaches a temple or NGO to a profile. Temple profiles link
// to a temple code, NGO profiles to an NGO id. An empty temple code or a zero
// NGO id clears the link.
func (s *service) LinkProfile(ctx context.Context, profileID string, in LinkInput) (*Profile, error) {
	profile, err := s.Repo.FindProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{}
	switch profile.Role {
	case RoleTemple:
		if in.NGOID != nil {
			return nil, apperr.Validation("temple profiles cannot link to an NGO")
		}
		if in.TempleCode == nil {
			return nil, apperr.Validation("temple_code is required")
		}
		code := strings.TrimSpace(*in.TempleCode)
		if code == "" {
			patch["temple_code"] = nil
			break
		}
		ok, err := s.Temples.Exists(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.NotFound("temple %q not found", code)
		}
		patch["temple_code"] = code
	case RoleNGO:
		if in.TempleCode != nil {
			return nil, apperr.Validation("ngo profiles link to an NGO, not a temple")
		}
		if in.NGOID == nil {
			return nil, apperr.Validation("ngo_id is required")
		}
		if *in.NGOID == 0 {
			patch["ngo_id"] = nil
			break
		}
		if _, err := s.NGOs.GetByID(ctx, *in.NGOID); err != nil {
			return nil, err
		}
		patch["ngo_id"] = *in.NGOID
	default:
		return nil, apperr.Validation("%s profiles cannot be linked", profile.Role)
	}

	if err := s.Repo.UpdateProfile(ctx, profileID, patch); err != nil {
		return nil, err
	}
	s.log.Infow("profile linked", "profile_id", profileID, "patch", patch)
	return s.Repo.FindProfile(ctx, profileID)
}

// SeedAdmin creates the configured admin account once.
func (s *service) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	_, err := s.Repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if _, err := s.createAccount(ctx, email, password, RoleAdmin, "Administrator", ""); err != nil {
		return err
	}
	s.log.Infow("admin account seeded", "email", email)
	return nil
}

func (s *service) Watch(ctx context.Context, userID string) (<-chan SessionEvent, func(), error) {
	return s.Bus.Subscribe(ctx, userID)
}

func (s *service) notify(ctx context.Context, userID, typ string) {
	if err := s.Bus.Publish(ctx, SessionEvent{UserID: userID, Type: typ, At: time.Now().UTC()}); err != nil {
		s.log.Warnw("session event not published", "user_id", userID, "type", typ, "err", err)
	}
}

func secureToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
