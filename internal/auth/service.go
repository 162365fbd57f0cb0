package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rkdoors/storefront-backend/internal/users"
	pkgAuth "github.com/rkdoors/storefront-backend/pkg/auth"
	"github.com/rkdoors/storefront-backend/pkg/auth/session"
	"github.com/rkdoors/storefront-backend/pkg/config"
	"github.com/rkdoors/storefront-backend/pkg/db"
	"github.com/rkdoors/storefront-backend/pkg/db/models"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	pkgerrors "github.com/rkdoors/storefront-backend/pkg/errors"
	"github.com/rkdoors/storefront-backend/pkg/kv"
	"github.com/rkdoors/storefront-backend/pkg/logger"
	"github.com/rkdoors/storefront-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	identityKeyPrefix         = "identity:"
)

// Service is the identity provider used by the auth controllers and the
// bearer middleware.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignIn(ctx context.Context, req Credentials) (*Session, error)
	AdminSignIn(ctx context.Context, req Credentials) (*Session, error)
	SignOut(ctx context.Context, accessID string) error
	Current(ctx context.Context, accessID string, userID uuid.UUID) (*Identity, error)
	Refresh(ctx context.Context, req RefreshRequest) (*Session, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// IdentityCache is optional.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	IdentityCache  kv.Store
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	IdentityConfig config.IdentityConfig
	Logger         *logger.Logger
}

type service struct {
	users       userRepository
	session     sessionManager
	cache       kv.Store
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	cacheTTL    time.Duration
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:       params.UserRepo,
		session:     params.SessionManager,
		cache:       params.IdentityCache,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		cacheTTL:    params.IdentityConfig.CacheTTL(),
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	var displayName *string
	if req.DisplayName != nil {
		if trimmed := strings.TrimSpace(*req.DisplayName); trimmed != "" {
			displayName = &trimmed
		}
	}
	customer := enums.SystemRoleCustomer
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		SystemRole:   &customer,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.signed_up")
	return s.issue(ctx, user, s.now())
}

func (s *service) SignIn(ctx context.Context, req Credentials) (*Session, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, now)
}

// AdminSignIn succeeds only for active accounts whose system role is admin.
func (s *service) AdminSignIn(ctx context.Context, req Credentials) (*Session, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if users.RoleOf(user) != enums.SystemRoleAdmin {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "auth.admin_sign_in_denied")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user, now)
}

func (s *service) SignOut(ctx context.Context, accessID string) error {
	accessID = strings.TrimSpace(accessID)
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	s.forgetIdentity(ctx, accessID)
	return nil
}

// Current serves the identity from the cache, falling back to the users
// table on a miss or a cache failure.
func (s *service) Current(ctx context.Context, accessID string, userID uuid.UUID) (*Identity, error) {
	if cached, ok := s.cachedIdentity(ctx, accessID); ok && cached.UID == userID.String() {
		return cached, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}
	identity := identityOf(user)
	s.rememberIdentity(ctx, accessID, identity)
	return identity, nil
}

// Refresh rotates the session behind an access token. The old access id
// stops working immediately.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*Session, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	newAccessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}
	s.forgetIdentity(ctx, claims.ID)

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil && !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if err != nil || !user.IsActive {
		_ = s.session.Revoke(ctx, newAccessID)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	accessToken, err := s.mint(user, newAccessID, s.now())
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: users.FromModel(user)}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}

func (s *service) issue(ctx context.Context, user *models.User, now time.Time) (*Session, error) {
	accessID := session.NewAccessID()
	accessToken, err := s.mint(user, accessID, now)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	s.rememberIdentity(ctx, accessID, identityOf(user))
	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: users.FromModel(user)}, nil
}

func (s *service) mint(user *models.User, accessID string, now time.Time) (string, error) {
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   users.RoleOf(user),
		JTI:    accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

func identityOf(user *models.User) *Identity {
	return &Identity{UID: user.ID.String(), Email: user.Email, Role: users.RoleOf(user)}
}

func identityKey(accessID string) string {
	return identityKeyPrefix + accessID
}

func (s *service) cachedIdentity(ctx context.Context, accessID string) (*Identity, bool) {
	if s.cache == nil || strings.TrimSpace(accessID) == "" {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, identityKey(accessID))
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.identity_cache_read_failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var identity Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return nil, false
	}
	return &identity, true
}

// rememberIdentity is best effort; a failed write only costs a lookup later.
func (s *service) rememberIdentity(ctx context.Context, accessID string, identity *Identity) {
	if s.cache == nil || strings.TrimSpace(accessID) == "" {
		return
	}
	payload, err := json.Marshal(identity)
	if err != nil {
		return
	}
	key := identityKey(accessID)
	if ttlStore, ok := s.cache.(kv.TTLStore); ok && s.cacheTTL > 0 {
		err = ttlStore.SetWithTTL(ctx, key, string(payload), s.cacheTTL)
	} else {
		err = s.cache.Set(ctx, key, string(payload))
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.identity_cache_write_failed")
	}
}

func (s *service) forgetIdentity(ctx context.Context, accessID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remove(ctx, identityKey(accessID)); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.identity_cache_remove_failed")
	}
}
