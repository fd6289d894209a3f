package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/types"
)

// AuthService handles registration, login and session tokens. Admin logins
// authenticate against the configured credential pair and never touch the
// users table.
type AuthService struct {
	db            *gorm.DB
	sessions      SessionStore
	activity      *ActivityService
	log           *logrus.Logger
	jwtSecret     string
	sessionTTL    time.Duration
	adminEmail    string
	adminPassword string
}

func NewAuthService(db *gorm.DB, sessions SessionStore, activity *ActivityService, log *logrus.Logger, jwtSecret, adminEmail, adminPassword string, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		db:            db,
		sessions:      sessions,
		activity:      activity,
		log:           log,
		jwtSecret:     jwtSecret,
		sessionTTL:    sessionTTL,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

// Register creates an unverified account. Login is refused until an admin
// verifies it.
func (s *AuthService) Register(ctx context.Context, name, email, password, role, location string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if role != models.RoleDonor && role != models.RoleReceiver {
		return nil, fmt.Errorf("%w: role must be donor or receiver", ErrValidation)
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Location:     location,
		Verified:     false,
		Points:       0,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Login authenticates a user or the admin credential pair and issues a
// session token.
func (s *AuthService) Login(ctx context.Context, email, password, role, ip, userAgent string) (string, types.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)

	if role == models.RoleAdmin {
		if s.adminEmail == "" || !strings.EqualFold(email, s.adminEmail) || password != s.adminPassword {
			return "", types.Identity{}, ErrInvalidCredentials
		}
		identity := types.AdminIdentity()
		token, err := s.issueSession(ctx, identity)
		return token, identity, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", types.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", types.Identity{}, ErrInvalidCredentials
	}
	if !user.Verified {
		return "", types.Identity{}, ErrNotVerified
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_login_ip":   ip,
		"last_login_date": now,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		s.log.WithError(err).Warn("failed to update last login fields")
	}
	s.appendLoginRecord(ctx, user.ID, ip, userAgent, now)

	identity := types.Identity{UserID: user.ID, Role: user.Role, Name: user.Name}
	token, err := s.issueSession(ctx, identity)
	if err != nil {
		return "", types.Identity{}, err
	}

	s.activity.Record(identity, models.ActivityLogin,
		fmt.Sprintf("User logged in from IP: %s", ip),
		models.ActivityMetadata{}, ip, userAgent)

	return token, identity, nil
}

// appendLoginRecord adds the newest history entry and evicts anything
// beyond the cap.
func (s *AuthService) appendLoginRecord(ctx context.Context, userID uuid.UUID, ip, userAgent string, at time.Time) {
	record := models.LoginRecord{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		LoginTime: at,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.log.WithError(err).Warn("failed to append login record")
		return
	}

	var keep []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.LoginRecord{}).
		Where("user_id = ?", userID).
		Order("login_time DESC").
		Limit(models.LoginHistoryLimit).
		Pluck("id", &keep).Error
	if err != nil || len(keep) < models.LoginHistoryLimit {
		return
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN ?", userID, keep).
		Delete(&models.LoginRecord{}).Error; err != nil {
		s.log.WithError(err).Warn("failed to trim login history")
	}
}

// Logout revokes the session behind a token.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CurrentUser loads the account behind an identity. Admin sessions have no
// user row.
func (s *AuthService) CurrentUser(ctx context.Context, identity types.Identity) (*models.User, error) {
	if identity.IsAdmin() {
		return nil, fmt.Errorf("%w: admin has no user record", ErrNotFound)
	}
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", identity.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) issueSession(ctx context.Context, identity types.Identity) (string, error) {
	sessionID := uuid.NewString()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
		},
		UserID: identity.UserID,
		Role:   identity.Role,
		Name:   identity.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.sessions.Put(ctx, sessionID, identity, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, expiry and that the server-side session
// still exists.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*types.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
		return nil, errors.New("session expired or revoked")
	}
	return claims, nil
}
