package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/KevinHdezVaz/Lumorah-back/internal/models"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrNotAdmin           = errors.New("admin privileges required")
)

// AccessToken is a stored bearer credential. Only its SHA-256 hash is kept;
// the plaintext is shown to the client once at issue time.
type AccessToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash  string    `gorm:"size:64;uniqueIndex;not null"`
	Name       string    `gorm:"size:100"`
	ExpiresAt  time.Time `gorm:"not null"`
	RevokedAt  *time.Time
	LastUsedAt *time.Time
	CreatedAt  time.Time
	IPAddress  string `gorm:"size:50"`
	UserAgent  string `gorm:"size:500"`
}

func (t *AccessToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AdminClaims are the JWT claims carried by the admin session cookie.
type AdminClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// AuthService handles credential lifecycle for both API bearer tokens and
// the admin cookie session.
type AuthService struct {
	db                   *gorm.DB
	jwtSecret            []byte
	tokenDuration        time.Duration
	adminSessionDuration time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:                   db,
		jwtSecret:            []byte(jwtSecret),
		tokenDuration:        30 * 24 * time.Hour,
		adminSessionDuration: 12 * time.Hour,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Language string `json:"language"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new local account and mints a bearer token.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Language:     normalizeLanguage(req.Language),
		Provider:     models.ProviderLocal,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// A concurrent registration can slip past the existence check and
		// hit the unique index on email instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	token, err := s.issueToken(ctx, user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates a local account. A missing user and a wrong password
// produce the same error.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	s.db.WithContext(ctx).Model(&user).Update("last_login_at", now)

	token, err := s.issueToken(ctx, &user, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{User: &user, Token: token}, nil
}

// Authenticate resolves a presented bearer token to its user. Revoked and
// expired tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	var stored AccessToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hashToken(token)).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if stored.RevokedAt != nil {
		return nil, ErrTokenRevoked
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	s.db.WithContext(ctx).Model(&stored).Update("last_used_at", now)

	user.PasswordHash = ""
	return &user, nil
}

// Logout revokes the presented bearer token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&AccessToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashToken(token)).
		Update("revoked_at", now)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvalidToken
	}
	return nil
}

// UpdateName changes the stored display name.
func (s *AuthService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("name", name).Error; err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	return &user, nil
}

// AdminLogin authenticates an admin account and mints a signed session
// token for the cookie.
func (s *AuthService) AdminLogin(ctx context.Context, req *LoginRequest) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsAdmin {
		return "", nil, ErrNotAdmin
	}

	now := time.Now()
	claims := AdminClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.adminSessionDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	user.PasswordHash = ""
	return signed, &user, nil
}

// ValidateAdminSession checks the admin cookie token.
func (s *AuthService) ValidateAdminSession(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CleanupExpiredTokens removes expired bearer tokens.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&AccessToken{})
	return result.RowsAffected, result.Error
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User, ipAddress, userAgent string) (string, error) {
	plaintext, err := generateRandomToken(40)
	if err != nil {
		return "", err
	}

	stored := &AccessToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(plaintext),
		Name:      "auth_token",
		ExpiresAt: time.Now().Add(s.tokenDuration),
		CreatedAt: time.Now(),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := s.db.WithContext(ctx).Create(stored).Error; err != nil {
		return "", err
	}

	return plaintext, nil
}

func normalizeLanguage(code string) string {
	switch code {
	case "en", "fr", "pt":
		return code
	default:
		return "es"
	}
}

// hashToken creates a SHA-256 hash of a token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a cryptographically secure random token
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
