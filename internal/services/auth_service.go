package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/denuncias-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	TokenTypeAccess = "access"
	TokenTypeReset  = "reset"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrNationalIDTaken    = errors.New("national id already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrInactiveUser       = errors.New("user account is disabled")
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates a citizen account. Elevated roles are granted only
// through SetRole.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Unscoped().Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Unscoped().Where("national_id = ?", req.NationalID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check national id: %w", err)
	}
	if count > 0 {
		return nil, ErrNationalIDTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:      email,
		Password:   string(hash),
		Name:       req.Name,
		Surname:    req.Surname,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Role:       models.RoleCitizen,
		IsActive:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID.String())
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	// Only one caller can claim a token; concurrent refreshes lose here.
	claim := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if claim.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", claim.Error)
	}
	if claim.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// ForgotPassword issues a short-lived reset token. There is no mail delivery;
// the token is returned to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}

	expiresAt := time.Now().Add(s.cfg.JWTResetExpiry)
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"typ": TokenTypeReset,
		"ver": passwordVersion(&user),
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign reset token: %w", err)
	}

	slog.Info("password reset requested", "user_id", user.ID.String())
	return &dto.ForgotPasswordResponse{ResetToken: token, ExpiresAt: expiresAt}, nil
}

// ResetPassword consumes a reset token. The token stops working once the
// password it was issued against changes.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	claims, err := s.parseToken(req.ResetToken, TokenTypeReset)
	if err != nil {
		return ErrInvalidToken
	}

	userID, err := uuid.Parse(fmt.Sprint(claims["sub"]))
	if err != nil {
		return ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if claims["ver"] != passwordVersion(&user) {
		return ErrInvalidToken
	}

	return s.setPassword(ctx, &user, req.NewPassword)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	return s.setPassword(ctx, &user, req.NewPassword)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	resp := dto.NewUserResponse(&user)
	return &resp, nil
}

func (s *AuthService) SetRole(ctx context.Context, userID uuid.UUID, role models.Role) (*dto.UserResponse, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", dto.ErrInvalidInput, role)
	}
	return s.updateUser(ctx, userID, map[string]interface{}{"role": role})
}

// SetActive enables or disables an account. Disabling revokes its refresh tokens.
func (s *AuthService) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*dto.UserResponse, error) {
	resp, err := s.updateUser(ctx, userID, map[string]interface{}{"is_active": active})
	if err != nil {
		return nil, err
	}
	if !active {
		s.revokeAll(ctx, userID)
	}
	return resp, nil
}

// Authenticate resolves the subject of a verified access token to the user
// behind it.
func (s *AuthService) Authenticate(ctx context.Context, claims jwt.MapClaims) (*models.User, error) {
	if claims["typ"] != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(fmt.Sprint(claims["sub"]))
	if err != nil {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return &user, nil
}

func (s *AuthService) updateUser(ctx context.Context, userID uuid.UUID, fields map[string]interface{}) (*dto.UserResponse, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	if err := db.Model(&user).Updates(fields).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	slog.Info("user updated", "user_id", userID.String(), "action", "admin_update")
	resp := dto.NewUserResponse(&user)
	return &resp, nil
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	s.revokeAll(ctx, user.ID)
	slog.Info("password changed", "user_id", user.ID.String())
	return nil
}

func (s *AuthService) revokeAll(ctx context.Context, userID uuid.UUID) {
	if err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error; err != nil {
		slog.Error("failed to revoke refresh tokens", "user_id", userID.String(), "error", err)
	}
}

func (s *AuthService) parseToken(raw, typ string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"typ":   TokenTypeAccess,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func passwordVersion(user *models.User) string {
	return hashToken(user.Password)[:16]
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
