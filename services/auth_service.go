package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
	"github.com/adrijadey5/Smart-Home-Inventory/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken is returned for expired or malformed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// AuthService is the identity provider: it establishes a stable user id for
// a session, anonymously or via email/password. The inventory surface is
// inert until a user id exists.
type AuthService struct {
	users  repository.UserRepository
	secret []byte
	logger *zap.Logger
}

// NewAuthService wires the identity provider.
func NewAuthService(users repository.UserRepository, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, secret: []byte(secret), logger: logger}
}

// SignInAnonymously creates a throwaway account and issues a token for it.
func (s *AuthService) SignInAnonymously(ctx context.Context) (*models.AuthResponse, error) {
	user := &models.User{
		ID:        uuid.New().String(),
		Anonymous: true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create anonymous user: %w", err)
	}

	s.logger.Info("anonymous user created", zap.String("user_id", user.ID))
	return s.issueToken(user.ID)
}

// Register creates an email/password account and signs it in.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return s.issueToken(user.ID)
}

// Login verifies email/password credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user.ID)
}

// VerifyToken validates a bearer token and returns the user id it carries.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) issueToken(userID string) (*models.AuthResponse, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.AuthResponse{Token: signed, UserID: userID}, nil
}
