// Package auth issues and verifies session tokens and wraps them in the
// small "current user / sign out" surface the rest of the service uses.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"daylist/internal/apperr"
	"daylist/internal/model"
	"daylist/internal/repository"
)

// Claims is the JWT payload for a session token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Service authenticates credentials and resolves bearer tokens to users.
type Service struct {
	users  *repository.UserRepository
	secret []byte
	ttl    time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

func NewService(users *repository.UserRepository, secret string, ttl time.Duration) *Service {
	return &Service{
		users:   users,
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: make(map[string]time.Time),
	}
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email", apperr.ErrValidation)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login verifies credentials and issues a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.ErrNotAuthenticated
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", apperr.ErrNotAuthenticated
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UserFromToken resolves a bearer token to its user. Any parse, expiry or
// revocation problem reads as ErrNotAuthenticated.
func (s *Service) UserFromToken(ctx context.Context, raw string) (*model.User, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return nil, apperr.ErrNotAuthenticated
	}

	s.mu.Lock()
	_, dead := s.revoked[claims.ID]
	s.mu.Unlock()
	if dead {
		return nil, apperr.ErrNotAuthenticated
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SignOut revokes the token. A token that is already expired, malformed or
// revoked counts as signed out, so SignOut never fails for a dead session.
func (s *Service) SignOut(raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return nil
	}

	expiry := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.revoked[claims.ID] = expiry
	s.pruneLocked(time.Now())
	s.mu.Unlock()
	return nil
}

func (s *Service) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *Service) parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// pruneLocked drops revocation entries for tokens that have expired anyway.
func (s *Service) pruneLocked(now time.Time) {
	for jti, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, jti)
		}
	}
}
