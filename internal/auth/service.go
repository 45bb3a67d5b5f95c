package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"running-rooms-backend/internal/model"
	"running-rooms-backend/internal/store"
)

// ErrInvalidCredentials is returned when no user matches the submitted
// username and password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service implements registration and login for users and admins.
type Service struct {
	store       store.Store
	tokens      *Tokens
	hasher      PasswordHasher
	verifyAdmin bool
}

// NewService creates an auth service. When verifyAdmin is false, admin login
// accepts any credentials.
func NewService(s store.Store, tokens *Tokens, hasher PasswordHasher, verifyAdmin bool) *Service {
	if !verifyAdmin {
		log.Println("Warning: admin login does not verify credentials (auth.verify_admin_credentials is false)")
	}
	return &Service{
		store:       s,
		tokens:      tokens,
		hasher:      hasher,
		verifyAdmin: verifyAdmin,
	}
}

// Tokens exposes the token issuer for the access-control middleware.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// Register creates a user account.
func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{Username: username, Password: stored}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a session token for the user.
func (s *Service) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.store.FindUser(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueUser(*user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// RegisterAdmin creates an admin account.
func (s *Service) RegisterAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	stored, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &model.Admin{Username: username, Password: stored}
	if err := s.store.CreateAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// AdminLogin issues an admin token.
func (s *Service) AdminLogin(ctx context.Context, username, password string) (string, error) {
	if s.verifyAdmin {
		admin, err := s.store.FindAdmin(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		if err != nil {
			return "", err
		}
		if !s.hasher.Verify(admin.Password, password) {
			return "", ErrInvalidCredentials
		}
	}
	return s.tokens.IssueAdmin(username)
}

// ListUsers returns all users for the admin view.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.store.ListUsers(ctx)
}
