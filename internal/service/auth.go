package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/niangamadou888/bookish-beacon-blog/internal/crypto"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
	"github.com/niangamadou888/bookish-beacon-blog/internal/repository"
)

// AuthService handles registration, login and identity lookup.
type AuthService struct {
	users    UserStore
	tokens   *crypto.TokenService
	hasher   *crypto.PasswordHasher
	validate *validator.Validate
	now      func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenService, hasher *crypto.PasswordHasher) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.AuthResponse{}, validationError(err)
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return model.AuthResponse{}, ErrUserExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return model.AuthResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrUserExists
		}
		return model.AuthResponse{}, fmt.Errorf("create user: %w", err)
	}

	return s.authResponse(user)
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidEmail
		}
		return model.AuthResponse{}, fmt.Errorf("lookup user: %w", err)
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidPassword
	}

	return s.authResponse(user)
}

// Me returns the stored account behind a verified identity.
func (s *AuthService) Me(ctx context.Context, id model.Identity) (model.UserResponse, error) {
	if id.ID == "" {
		return model.UserResponse{}, ErrUnauthenticated
	}

	user, err := s.users.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.UserResponse{}, ErrUserNotFound
		}
		return model.UserResponse{}, err
	}

	return user.Response(), nil
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Generate(user.Identity())
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return model.AuthResponse{
		Token: token,
		User:  user.Response(),
	}, nil
}
