package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mamipapa/store-backend/internal/models"
	"github.com/mamipapa/store-backend/internal/repository"
	"github.com/mamipapa/store-backend/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// Service handles account registration and login.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewService creates an auth service
func NewService(users repository.UserRepository, logger *slog.Logger) *Service {
	return &Service{users: users, logger: logger}
}

// SignupInput is the input for creating an account.
type SignupInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Signup registers a new customer account.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	if err := utils.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     input.Name,
		Email:    email,
		Phone:    input.Phone,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, utils.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.TokenPair{}, ErrInvalidCredentials
		}
		return nil, utils.TokenPair{}, err
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, utils.TokenPair{}, ErrInvalidCredentials
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, utils.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// account is re-read so revoked users and role changes take effect on
// the next rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, utils.TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, utils.TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.TokenPair{}, ErrInvalidCredentials
		}
		return nil, utils.TokenPair{}, err
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, utils.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return user, tokens, nil
}
