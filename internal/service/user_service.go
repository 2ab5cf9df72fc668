package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"messagely/internal/auth"
	"messagely/internal/domain"
	"messagely/internal/repository"
)

// TokenIssuer signs a token for an authenticated username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// RegisterInput carries the fields accepted by Register.
type RegisterInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthService describes the registration and login flow.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (domain.Profile, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	users     repository.UserRepository
	hasher    auth.PasswordHasher
	tokens    TokenIssuer
	dummyHash string
	now       func() time.Time
}

// NewAuthService wires the service. It hashes a throwaway password once so that
// logins for unknown users cost the same as logins with a wrong password.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer) (AuthService, error) {
	dummy, err := hasher.Hash("messagely-unknown-user")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (domain.Profile, error) {
	if in.Username == "" || in.Password == "" {
		return domain.Profile{}, domain.ErrValidation
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return domain.Profile{}, domain.Validation("Password too long")
		}
		return domain.Profile{}, domain.Internal("hash password", err)
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		JoinAt:       s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return domain.Profile{}, domain.ErrDuplicateUsername
		}
		return domain.Profile{}, domain.Internal("create user", err)
	}

	return domain.Profile{FirstName: user.FirstName, LastName: user.LastName}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrValidation
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Check(password, s.dummyHash)
			return "", domain.ErrInvalidCredentials
		}
		return "", domain.Internal("lookup user", err)
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.Username, s.now().UTC()); err != nil {
		return "", domain.Internal("update last login", err)
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", domain.Internal("issue token", err)
	}
	return token, nil
}
