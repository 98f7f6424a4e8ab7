package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradingjournal/internal/auth"
	"tradingjournal/internal/domain"
	"tradingjournal/internal/ports"
)

// UserService handles registration and login. Token issuance and password
// hashing are delegated to the auth collaborators.
type UserService struct {
	repo   ports.UserRepository
	hasher auth.PasswordHasher
	jwt    auth.JWT
	logger ports.Logger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(repo ports.UserRepository, hasher auth.PasswordHasher, jwt auth.JWT, logger ports.Logger) (*UserService, error) {
	if repo == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for UserService")
	}
	if len(jwt.Secret) == 0 {
		return nil, fmt.Errorf("JWT secret must not be empty")
	}
	return &UserService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Signup registers a new account and returns a signed access token.
// A taken email fails with ErrDuplicateEntry.
func (s *UserService) Signup(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("name must not be empty: %w", ports.ErrInvalidInput)
	}

	existing, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("email %s already registered: %w", email, ports.ErrDuplicateEntry)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return "", err
	}

	now := s.now()
	u := &domain.User{
		Email:          email,
		Name:           strings.TrimSpace(name),
		HashedPassword: hashed,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.repo.CreateUser(ctx, u); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "User registered", map[string]interface{}{"userID": u.ID, "email": u.Email})

	token, _, err := s.jwt.Sign(u.Email)
	return token, err
}

// Login verifies the credentials and returns a signed access token.
// Unknown email, wrong password and a disabled account all fail identically
// with ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil || !u.IsActive || !s.hasher.Verify(u.HashedPassword, password) {
		return "", fmt.Errorf("invalid credentials: %w", ports.ErrUnauthorized)
	}

	token, _, err := s.jwt.Sign(u.Email)
	return token, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required: %w", ports.ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("password must not be empty: %w", ports.ErrInvalidInput)
	}
	if len(password) > auth.MaxPasswordLength {
		return fmt.Errorf("password must be %d characters or fewer: %w", auth.MaxPasswordLength, ports.ErrInvalidInput)
	}
	return nil
}
