package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error)
}

var ErrInvalidAccount = errors.New("invalid account")

type Service struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenManager
}

func NewService(users UserStore, hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Login checks the credentials and issues a session token. Unknown usernames and
// wrong passwords both yield database.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", nil, database.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, database.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// Register creates an operator account with a hashed password.
func (s *Service) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidAccount)
	}
	if role == "" {
		role = models.RoleCashier
	}
	if role != models.RoleAdmin && role != models.RoleCashier {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidAccount, role)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return s.users.CreateUser(ctx, username, hash, role)
}

func (s *Service) Validate(token string) (*Claims, error) {
	return s.tokens.Validate(token)
}
