package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ministry-admin-backend/internal/domain"
	"ministry-admin-backend/internal/logger"
	"ministry-admin-backend/internal/repository"
	"ministry-admin-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type authService struct {
	accounts repository.AccountRepository
	hasher   security.PasswordHasher
	tokens   security.TokenManager
}

func NewAuthService(accounts repository.AccountRepository, hasher security.PasswordHasher, tokens security.TokenManager) AuthService {
	return &authService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.AdminAccount, string, error) {
	logger.EnterMethod("authService.Login", "email", email)

	in := credentials{Email: domain.NormalizeEmail(email), Password: password}
	if err := validateStruct(in); err != nil {
		logger.ExitMethodWithError("authService.Login", err)
		return nil, "", err
	}

	account, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Login failed: unknown email", "email", in.Email)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load account: %w", err)
	}
	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		logger.Warn("Login failed: password mismatch", "accountID", account.ID)
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueSession(ctx, account)
	if err != nil {
		return nil, "", err
	}
	logger.ExitMethod("authService.Login", "accountID", account.ID)
	return account, token, nil
}

func (s *authService) IssueSession(_ context.Context, account *domain.AdminAccount) (string, error) {
	token, err := s.tokens.GenerateAccessToken(account)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return token, nil
}

type bootstrapInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Bootstrap creates the first owner account. It refuses once any account exists.
func (s *authService) Bootstrap(ctx context.Context, name, email, password string) (*domain.AdminAccount, error) {
	in := bootstrapInput{Name: strings.TrimSpace(name), Email: domain.NormalizeEmail(email), Password: password}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	n, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	if n > 0 {
		return nil, ErrBootstrapDone
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	account := &domain.AdminAccount{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.AccountRoleOwner,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create owner account: %w", err)
	}
	logger.Info("Owner account bootstrapped", "accountID", account.ID, "email", account.Email)
	return account, nil
}
