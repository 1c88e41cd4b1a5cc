package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ministry-admin-backend/internal/clock"
	"ministry-admin-backend/internal/domain"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess TokenType = "access"
)

const (
	tokenIssuer   = "ministry-admin"
	tokenAudience = "admin-panel"
)

// AccountClaims are the session claims issued to an administrator.
type AccountClaims struct {
	AccountID string             `json:"account_id"`
	Email     string             `json:"email,omitempty"`
	Role      domain.AccountRole `json:"role"`
	Type      TokenType          `json:"type"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateAccessToken(account *domain.AdminAccount) (string, error)
	ValidateToken(tokenString string) (*AccountClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if clk == nil {
		clk = clock.System()
	}
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
	}
}

func (m *tokenManager) GenerateAccessToken(account *domain.AdminAccount) (string, error) {
	now := m.clock.Now()
	claims := AccountClaims{
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
		Type:      TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrWrongTokenType
	}
	if claims.AccountID == "" {
		claims.AccountID = claims.Subject
	}
	return claims, nil
}
