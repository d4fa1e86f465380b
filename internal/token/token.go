// Package token issues and verifies the JWT pairs used by the API.
package token

import (
	"fmt"
	"strconv"
	"time"

	"storefront/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims is the payload carried by both token types.
type Claims struct {
	Role      model.UserRole `json:"role"`
	Email     string         `json:"email"`
	TokenType string         `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the user id.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim %q: %w", c.Subject, err)
	}
	return id, nil
}

// Pair is an issued access and refresh token.
type Pair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64
}

// Provider signs and verifies token pairs with a shared HMAC secret.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

// NewProvider creates a token provider.
func NewProvider(secret string, accessTTL, refreshTTL time.Duration, logger zerolog.Logger) *Provider {
	return &Provider{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With().Str("component", "token-provider").Logger(),
	}
}

// Issue creates a fresh access/refresh pair for the user.
func (p *Provider) Issue(user *model.User) (*Pair, error) {
	access, err := p.sign(user, typeAccess, p.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := p.sign(user, typeRefresh, p.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(p.accessTTL.Seconds()),
	}, nil
}

// VerifyAccess parses an access token and returns its claims.
func (p *Provider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verify(tokenString, typeAccess)
}

// VerifyRefresh parses a refresh token and returns its claims.
func (p *Provider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verify(tokenString, typeRefresh)
}

func (p *Provider) sign(user *model.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:      user.Role,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) verify(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenType != expectedType {
		p.logger.Debug().
			Str("expected", expectedType).
			Str("got", claims.TokenType).
			Msg("token type mismatch")
		return nil, fmt.Errorf("invalid token type")
	}

	return claims, nil
}
