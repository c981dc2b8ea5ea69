package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	tokenIssuer   = "recipe-server"
	tokenAudience = "recipe-client"
)

// ErrInvalidToken covers malformed, tampered, foreign and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the contents of an access token. They are encrypted (v4.local),
// so clients treat the token as opaque.
type Claims struct {
	UserID     int64     `json:"user_id"`
	TokenID    string    `json:"jti"`
	Issuer     string    `json:"iss"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	IssuedAt   time.Time `json:"iat"`
}

// TokenService seals and opens PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, lifetime time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{key: symmetric, lifetime: lifetime, now: time.Now}, nil
}

// Lifetime returns how long issued tokens stay valid.
func (s *TokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Seal issues a token for userID whose jti is tokenID. It returns the token
// string and its expiry so the caller can persist a matching record.
func (s *TokenService) Seal(userID int64, tokenID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.lifetime)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expiresAt)
	token.SetJti(tokenID)
	if err := token.Set("user_id", userID); err != nil {
		return "", time.Time{}, fmt.Errorf("set user claim: %w", err)
	}

	return token.V4Encrypt(s.key, nil), expiresAt, nil
}

// Open decrypts and checks a token, returning its claims.
func (s *TokenService) Open(tokenString string) (*Claims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrInvalidToken, err)
	}
	if claims.TokenID == "" || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}

	return &claims, nil
}
