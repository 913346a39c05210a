// Package auth implements password hashing, JWT issuance/validation and the
// request principal carried through context.Context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind discriminates access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the token payload: the standard registered claims plus the
// token kind.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenKind `json:"token_type"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

var validMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// GenerateToken signs a token of the given kind for subject with HS256.
func GenerateToken(subject string, kind TokenKind, secretKey []byte, issuedAt time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validity)),
		},
		TokenType: kind,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns its
// claims. Expired tokens yield common.ErrTokenExpired, every other failure
// wraps common.ErrInvalidToken. now may be nil for the wall clock.
func ParseToken(tokenString string, secretKey []byte, now func() time.Time) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(validMethods),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Codec issues and verifies tokens with one process-wide secret.
// It is immutable and safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec returns a Codec using the wall clock.
func NewCodec(secret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock returns a copy of c reading time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Codec) IssueAccess(subject string) (string, error) {
	return GenerateToken(subject, KindAccess, c.secret, c.now(), c.accessTTL)
}

func (c *Codec) IssueRefresh(subject string) (string, error) {
	return GenerateToken(subject, KindRefresh, c.secret, c.now(), c.refreshTTL)
}

// IssuePair mints a fresh access and refresh token for subject.
func (c *Codec) IssuePair(subject string) (*TokenPair, error) {
	access, err := c.IssueAccess(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := c.IssueRefresh(subject)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Parse returns the verified claims of token.
func (c *Codec) Parse(token string) (*Claims, error) {
	return ParseToken(token, c.secret, c.now)
}

// Verify reports whether token carries a valid signature and is not expired.
func (c *Codec) Verify(token string) bool {
	_, err := c.Parse(token)
	return err == nil
}

// KindOf returns the kind of a verified token.
func (c *Codec) KindOf(token string) (TokenKind, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.TokenType, nil
}

// SubjectOf returns the subject of a verified token.
func (c *Codec) SubjectOf(token string) (string, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
