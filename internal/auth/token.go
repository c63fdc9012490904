package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or type checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by a token.
type Claims struct {
	UserID             uint
	Role               string
	MustChangePassword bool
	Type               string
	ExpiresAt          time.Time
}

// SignedToken is a serialized token and its expiry.
type SignedToken struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 access and refresh tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer constructs a token issuer.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssueAccess signs a short-lived access token.
func (i *Issuer) IssueAccess(userID uint, role string, mustChangePassword bool) (SignedToken, error) {
	return i.sign(i.accessSecret, i.accessTTL, jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"role": role,
		"mcp":  mustChangePassword,
		"typ":  TokenTypeAccess,
	})
}

// IssueRefresh signs a long-lived refresh token.
func (i *Issuer) IssueRefresh(userID uint) (SignedToken, error) {
	return i.sign(i.refreshSecret, i.refreshTTL, jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"typ": TokenTypeRefresh,
	})
}

// ParseAccess verifies an access token.
func (i *Issuer) ParseAccess(raw string) (Claims, error) {
	return ParseToken(raw, i.accessSecret, TokenTypeAccess)
}

// ParseRefresh verifies a refresh token.
func (i *Issuer) ParseRefresh(raw string) (Claims, error) {
	return ParseToken(raw, i.refreshSecret, TokenTypeRefresh)
}

func (i *Issuer) sign(secret []byte, ttl time.Duration, claims jwt.MapClaims) (SignedToken, error) {
	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(ttl)
	claims["iat"] = issuedAt.Unix()
	claims["exp"] = expiresAt.Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken verifies an HS256 token and, when expectedType is set, its "typ" claim.
func ParseToken(raw string, secret []byte, expectedType string) (Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	tokenType, _ := mapClaims["typ"].(string)
	if expectedType != "" && tokenType != expectedType {
		return Claims{}, ErrInvalidToken
	}

	userID, err := normalizeUserID(mapClaims["sub"])
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{UserID: userID, Type: tokenType}
	claims.Role, _ = mapClaims["role"].(string)
	claims.MustChangePassword, _ = mapClaims["mcp"].(bool)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
