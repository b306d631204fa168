package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer = "chat-api"
	defaultTTL    = 7 * 24 * time.Hour
)

var defaultLeeway = 30 * time.Second

// Claims are the verified contents of a session token.
type Claims struct {
	UserID  string
	Email   string
	TokenID string
	Expires time.Time
}

// Options configures claim validation behavior.
type Options struct {
	Issuer string
	TTL    time.Duration
	Leeway time.Duration
}

// Issuer creates and validates HS256 session tokens.
// Revocation state lives in the attached Revoker so logout and ban
// take effect before the token expires.
type Issuer struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	leeway  time.Duration
	revoker Revoker
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// NewIssuer builds a token issuer from a shared secret.
func NewIssuer(secret string, revoker Revoker, opts Options) (*Issuer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("token secret required")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Issuer == "" {
		opts.Issuer = defaultIssuer
	}
	if opts.Leeway <= 0 {
		opts.Leeway = defaultLeeway
	}
	return &Issuer{
		secret:  []byte(secret),
		ttl:     opts.TTL,
		issuer:  opts.Issuer,
		leeway:  opts.Leeway,
		revoker: revoker,
	}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// New signs a token for the user, returning the token and its jti.
func (i *Issuer) New(userID, email string) (string, string, error) {
	now := time.Now().UTC()
	jti := randomHexID(12)
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// Verify parses the token, checks signature and expiry, and consults
// the revoker. Returns the verified claims.
func (i *Issuer) Verify(token string) (Claims, error) {
	claims, err := i.parse(token)
	if err != nil {
		return Claims{}, err
	}
	if i.revoker != nil {
		revoked, err := i.revoker.IsRevoked(claims.ID)
		if err != nil {
			return Claims{}, err
		}
		if revoked {
			return Claims{}, errors.New("token revoked")
		}
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, errors.New("token subject missing")
	}
	out := Claims{
		UserID:  claims.Subject,
		Email:   claims.Email,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		out.Expires = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}

// Revoke marks the token invalid until it would have expired.
func (i *Issuer) Revoke(token string) error {
	if i.revoker == nil {
		return nil
	}
	claims, err := i.parse(token)
	if err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return i.revoker.Revoke(claims.ID, ttl)
}

// RevokeID marks a token id invalid for the given remaining lifetime.
func (i *Issuer) RevokeID(jti string, ttl time.Duration) error {
	if i.revoker == nil || strings.TrimSpace(jti) == "" {
		return nil
	}
	return i.revoker.Revoke(jti, ttl)
}

func (i *Issuer) parse(token string) (sessionClaims, error) {
	claims := sessionClaims{}
	token = strings.TrimSpace(token)
	if token == "" {
		return claims, errors.New("invalid token format")
	}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(i.leeway),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return claims, err
	}
	if strings.TrimSpace(claims.ID) == "" {
		return claims, errors.New("token jti missing")
	}
	return claims, nil
}

func randomHexID(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
