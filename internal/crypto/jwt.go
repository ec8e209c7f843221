package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/niangamadou888/bookish-beacon-blog/internal/model"
)

const (
	tokenIssuer   = "bookish-beacon"
	tokenAudience = "bookish-beacon-api"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenUser is the identity payload nested under the "user" claim.
type TokenUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Claims represents the JWT claims for blog authentication.
type Claims struct {
	jwt.RegisteredClaims
	User TokenUser `json:"user"`
}

// TokenService issues and verifies HS256 identity tokens. It holds no per-token state.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with secret and issuing tokens valid for expiry.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Generate creates a signed token for the given identity.
func (s *TokenService) Generate(id model.Identity) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		User: TokenUser{ID: id.ID, Name: id.Name},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token string. A token is valid strictly before its
// expiry instant; there is no leeway.
func (s *TokenService) Validate(tokenString string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.User.ID == "" {
		return model.Identity{}, ErrInvalidToken
	}

	return model.Identity{ID: claims.User.ID, Name: claims.User.Name}, nil
}
