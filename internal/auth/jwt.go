package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the identity fields this service consumes from tokens
// minted by the external identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Resolver validates bearer tokens and extracts the caller identity.
type Resolver struct {
	secret []byte
	issuer string
}

// NewResolver builds a resolver for HS256 tokens signed with secret.
func NewResolver(secret []byte, issuer string) *Resolver {
	return &Resolver{secret: secret, issuer: issuer}
}

// Resolve parses and validates a token string, returning the identity it
// carries. Unknown roles degrade to RoleUser.
func (r *Resolver) Resolve(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	role := RoleUser
	if claims.Role == string(RoleAdmin) {
		role = RoleAdmin
	}

	return &Identity{UserID: claims.UserID, Role: role}, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
