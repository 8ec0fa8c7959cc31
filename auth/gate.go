package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

var (
	// ErrMissingHeader's text is the contractual 401 body for requests that
	// carry no Authorization header at all.
	ErrMissingHeader = errors.New("Missing Authorization Header")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// RevocationList remembers revoked token ids until they would have expired
// anyway.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Gate verifies bearer credentials. Authorization is binary: a caller is
// either a signed-in user or anonymous, there are no roles.
type Gate struct {
	secret  []byte
	revoked RevocationList // optional
}

func NewGate(secret []byte, revoked RevocationList) *Gate {
	return &Gate{secret: secret, revoked: revoked}
}

// Authorize verifies the Authorization header and returns the claims of the
// signed-in user. A missing header fails before any credential check.
func (g *Gate) Authorize(ctx context.Context, authorizationHeader string) (*Claims, error) {
	if authorizationHeader == "" {
		return nil, ErrMissingHeader
	}

	parts := strings.Fields(authorizationHeader)
	token := parts[len(parts)-1]

	claims, err := ParseToken(token, g.secret)
	if err != nil {
		return nil, err
	}

	if g.revoked != nil && claims.ID != "" {
		revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// The signature check above still stands; an unreachable
			// revocation list must not lock everyone out.
			log.Printf("auth: revocation check: %v", err)
		} else if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}
