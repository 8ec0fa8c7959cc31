package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"forkful/auth"
	"forkful/globals"
	"forkful/utils"
)

// Auth wraps handlers with bearer-token checks against an explicit Gate.
type Auth struct {
	Gate *auth.Gate
}

func NewAuth(gate *auth.Gate) *Auth {
	return &Auth{Gate: gate}
}

// Authenticate rejects the request with a 401 and the gate's reason as the
// body before the wrapped handler can cause any side effect.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := a.Gate.Authorize(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithText(w, http.StatusUnauthorized, err.Error())
			return
		}
		next(w, r.WithContext(withClaims(r.Context(), claims)), ps)
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously. Read endpoints use this:
// a bad or absent token is a visibility downgrade, not an error.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.Gate.Authorize(r.Context(), r.Header.Get("Authorization")); err == nil {
			r = r.WithContext(withClaims(r.Context(), claims))
		}
		next(w, r, ps)
	}
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, globals.UserIDKey, claims.UserID)
	return context.WithValue(ctx, globals.TokenIDKey, claims.ID)
}

func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
