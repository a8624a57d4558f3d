package middleware

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

type authCtxKey int

const operatorKey authCtxKey = 3

// OperatorClaims identify who may read collected study data.
type OperatorClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

func secret() []byte {
	s := os.Getenv("HASHBOT_JWT_SECRET")
	if s == "" {
		s = "hashbot-dev-secret"
	}
	return []byte(s)
}

// SignOperatorToken mints a bearer token for the export endpoints.
func SignOperatorToken(name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := OperatorClaims{Name: name, RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now), ExpiresAt: jwt.NewNumericDate(now.Add(ttl))}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

func parseToken(tok string) (*OperatorClaims, error) {
	t, err := jwt.ParseWithClaims(tok, &OperatorClaims{}, func(token *jwt.Token) (interface{}, error) { return secret(), nil })
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*OperatorClaims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// WithOperator attaches operator claims to the context if a valid bearer
// token is present.
func WithOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if strings.HasPrefix(h, "Bearer ") {
			tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			if c, err := parseToken(tok); err == nil {
				ctx := context.WithValue(r.Context(), operatorKey, c)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireOperator rejects requests that carry no valid operator claims.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(operatorKey).(*OperatorClaims); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OperatorFromContext returns the authenticated operator name, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	if c, ok := ctx.Value(operatorKey).(*OperatorClaims); ok {
		return c.Name, true
	}
	return "", false
}
