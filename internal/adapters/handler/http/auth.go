package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/elections/internal/core/domain"
)

const accessTokenCookie = "access_token"

type contextKey string

const callerKey contextKey = "caller"

// Caller is the verified identity of the request.
type Caller struct {
	Identity string
	Roles    domain.Roles
}

func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

type accessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 access tokens. It never issues them.
type Authenticator struct {
	secret []byte
	resp   *Responder
}

func NewAuthenticator(secret []byte, resp *Responder) *Authenticator {
	return &Authenticator{secret: secret, resp: resp}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.identify(r)
		if err != nil {
			a.resp.logger.Debug("request not authenticated", "event", "elections_auth_rejected", "error", err)
			a.resp.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
	})
}

func (a *Authenticator) identify(r *http.Request) (Caller, error) {
	raw := bearerToken(r)
	if raw == "" {
		cookie, err := r.Cookie(accessTokenCookie)
		if err != nil {
			return Caller{}, errors.New("no access token")
		}
		raw = cookie.Value
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Caller{}, err
	}
	if claims.Subject == "" {
		return Caller{}, errors.New("token has no subject")
	}
	return Caller{Identity: claims.Subject, Roles: domain.NewRoles(claims.Roles...)}, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return a.requireRole(domain.Roles.IsAdmin, next)
}

func (a *Authenticator) RequireSuperuser(next http.Handler) http.Handler {
	return a.requireRole(domain.Roles.IsSuperuser, next)
}

func (a *Authenticator) requireRole(allowed func(domain.Roles) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFrom(r.Context())
		if !ok {
			a.resp.Unauthorized(w)
			return
		}
		if !allowed(caller.Roles) {
			a.resp.Error(w, r, domain.Forbidden("insufficient role"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
