// Package auth resolves the calling user of a request. Callers either present
// an HS256 bearer token or a session cookie obtained by exchanging one.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/sessions"
)

type contextKey string

const userIDKey contextKey = "user_id"

// SessionName is the cookie that carries a browser session.
const SessionName = "recruitdesk_session"

const sessionUserKey = "user_id"

var (
	// ErrNoCredentials means the request carried neither a token nor a session.
	ErrNoCredentials = errors.New("missing credentials")
	// ErrInvalidToken means a bearer token was present but not acceptable.
	ErrInvalidToken = errors.New("invalid token")
)

// WithUserID returns a context carrying the resolved user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by the middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// Claims is the token payload. user_id wins over the standard subject.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.StandardClaims
}

// Authenticator validates bearer tokens and session cookies.
type Authenticator struct {
	secret   []byte
	sessions sessions.Store
}

// NewAuthenticator builds an Authenticator. A nil or empty sessionSecret
// disables cookie sessions.
func NewAuthenticator(jwtSecret, sessionSecret []byte) *Authenticator {
	a := &Authenticator{secret: jwtSecret}
	if len(sessionSecret) > 0 {
		store := sessions.NewCookieStore(sessionSecret)
		store.Options = &sessions.Options{
			Path:     "/",
			MaxAge:   int((12 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}
		a.sessions = store
	}
	return a
}

// Resolve returns the user id behind the request.
func (a *Authenticator) Resolve(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", ErrInvalidToken
		}
		return a.ParseToken(strings.TrimSpace(parts[1]))
	}
	if a.sessions == nil {
		return "", ErrNoCredentials
	}
	session, err := a.sessions.Get(r, SessionName)
	if err != nil {
		return "", ErrNoCredentials
	}
	userID, _ := session.Values[sessionUserKey].(string)
	if userID == "" {
		return "", ErrNoCredentials
	}
	return userID, nil
}

// ParseToken validates an HS256 token and returns its user id.
func (a *Authenticator) ParseToken(raw string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: signing secret not configured", ErrInvalidToken)
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", fmt.Errorf("%w: no user id claim", ErrInvalidToken)
	}
	return userID, nil
}

// IssueToken signs a token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("signing secret not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// StartSession stores userID in a cookie session.
func (a *Authenticator) StartSession(w http.ResponseWriter, r *http.Request, userID string) error {
	if a.sessions == nil {
		return errors.New("sessions are disabled")
	}
	// Get returns a fresh session alongside an error when an old cookie no
	// longer decodes, which is fine to overwrite.
	session, _ := a.sessions.Get(r, SessionName)
	session.Values[sessionUserKey] = userID
	return session.Save(r, w)
}

// EndSession expires the session cookie.
func (a *Authenticator) EndSession(w http.ResponseWriter, r *http.Request) error {
	if a.sessions == nil {
		return nil
	}
	session, _ := a.sessions.Get(r, SessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// Middleware resolves the caller and stores the id on the request context.
// onFailure renders the rejection.
func (a *Authenticator) Middleware(onFailure func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Resolve(r)
			if err != nil {
				onFailure(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
