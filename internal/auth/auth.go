// Package auth handles registration, login and JWT session cookies, and
// rate-limits requests per client IP.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	deckerr "Deckframe/internal/errors"
	"Deckframe/internal/repo"
)

type contextKey string

const userIDKey contextKey = "userID"

const (
	cookieName     = "session_token"
	sessionTTL     = 30 * 24 * time.Hour
	minPasswordLen = 6
	maxCredentials = 4 << 10
)

type Authenv struct {
	JWTkey []byte
	Repo   repo.Repository
	Logger *log.Logger
	// Insecure drops the Secure flag from the session cookie, for plain
	// HTTP in development.
	Insecure bool
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// Session is the body of a successful login or registration.
type Session struct {
	UserID    int       `json:"userId"`
	Login     string    `json:"login"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type claims struct {
	UserID int    `json:"user_id"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// UserID returns the authenticated user's id, or 0 outside AuthMiddleware.
func UserID(ctx context.Context) int {
	id, _ := ctx.Value(userIDKey).(int)
	return id
}

// WithUserID attaches id to ctx the way AuthMiddleware does.
func WithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func (env *Authenv) logger() *log.Logger {
	if env.Logger == nil {
		return log.Default()
	}
	return env.Logger
}

// parse validates a session token and returns its user id.
func (env *Authenv) parse(tokenString string) (int, bool) {
	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (any, error) {
		return env.JWTkey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		env.logger().Debug("rejected session token", "err", err)
		return 0, false
	}
	if c.UserID <= 0 || c.Login == "" {
		return 0, false
	}
	return c.UserID, true
}

func (env *Authenv) sessionFrom(r *http.Request) (int, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return 0, false
	}
	return env.parse(cookie.Value)
}

// RedirectIfLoggedIn sends users with a valid session away from the
// login pages.
func (env *Authenv) RedirectIfLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := env.sessionFrom(r); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware answers 401 unless the request carries a valid session
// cookie, and puts the user id in the request context.
func (env *Authenv) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := env.sessionFrom(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// startSession sets the session cookie and writes the Session body.
func (env *Authenv) startSession(w http.ResponseWriter, status, userID int, login string) {
	expires := time.Now().Add(sessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Login:  login,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(env.JWTkey)
	if err != nil {
		env.logger().Error("signing session token", "err", err)
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Expires:  expires,
		Path:     "/",
		HttpOnly: true,
		Secure:   !env.Insecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Session{UserID: userID, Login: login, ExpiresAt: expires.UTC()})
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var c credentials
	r.Body = http.MaxBytesReader(w, r.Body, maxCredentials)
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return c, false
	}
	c.Login = strings.TrimSpace(c.Login)
	c.Email = strings.TrimSpace(c.Email)
	return c, true
}

func (env *Authenv) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	switch {
	case c.Login == "" || c.Email == "" || c.Password == "":
		http.Error(w, "Login, email and password required", http.StatusBadRequest)
		return
	case len(c.Password) < minPasswordLen:
		http.Error(w, "Password too short", http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(c.Password)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}
	id, err := env.Repo.CreateUser(r.Context(), c.Login, c.Email, hash)
	if err != nil {
		env.logger().Warn("create user failed", "login", c.Login, "err", err)
		http.Error(w, "User already exists or DB error", http.StatusConflict)
		return
	}
	env.logger().Info("user registered", "login", c.Login, "id", id)
	env.startSession(w, http.StatusCreated, id, c.Login)
}

func (env *Authenv) AuthHandler(w http.ResponseWriter, r *http.Request) {
	c, ok := decodeCredentials(w, r)
	if !ok {
		return
	}
	if c.Login == "" || c.Password == "" {
		http.Error(w, "Login and password required", http.StatusBadRequest)
		return
	}

	id, hash, err := env.Repo.GetBylogin(r.Context(), c.Login)
	if err != nil {
		if !deckerr.Is(err, deckerr.ErrCodeNotFound) {
			env.logger().Error("login lookup failed", "login", c.Login, "err", err)
		}
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(c.Password)); err != nil {
		http.Error(w, "Invalid login or password", http.StatusUnauthorized)
		return
	}
	env.startSession(w, http.StatusOK, id, c.Login)
}
