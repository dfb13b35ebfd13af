package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminCookieName = "americano_admin"
	adminSubject    = "admin"
	tokenIssuer     = "americano-app"
)

// Auth guards the admin API with a single bcrypt-hashed password and short-lived
// HS256 tokens, delivered as a cookie and in the login response body.
type Auth struct {
	passwordHash string
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

type AuthOptions struct {
	// PasswordHash wins over Password when both are set.
	PasswordHash string
	Password     string
	Secret       string
	TTL          time.Duration
	SecureCookie bool
}

func NewAuth(opts AuthOptions) (*Auth, error) {
	hash := strings.TrimSpace(opts.PasswordHash)
	if hash == "" {
		hash = hashPassword(opts.Password)
	}
	if hash == "" {
		return nil, errors.New("admin password is not configured")
	}
	if opts.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Auth{
		passwordHash: hash,
		secret:       []byte(opts.Secret),
		ttl:          ttl,
		secureCookie: opts.SecureCookie,
		now:          time.Now,
	}, nil
}

func (a *Auth) issue() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (a *Auth) verify(raw string) error {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return errUnauthorized
	}
	if claims.Subject != adminSubject || !claims.VerifyIssuer(tokenIssuer, true) {
		return errUnauthorized
	}
	if !claims.VerifyExpiresAt(a.now(), true) {
		return errUnauthorized
	}
	return nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(adminCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" || a.verify(token) != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			_ = writeJSON(w, http.StatusUnauthorized, envelope{"error": errUnauthorized.Error()}, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := readJSON(w, r, &in); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if !checkPassword(s.auth.passwordHash, in.Password) {
		s.log.WithField("remote", r.RemoteAddr).Warn("admin login failed")
		s.errorResponse(w, r, http.StatusUnauthorized, "invalid password")
		return
	}
	token, expires, err := s.auth.issue()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.auth.setAuthCookie(w, token, expires)
	s.respond(w, r, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearAuthCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (a *Auth) setAuthCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

func (a *Auth) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func hashPassword(password string) string {
	if password == "" {
		return ""
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hash)
}

func checkPassword(hash string, password string) bool {
	if hash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
