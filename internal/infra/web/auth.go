package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/octaveluka/BETIQ-AI-sub000/internal/config"
)

var errMissingSession = errors.New("missing session")

// ===== Session/JWT primitives =====

type AuthConfig struct {
	HMACSecret   []byte
	CookieName   string
	CookieDomain string
	SecureCookie bool
	TTL          time.Duration
}

// AuthManager mints and reads the service's own session cookie.
// It knows nothing about entitlements: signing out never touches them.
type AuthManager struct {
	cfg AuthConfig
	now func() time.Time
}

func NewAuthManager(c config.AuthConfig) *AuthManager {
	name := c.CookieName
	if name == "" {
		name = "betiq_session"
	}
	return &AuthManager{
		cfg: AuthConfig{
			HMACSecret:   []byte(c.SessionSecret),
			CookieName:   name,
			CookieDomain: c.CookieDomain, // "" keeps the cookie host-only
			SecureCookie: c.SecureCookie,
			TTL:          c.SessionTTL,
		},
		now: time.Now,
	}
}

// SessionClaims: Subject is the verified email, Lang the preferred content language.
type SessionClaims struct {
	Lang string `json:"lang,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthManager) Mint(w http.ResponseWriter, subjectID, lang string) (string, error) {
	now := a.now()
	claims := SessionClaims{
		Lang: lang,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
			Subject:   subjectID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.cfg.HMACSecret)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   int(a.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cfg.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// ParseFromRequest reads "Authorization: Bearer <jwt>" first, then the cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*SessionClaims, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(a.cfg.CookieName); err == nil && c.Value != "" {
		return a.parse(c.Value)
	}
	return nil, errMissingSession
}

func (a *AuthManager) parse(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
