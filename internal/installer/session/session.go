// Package session issues and verifies the installer session token.
//
// The token is a signed JWT carried in a cookie; it binds the browser to one
// wizard run so a half-finished installation cannot be hijacked by another
// visitor guessing URLs.
package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
)

// CookieName carries the installer session token.
const CookieName = "ls_install"

const issuer = "lodestar-installer"

// Config defines how session tokens are signed and validated.
type Config struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte
	// TTL bounds the wizard session lifetime.
	TTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Manager signs and verifies installer session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	WizardID string `json:"wizard_id"`
}

// NewManager validates the config and returns a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: cfg.Secret, ttl: ttl, now: now}, nil
}

// Issue signs a token binding the browser to the given wizard run.
func (m *Manager) Issue(wizardID string) (string, error) {
	wizardID = strings.TrimSpace(wizardID)
	if wizardID == "" {
		return "", errors.New("wizard id is required")
	}
	issuedAt := m.now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
		WizardID: wizardID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses the token and returns the bound wizard ID.
func (m *Manager) Verify(tokenString string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return m.now().UTC() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.Wrap(apperrors.CodeSessionTokenExpired, "session token expired", err)
		}
		return "", apperrors.Wrap(apperrors.CodeSessionTokenInvalid, "session token invalid", err)
	}
	wizardID := strings.TrimSpace(claims.WizardID)
	if wizardID == "" {
		return "", apperrors.New(apperrors.CodeSessionTokenInvalid, "session token missing wizard id")
	}
	return wizardID, nil
}

// SetCookie writes the session cookie on the response.
func SetCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the session token carried by the request.
func FromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", apperrors.New(apperrors.CodeSessionMissing, "no installer session cookie")
	}
	return cookie.Value, nil
}
