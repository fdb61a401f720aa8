package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"yourtune/internal/store"
)

// CookieName is the session cookie's name on the wire.
const CookieName = "session"

// User is the identity carried inside the session cookie for the duration
// of a login.
type User struct {
	Username     string             `json:"username"`
	Email        string             `json:"email"`
	LoginHistory []store.LoginEntry `json:"loginHistory"`
}

type payload struct {
	User    User      `json:"user"`
	Expires time.Time `json:"expires"`
}

// Authority signs and verifies cookie-backed sessions. All session state
// round-trips in the client-held cookie; the server keeps nothing, so any
// instance holding the same secret can validate any cookie.
type Authority struct {
	secret        []byte
	duration      time.Duration
	activeWindow  time.Duration
	secureCookies bool
}

// NewAuthority creates a session authority. duration is the initial cookie
// lifetime; activeWindow is the sliding extension granted on activity.
func NewAuthority(secret string, duration, activeWindow time.Duration, secureCookies bool) (*Authority, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	return &Authority{
		secret:        []byte(secret),
		duration:      duration,
		activeWindow:  activeWindow,
		secureCookies: secureCookies,
	}, nil
}

// Establish signs a fresh session for the user and sets the cookie.
func (a *Authority) Establish(w http.ResponseWriter, user User) error {
	expires := time.Now().Add(a.duration)
	return a.setCookie(w, payload{User: user, Expires: expires})
}

// FromRequest extracts and verifies the session from the request cookie.
// A missing cookie, bad signature, malformed payload or past expiry all
// read as "no session".
func (a *Authority) FromRequest(r *http.Request) (*User, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}

	p, ok := a.decode(cookie.Value)
	if !ok {
		return nil, false
	}
	if time.Now().After(p.Expires) {
		return nil, false
	}
	return &p.User, true
}

// Touch slides the session forward on activity: if extending by the active
// window would outlive the current expiry, the cookie is re-issued with the
// later deadline. Requests against an already-expired cookie never revive
// it (FromRequest rejects those first).
func (a *Authority) Touch(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return
	}
	p, ok := a.decode(cookie.Value)
	if !ok || time.Now().After(p.Expires) {
		return
	}

	extended := time.Now().Add(a.activeWindow)
	if extended.After(p.Expires) {
		p.Expires = extended
		a.setCookie(w, *p)
	}
}

// Destroy expires the cookie immediately.
func (a *Authority) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

func (a *Authority) setCookie(w http.ResponseWriter, p payload) error {
	value, err := a.encode(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Expires:  p.Expires,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// encode produces base64(json payload) + "." + base64(HMAC-SHA256).
func (a *Authority) encode(p payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode session payload: %w", err)
	}
	b64 := base64.RawURLEncoding.EncodeToString(body)
	return b64 + "." + a.sign(b64), nil
}

func (a *Authority) decode(value string) (*payload, bool) {
	b64, sig, ok := strings.Cut(value, ".")
	if !ok {
		return nil, false
	}
	if !hmac.Equal([]byte(a.sign(b64)), []byte(sig)) {
		return nil, false
	}

	body, err := base64.RawURLEncoding.DecodeString(b64)
	if err != nil {
		return nil, false
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (a *Authority) sign(b64 string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(b64))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
