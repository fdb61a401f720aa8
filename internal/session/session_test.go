package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestAuthority(t *testing.T, duration, activeWindow time.Duration) *Authority {
	t.Helper()
	a, err := NewAuthority("test-secret", duration, activeWindow, false)
	require.NoError(t, err)
	return a
}

func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNewAuthorityRequiresSecret(t *testing.T) {
	_, err := NewAuthority("", time.Minute, time.Minute, false)
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	a := newTestAuthority(t, 2*time.Minute, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice", Email: "alice@example.com"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)

	user, ok := a.FromRequest(requestWithCookies(t, rec))
	require.True(t, ok)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, "alice@example.com", user.Email)
}

func TestFromRequestRejectsMissingCookie(t *testing.T) {
	a := newTestAuthority(t, 2*time.Minute, time.Minute)

	_, ok := a.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
}

func TestFromRequestRejectsTamperedCookie(t *testing.T) {
	a := newTestAuthority(t, 2*time.Minute, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))
	cookie := rec.Result().Cookies()[0]

	// Flip a byte in the encoded payload; the signature no longer matches
	tampered := []byte(cookie.Value)
	if tampered[0] == 'A' {
		tampered[0] = 'B'
	} else {
		tampered[0] = 'A'
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: string(tampered)})
	_, ok := a.FromRequest(r)
	require.False(t, ok)
}

func TestFromRequestRejectsForeignSecret(t *testing.T) {
	a := newTestAuthority(t, 2*time.Minute, time.Minute)
	other, err := NewAuthority("different-secret", 2*time.Minute, time.Minute, false)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))

	_, ok := other.FromRequest(requestWithCookies(t, rec))
	require.False(t, ok)
}

func TestFromRequestRejectsExpired(t *testing.T) {
	a := newTestAuthority(t, -time.Second, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))

	_, ok := a.FromRequest(requestWithCookies(t, rec))
	require.False(t, ok)
}

func TestTouchExtendsActiveSession(t *testing.T) {
	// Short initial lifetime, longer active window: any activity should
	// push the expiry past the original deadline
	a := newTestAuthority(t, time.Second, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))
	original, ok := a.decode(rec.Result().Cookies()[0].Value)
	require.True(t, ok)

	touchRec := httptest.NewRecorder()
	a.Touch(touchRec, requestWithCookies(t, rec))

	cookies := touchRec.Result().Cookies()
	require.Len(t, cookies, 1, "an active session must be re-issued")
	extended, ok := a.decode(cookies[0].Value)
	require.True(t, ok)
	require.True(t, extended.Expires.After(original.Expires))
}

func TestTouchIgnoresExpiredSession(t *testing.T) {
	a := newTestAuthority(t, -time.Second, time.Minute)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))

	touchRec := httptest.NewRecorder()
	a.Touch(touchRec, requestWithCookies(t, rec))
	require.Empty(t, touchRec.Result().Cookies(), "expired sessions must not be revived")
}

func TestTouchSkipsWhenExpiryAlreadyLater(t *testing.T) {
	// Long lifetime, tiny active window: extending would shorten the
	// session, so no cookie is written
	a := newTestAuthority(t, time.Hour, time.Second)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Establish(rec, User{Username: "alice"}))

	touchRec := httptest.NewRecorder()
	a.Touch(touchRec, requestWithCookies(t, rec))
	require.Empty(t, touchRec.Result().Cookies())
}

func TestDestroy(t *testing.T) {
	a := newTestAuthority(t, 2*time.Minute, time.Minute)

	rec := httptest.NewRecorder()
	a.Destroy(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Equal(t, -1, cookies[0].MaxAge)
}
