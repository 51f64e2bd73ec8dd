package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	return CSRFProtection(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func csrfCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == csrfCookieName {
			return cookie
		}
	}
	t.Fatal("no csrf cookie set")
	return nil
}

func TestCSRFSafeMethodIssuesToken(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookie := csrfCookieFrom(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.False(t, cookie.HttpOnly)
}

func TestCSRFPostWithoutHeaderRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFPostWithEchoedTokenAccepted(t *testing.T) {
	handler := csrfHandler()

	seed := httptest.NewRecorder()
	handler.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/user", nil))
	cookie := csrfCookieFrom(t, seed)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(cookie)
	req.Header.Set(csrfHeader, cookie.Value)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFPostWithMismatchedTokenRejected(t *testing.T) {
	handler := csrfHandler()

	seed := httptest.NewRecorder()
	handler.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/user", nil))
	cookie := csrfCookieFrom(t, seed)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.AddCookie(cookie)
	req.Header.Set(csrfHeader, generateCSRFToken())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRotateCSRFToken(t *testing.T) {
	handler := csrfHandler()

	seed := httptest.NewRecorder()
	handler.ServeHTTP(seed, httptest.NewRequest(http.MethodGet, "/user", nil))
	before := csrfCookieFrom(t, seed)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	RotateCSRFToken(rec, req)
	after := csrfCookieFrom(t, rec)

	require.NotEmpty(t, after.Value)
	assert.NotEqual(t, before.Value, after.Value)
}
