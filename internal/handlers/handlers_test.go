package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alfagnish/authapi/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginCounter struct {
	success, failure int
}

func (c *loginCounter) ObserveLogin(success bool) {
	if success {
		c.success++
	} else {
		c.failure++
	}
}

type brokenFinder struct{}

func (brokenFinder) Lookup(int) (*users.User, error) { return nil, errors.New("boom") }

func newTestRouter(t *testing.T, counter *loginCounter) http.Handler {
	t.Helper()
	dir := users.NewDirectory(users.Seed())
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var observer LoginObserver
	if counter != nil {
		observer = counter
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		NewAuthHandler(dir, observer, logger).Routes(r)
		r.Route("/users", NewUsersHandler(dir).Routes)
		r.Route("/system", NewSystemHandler(dir).Routes)
	})
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	counter := &loginCounter{}
	h := newTestRouter(t, counter)

	rec := do(h, http.MethodPost, "/api/login", `{"username":"user1","password":"pass1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"token":"your-auth-token","userId":1}`, rec.Body.String())
	assert.Equal(t, 1, counter.success)
}

func TestLogin_EverySeedUser(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodPost, "/api/login", `{"username":"user2","password":"pass2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"your-auth-token","userId":2}`, rec.Body.String())
}

func TestLogin_WrongPassword(t *testing.T) {
	counter := &loginCounter{}
	h := newTestRouter(t, counter)

	rec := do(h, http.MethodPost, "/api/login", `{"username":"user1","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
	assert.Equal(t, 1, counter.failure)
}

func TestLogin_NonMatchingBodies(t *testing.T) {
	h := newTestRouter(t, nil)

	bodies := map[string]string{
		"missing password": `{"username":"user1"}`,
		"missing username": `{"password":"pass1"}`,
		"empty object":     `{}`,
		"null":             `null`,
		"array":            `["user1","pass1"]`,
		"wrong types":      `{"username":1,"password":true}`,
		"not json":         `username=user1&password=pass1`,
		"empty strings":    `{"username":"","password":""}`,
		"upper-case keys":  `{"USERNAME":"user1","PASSWORD":"pass1"}`,
		"title-case keys":  `{"Username":"user1","Password":"pass1"}`,
		"null values":      `{"username":null,"password":null}`,
		"trailing garbage": `{"username":"user1","password":"pass1"} trailing`,
		"two objects":      `{"username":"user1","password":"pass1"}{}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/login", body)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
		})
	}
}

func TestLogin_KeysMatchExactly(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodPost, "/api/login", `{"username":"user1","password":"pass1","Password":"x"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"your-auth-token","userId":1}`, rec.Body.String())

	rec = do(h, http.MethodPost, "/api/login", "{\"username\":\"user1\",\"password\":\"pass1\"}\n")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_LogsUsernameOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.DebugLevel)

	r := chi.NewRouter()
	NewAuthHandler(users.NewDirectory(users.Seed()), nil, logger).Routes(r)

	rec := do(r, http.MethodPost, "/login", `{"username":"user2","password":"pass2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, buf.String(), `"username":"user2"`)
	assert.NotContains(t, buf.String(), "pass2")
}

func TestLogin_EmptyBody(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodPost, "/api/login", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodGet, "/api/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetUser_Found(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodGet, "/api/users/2", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"username":"user2","password":"pass2"}`, rec.Body.String())
}

func TestGetUser_NotFound(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, path := range []string{"/api/users/99", "/api/users/0", "/api/users/99999999999999999999999"} {
		rec := do(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"User not found"}`, rec.Body.String(), path)
	}
}

func TestGetUser_NonIntegerRejectedByRouter(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, path := range []string{"/api/users/abc", "/api/users/-1", "/api/users/1.5"} {
		rec := do(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "User not found", path)
	}
}

func TestGetUser_Idempotent(t *testing.T) {
	h := newTestRouter(t, nil)

	first := do(h, http.MethodGet, "/api/users/1", "").Body.String()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, do(h, http.MethodGet, "/api/users/1", "").Body.String())
	}
}

func TestGetUser_LookupError(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/api/users", NewUsersHandler(brokenFinder{}).Routes)

	rec := do(r, http.MethodGet, "/api/users/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(h, http.MethodGet, "/api/system/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","users":2}`, rec.Body.String())
}
