package handlers

import (
	"io"
	"net/http"

	"github.com/alfagnish/authapi/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// StaticToken is returned by every successful login. It is not tied to the
// user and is never verified.
const StaticToken = "your-auth-token"

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(username, password string) (*users.User, error)
}

// LoginObserver records login outcomes.
type LoginObserver interface {
	ObserveLogin(success bool)
}

// AuthHandler provides the login endpoint.
type AuthHandler struct {
	users    Authenticator
	observer LoginObserver
	log      logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler. observer may be nil.
func NewAuthHandler(u Authenticator, observer LoginObserver, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: u, observer: observer, log: log}
}

// Routes registers auth routes on the given chi router.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/login", h.Login)
}

// loginFields holds the raw top-level members of a login body. Keys are
// matched exactly, so "Username" or "USERNAME" do not count as "username".
type loginFields map[string]json.RawMessage

// str returns the value of key when it is present and a JSON string. Any
// other value, including null, yields nil and never matches a record.
func (f loginFields) str(key string) *string {
	raw, ok := f[key]
	if !ok || len(raw) == 0 || raw[0] != '"' {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int    `json:"userId"`
}

// Login checks the supplied credentials against the user directory. Any body
// that does not carry both fields, including one that is not JSON at all, is
// answered like a wrong password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.WithError(err).Debug("login body not readable")
		h.reject(w)
		return
	}

	// Unmarshal rejects trailing data after the object.
	var fields loginFields
	if err := json.Unmarshal(body, &fields); err != nil {
		h.log.WithError(err).Debug("login body not decodable")
		h.reject(w)
		return
	}
	username, password := fields.str("username"), fields.str("password")
	if username == nil || password == nil {
		h.reject(w)
		return
	}

	user, err := h.users.Authenticate(*username, *password)
	if err != nil {
		h.reject(w)
		return
	}

	if h.observer != nil {
		h.observer.ObserveLogin(true)
	}
	h.log.WithField("username", user.Username).Debug("login succeeded")

	writeJSON(w, http.StatusOK, loginResponse{Token: StaticToken, UserID: user.ID})
}

func (h *AuthHandler) reject(w http.ResponseWriter) {
	if h.observer != nil {
		h.observer.ObserveLogin(false)
	}
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}
