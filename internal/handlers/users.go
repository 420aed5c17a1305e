package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/alfagnish/authapi/internal/users"
	"github.com/go-chi/chi/v5"
)

// UserFinder looks a user up by id.
type UserFinder interface {
	Lookup(id int) (*users.User, error)
}

// UsersHandler provides the user lookup endpoint.
type UsersHandler struct {
	users UserFinder
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(u UserFinder) *UsersHandler {
	return &UsersHandler{users: u}
}

// Routes registers user routes on the given chi router. Non-numeric ids never
// reach the handler; the router answers them with 404.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Get("/{userID:[0-9]+}", h.GetUser)
}

// GetUser returns the full user record, password included.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		// Digits only, so this is an id too large for int. No such user.
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := h.users.Lookup(id)
	if errors.Is(err, users.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
