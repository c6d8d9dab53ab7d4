package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/service"
)

// UserHandler exposes account CRUD and search.
//
// Credentials travel as a `pwd` query parameter rather than a header: the
// account password doubles as the capability for every owner-scoped call, so
// it accompanies each request explicitly.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleCreate registers an account.
//
// HTTP: POST /rest/users
// Body: {"userId":"...","pwd":"...","email":"...","displayName":"..."}
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var user model.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, apperror.BadRequest("body", "invalid JSON body"))
		return
	}

	created, err := h.users.Create(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleGet returns the account matching the (id, pwd) pair.
//
// HTTP: GET /rest/users/{userId}?pwd=...
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate applies the non-empty fields of the body to the account.
//
// HTTP: PUT /rest/users/{userId}?pwd=...
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.User
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperror.BadRequest("body", "invalid JSON body"))
		return
	}

	updated, err := h.users.Update(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes the account and everything it owns.
//
// HTTP: DELETE /rest/users/{userId}?pwd=...
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("userId"), r.URL.Query().Get("pwd")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSearch lists users whose display name or email contains the pattern.
//
// HTTP: GET /rest/users?query=...
func (h *UserHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
