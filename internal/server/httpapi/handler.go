package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fibkeeper/internal/server/session"
	"github.com/dmitrijs2005/fibkeeper/internal/server/users"
)

// HelloWorld is the /hello greeting.
const HelloWorld = "Hello World!"

type userPayload struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
	Age  *uint8  `json:"age"`
}

func (userPayload) fieldNames() []string { return []string{"id", "name", "age"} }

func (p userPayload) complete() bool {
	return p.ID != nil && p.Name != nil && p.Age != nil
}

type credentialsPayload struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (credentialsPayload) fieldNames() []string { return []string{"username", "password"} }

func (s *HTTPServer) Hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, HelloWorld)
}

func (s *HTTPServer) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsPayload
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Username == nil || req.Password == nil {
		writeText(w, http.StatusUnprocessableEntity, "missing field: username and password are required")
		return
	}

	p, err := s.auth.Authenticate(r.Context(), auth.Credentials{Username: *req.Username, Password: *req.Password})
	if err != nil {
		s.logger.Warn(r.Context(), "login rejected", "error", err)
		writeText(w, http.StatusForbidden, "invalid credentials")
		return
	}

	if err := s.sessions.Login(w, r, p); err != nil {
		s.logger.Error(r.Context(), "session bind failed", "error", err)
		writeText(w, http.StatusInternalServerError, "login failed")
		return
	}

	s.logger.Info(r.Context(), "logged in", "user_id", p.ID)
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) Logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(w, r); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeText(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) NextFibonacci(w http.ResponseWriter, r *http.Request) {
	next, err := s.sequence.Next()
	if err != nil {
		s.logger.Error(r.Context(), "next fibonacci failed", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeText(w, http.StatusOK, next.String())
}

func (s *HTTPServer) ListUsers(w http.ResponseWriter, r *http.Request) {
	body, err := s.directory.List()
	if err != nil {
		s.logger.Error(r.Context(), "list users failed", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *HTTPServer) GetUser(w http.ResponseWriter, r *http.Request) {
	body, err := s.directory.Get(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, common.ErrorUnknownUser) {
			writeText(w, http.StatusNotFound, common.ErrorUnknownUser.Error())
			return
		}
		s.logger.Error(r.Context(), "get user failed", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *HTTPServer) UpsertUser(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.complete() {
		writeText(w, http.StatusUnprocessableEntity, "missing field: id, name and age are required")
		return
	}

	if err := s.directory.Upsert(users.User{ID: *req.ID, Name: *req.Name, Age: *req.Age}); err != nil {
		s.logger.Error(r.Context(), "upsert user failed", "error", err)
		writeText(w, http.StatusInternalServerError, err.Error())
		return
	}

	if p, ok := session.PrincipalFromContext(r.Context()); ok {
		s.logger.Debug(r.Context(), "user upserted", "id", *req.ID, "by", p.Username)
	}
	w.WriteHeader(http.StatusOK)
}
