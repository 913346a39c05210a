package http

import (
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := s.auth.SignUp(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, "sign up failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *HTTPServer) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.auth.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, "sign in failed", err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, "refresh failed", err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	u, err := s.users.Get(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, "load current user failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.fail(w, r, "list users failed", err)
		return
	}

	if len(list) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]userResponse, 0, len(list))
	for _, u := range list {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	role, _ := models.ParseRole(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}

	u, err := s.users.Create(r.Context(), req.Username, req.Password, role)
	if err != nil {
		s.fail(w, r, "create user failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	u, err := s.users.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "get user failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateUserRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := s.users.Update(r.Context(), id, req.toUpdate())
	if err != nil {
		s.fail(w, r, "update user failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		s.fail(w, r, "delete user failed", err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "deleted"})
}

// fail writes the mapped error response. Unmapped errors are logged.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if status, _ := statusFor(err); status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), msg, "error", err)
	}
	writeError(w, err)
}
