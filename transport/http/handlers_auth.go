package httptransport

import (
	"net/http"

	"secure-chat/services"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, http.StatusCreated, h.auth.Register)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, http.StatusOK, h.auth.Login)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, status int, do func(email, password string) (services.Session, error)) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := do(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, sessionResponse{Token: session.Token, UserID: session.UserID})
}
