package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"wbs/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d Dependencies) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", d.Log)
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Username dan password wajib diisi", d.Log)
		return
	}

	token, user, err := d.Auth.Login(r.Context(), d.Store, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			WriteError(w, http.StatusUnauthorized, "invalid_login", err.Error(), d.Log)
			return
		}
		WriteError(w, http.StatusInternalServerError, "login_failed", err.Error(), d.Log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
