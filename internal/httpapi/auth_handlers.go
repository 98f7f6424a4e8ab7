package httpapi

import (
	"net/http"

	"tradingjournal/internal/app"
	"tradingjournal/internal/ports"
)

// AuthHandler serves signup, login and the current-user profile.
type AuthHandler struct {
	Users  *app.UserService
	Logger ports.Logger
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles POST /api/v1/auth/signup.
func (h AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := ReadJSON(r, &req, 1<<20); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.Users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /api/v1/auth/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := ReadJSON(r, &req, 1<<20); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	token, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /api/v1/auth/me. The middleware has already resolved the
// bearer token to a user.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	WriteJSON(w, http.StatusOK, toUserResponse(u))
}
