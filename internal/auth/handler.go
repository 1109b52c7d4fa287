package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/juantovo/task-manager-api/internal/httputil"
	"github.com/juantovo/task-manager-api/internal/logging"
	"github.com/juantovo/task-manager-api/internal/user"
)

// Handler contains the HTTP handlers for registration and session lifecycle.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest is the body of POST /api/users.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned from registration and login: the user plus the
// freshly minted session token.
type SessionResponse struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

// Register handles POST /api/users.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration rejected: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		case errors.Is(err, ErrNameRequired), errors.Is(err, ErrEmailRequired), errors.Is(err, ErrPasswordRequired):
			logger.Warn("registration rejected: validation error", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		default:
			logger.Error("registration failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)
	httputil.RespondJSON(w, SessionResponse{User: newUser, Token: token}, http.StatusCreated)
}

// Login handles POST /api/users/login. Any credential failure gets the same
// 400 response so the endpoint cannot distinguish unknown emails from wrong
// passwords.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	existing, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login rejected")
			httputil.RespondErrorWithCode(w, "invalid credentials", httputil.CodeInvalidCredentials, http.StatusBadRequest)
			return
		}
		logger.Error("login failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", existing.ID)
	httputil.RespondJSON(w, SessionResponse{User: existing, Token: token}, http.StatusOK)
}

// Logout handles POST /api/users/logout: it revokes exactly the token the
// request authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	u, _ := user.FromContext(r.Context())
	token, _ := user.TokenFromContext(r.Context())

	if err := h.service.Logout(r.Context(), u.ID, token); err != nil {
		logger.Error("logout failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged out", "user_id", u.ID)
	httputil.RespondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// LogoutAll handles POST /api/users/logoutAll: it revokes every live session
// of the user at once.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	u, _ := user.FromContext(r.Context())

	if err := h.service.LogoutAll(r.Context(), u.ID); err != nil {
		logger.Error("logout all failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged out everywhere", "user_id", u.ID)
	httputil.RespondJSON(w, map[string]string{"message": "logged out from all devices"}, http.StatusOK)
}
