package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/juantovo/task-manager-api/internal/httputil"
	"github.com/juantovo/task-manager-api/internal/logging"
)

// Handler contains the HTTP handlers for the authenticated user's profile
// and the public user listing.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me handles GET /api/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}
	httputil.RespondJSON(w, u, http.StatusOK)
}

// UpdateMe handles PATCH /api/users/me. A field outside the allow-list
// rejects the whole update with 404.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	u, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateFields(r.Context(), u, fields)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownField):
			logger.Warn("user update rejected: unknown field", "error", err.Error())
			httputil.RespondErrorWithCode(w, "wrong request body fields", httputil.CodeUnknownField, http.StatusNotFound)
		case errors.Is(err, ErrInvalidFieldValue):
			logger.Warn("user update rejected: invalid value", "error", err.Error())
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
		case errors.Is(err, ErrDuplicateEmail):
			logger.Warn("user update rejected: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusBadRequest)
		default:
			logger.Error("user update failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user updated", "user_id", updated.ID)
	httputil.RespondJSON(w, updated, http.StatusCreated)
}

// DeleteMe handles DELETE /api/users/me, cascading over the user's tasks.
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	u, ok := FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	if err := h.service.Delete(r.Context(), u); err != nil {
		logger.Error("user deletion failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, map[string]string{"message": "account deleted"}, http.StatusOK)
}

// ListAll handles GET /api/users. Deliberately unauthenticated.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	users, err := h.service.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, users, http.StatusOK)
}
