package controllers

import (
	"net/http"

	"github.com/breaddesk/breaddesk-backend/api/middleware"
	"github.com/breaddesk/breaddesk-backend/api/responses"
	"github.com/breaddesk/breaddesk-backend/api/validators"
	authsvc "github.com/breaddesk/breaddesk-backend/internal/auth"
	"github.com/breaddesk/breaddesk-backend/pkg/db/models"
	pkgerrors "github.com/breaddesk/breaddesk-backend/pkg/errors"
	"github.com/breaddesk/breaddesk-backend/pkg/logger"
)

type loginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Login authenticates credentials and issues a bearer token.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, loginResponse{
			Success: true,
			Message: "login successful",
			Token:   result.Token,
			User:    result.User,
		})
	}
}

// Logout revokes the session behind the presented token.
func Logout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "logged out", nil)
	}
}
