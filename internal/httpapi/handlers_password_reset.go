package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"accountsvc/internal/domain"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// forgotPasswordReply is the single answer the forgot-password endpoint
// ever gives for a well-formed email, known account or not.
const forgotPasswordReply = "If the email exists, a password reset link has been sent"

func (a *api) handleAuthForgot(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"email": "must be a valid email"}))
		return
	}

	if err := a.resetSvc.RequestReset(r.Context(), email); err != nil {
		a.logger.Error("reset request failed", "err", err)
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, messageResponse{Message: forgotPasswordReply})
}

type tokenValidationResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}

func (a *api) handleAuthValidateToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PathValue("token"))
	if token == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"token": "required"}))
		return
	}

	email, err := a.resetSvc.ValidateToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			WriteJSON(w, http.StatusOK, tokenValidationResponse{Valid: false})
			return
		}
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, tokenValidationResponse{Valid: true, Email: email})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"new_password"`
}

func (a *api) handleAuthReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	token := strings.TrimSpace(req.Token)
	fields := map[string]string{}
	if token == "" {
		fields["token"] = "required"
	}
	if len(req.Password) < minPasswordLength {
		fields["new_password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	if err := a.resetSvc.ResetPassword(r.Context(), token, req.Password); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully"})
}
