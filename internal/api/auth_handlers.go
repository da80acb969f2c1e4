package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Abrahamm4/HomeCare/internal/auth"
)

type authHandlers struct {
	auth     *auth.Service
	tokens   *auth.TokenIssuer
	validate *validator.Validate
	log      *zap.Logger
}

func newAuthHandlers(svc *auth.Service, tokens *auth.TokenIssuer, validate *validator.Validate, log *zap.Logger) *authHandlers {
	return &authHandlers{auth: svc, tokens: tokens, validate: validate, log: log}
}

func (h *authHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	identity, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.Issue(*identity)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{Token: token})
}

func (h *authHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	identity, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.Issue(*identity)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
