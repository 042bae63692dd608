package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Zigorr/Wallet-Fullstack/internal/auth"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
)

type registerRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	DefaultCurrency string `json:"default_currency"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		writeError(w, fmt.Errorf("%w: username and email are required", core.ErrValidation))
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, fmt.Errorf("%w: invalid email address", core.ErrValidation))
		return
	}

	currency := core.CurrencyUSD
	if req.DefaultCurrency != "" {
		currency = core.Currency(strings.ToUpper(req.DefaultCurrency))
		if !currency.Valid() {
			writeError(w, core.ErrInvalidCurrency)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := s.storage.CreateUser(r.Context(), core.User{
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    hash,
		DefaultCurrency: currency,
	})
	if err != nil {
		if errors.Is(err, core.ErrConflict) {
			err = fmt.Errorf("%w: username or email already registered", core.ErrConflict)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

// handleToken exchanges form-encoded credentials for a bearer token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "malformed form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	user, err := s.storage.GetUserByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Same response for unknown user and wrong password.
			writeError(w, fmt.Errorf("%w: incorrect username or password", core.ErrUnauthorized))
			return
		}
		writeError(w, err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		writeError(w, fmt.Errorf("%w: incorrect username or password", core.ErrUnauthorized))
		return
	}

	token, expiresAt, err := s.auth.IssueToken(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt.Unix(),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.storage.GetUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
