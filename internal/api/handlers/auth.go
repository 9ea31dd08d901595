// Package handlers contains the HTTP handlers for the API server.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/auth"
	"github.com/adoptimizer/adoptimizer/internal/storage/models"
	"github.com/adoptimizer/adoptimizer/internal/storage/repository"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users repository.UserRepository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a new user account and returns an access token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid JSON body"))
		return
	}

	var missing []string
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		response.UnprocessableEntity(w, "Missing required fields: "+strings.Join(missing, ", "), missing)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			response.UnprocessableEntity(w, err.Error(), []string{"password"})
			return
		}
		response.InternalError(w, err)
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if existing != nil {
		response.Conflict(w, "An account with this email already exists")
		return
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		response.InternalError(w, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, tokenResponse{Token: token, User: user})
}

// Login authenticates a user and returns an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid JSON body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		response.UnprocessableEntity(w, "Missing required fields: email, password", []string{"email", "password"})
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		response.Unauthorized(w, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, tokenResponse{Token: token, User: user})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if user == nil {
		response.NotFound(w, errors.New("user not found"))
		return
	}
	response.Success(w, user)
}
