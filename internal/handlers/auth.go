package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookshelf-app/bookshelf/internal/auth"
	"github.com/bookshelf-app/bookshelf/internal/metrics"
	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users  *repo.UserRepo
	Tokens *auth.Service
}

// validate holds the struct validators for request inputs. Validation is
// explicit per handler rather than hidden in the storage layer.
var validate = validator.New()

type registerInput struct {
	Username string `json:"username" validate:"required,min=2,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=2"`
}

// registerMessage translates the first violated constraint into the
// client-facing message for that field.
func registerMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Username":
		if fe.Tag() == "required" {
			return "Please provide a username"
		}
		return "Username must be between 2 and 20 characters long"
	case "Email":
		if fe.Tag() == "required" {
			return "Please provide an email"
		}
		return "Please provide a valid email"
	case "Password":
		if fe.Tag() == "required" {
			return "Please provide a password"
		}
		return "Password must be at least 2 characters long"
	}
	return "Invalid request body"
}

// ==========================
// Register
// ==========================
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(input); err != nil {
		JSONError(w, registerMessage(err), http.StatusBadRequest)
		return
	}

	// Pre-check for a friendlier 400. Not atomic with the insert: a concurrent
	// duplicate slips past and is rejected by the unique index instead.
	exists, err := h.Users.ExistsByUsernameOrEmail(r.Context(), input.Username, input.Email)
	if err != nil {
		slog.Error("register: duplicate pre-check failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if exists {
		JSONError(w, "User already exists", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		slog.Error("register: hash password failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Username, input.Email, hash)
	if err != nil {
		// A lost race against the unique index lands here and surfaces as a
		// generic 500. Known gap in the documented contract; the cause is
		// logged but never sent to the client.
		if repo.IsUniqueViolation(err) {
			slog.Warn("register: duplicate user lost pre-check race", "username", input.Username)
		} else {
			slog.Error("register: create user failed", "error", err)
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.UsersRegistered.Inc()

	// 200 rather than 201: the documented contract every client was built against.
	h.sendTokenResponse(w, user)
}

// ==========================
// Login
// ==========================
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if input.Email == "" || input.Password == "" {
		JSONError(w, "Please provide an email and password to login", http.StatusBadRequest)
		return
	}

	// The one lookup allowed to load the password hash.
	user, err := h.Users.GetByEmailWithPassword(r.Context(), input.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("login: lookup by email failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		// Unknown email and wrong password produce the same message so the
		// response does not reveal which one was wrong.
		JSONError(w, "Invalid credentials", http.StatusBadRequest)
		return
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		JSONError(w, "Invalid credentials", http.StatusBadRequest)
		return
	}

	h.sendTokenResponse(w, user)
}

// ==========================
// Me
// ==========================
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	// Fresh fetch by id, distinct from the gate's own resolution.
	user, err := h.Users.GetByID(r.Context(), current.ID)
	if err != nil {
		slog.Error("me: fetch user failed", "error", err, "user_id", current.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, user)
}

// sendTokenResponse issues a token for the user and writes the
// {success, token, user} envelope. The password hash is cleared before the
// user is serialized; no response ever carries credential material.
func (h *AuthHandler) sendTokenResponse(w http.ResponseWriter, user *models.User) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		slog.Error("issue token failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user.PasswordHash = ""

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}
