package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bookshelf-app/bookshelf/internal/auth"
	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-playground/validator/v10"
)

// ==========================
// User Handler
// ==========================
type UserHandler struct {
	Users *repo.UserRepo
}

// ==========================
// Get Public Profile
// ==========================
// GET /api/users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("get user failed", "error", err, "user_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, user.PublicProfile())
}

type updateMeInput struct {
	Bio          string `json:"bio" validate:"max=100"`
	ProfileImage string `json:"profileImage"`
	// Password, when present, is re-hashed explicitly. Leaving it empty leaves
	// the stored hash untouched; an existing hash is never hashed again.
	Password string `json:"password" validate:"omitempty,min=2"`
}

// ==========================
// Update Own Profile
// ==========================
// PUT /api/users/me (authenticated)
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	var input updateMeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Bio" {
			JSONError(w, "Bio must be at most 100 characters long", http.StatusBadRequest)
			return
		}
		JSONError(w, "Password must be at least 2 characters long", http.StatusBadRequest)
		return
	}

	profileImage := input.ProfileImage
	if profileImage == "" {
		profileImage = user.ProfileImage
	}

	updated, err := h.Users.UpdateProfile(r.Context(), user.ID, input.Bio, profileImage)
	if err != nil {
		slog.Error("update profile failed", "error", err, "user_id", user.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	if input.Password != "" {
		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			slog.Error("hash password failed", "error", err, "user_id", user.ID)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		if err := h.Users.UpdatePasswordHash(r.Context(), user.ID, hash); err != nil {
			slog.Error("update password failed", "error", err, "user_id", user.ID)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
	}

	JSONData(w, http.StatusOK, updated)
}
