package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
	"github.com/oncallhq/oncall-manager/backend/internal/utils"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	activeOnly := false
	if v := r.URL.Query().Get("active_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.errorResponse(w, r, "invalid active_only parameter")
			return
		}
		activeOnly = parsed
	}

	users, err := h.repository.GetAllUsers(activeOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string  `json:"display_name" validate:"required"`
		Email       string  `json:"email" validate:"required,email"`
		TimeZone    *string `json:"time_zone" validate:"omitempty,timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// new accounts get a random password; the user sets a real one through
	// the reset flow
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(utils.GenerateRandomPassword(16)), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user := &domain.User{
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		TimeZone:     req.TimeZone,
	}

	if err := h.repository.CreateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.errorResponse(w, r, "email is already registered")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "user created", user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		DisplayName *string `json:"display_name"`
		Email       *string `json:"email" validate:"omitempty,email"`
		TimeZone    *string `json:"time_zone" validate:"omitempty,timezone"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.TimeZone != nil {
		user.TimeZone = req.TimeZone
	}

	if err := h.repository.UpdateUser(user); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user has been modified concurrently, please retry")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_email_key":
			h.errorResponse(w, r, "email is already registered")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "user updated", user)
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true, "user activated")
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false, "user deactivated")
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool, msg string) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.SetUserActive(user.ID, active); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, msg, nil)
}

func (h *Handler) GetAdmins(w http.ResponseWriter, r *http.Request) {
	ids, err := h.repository.GetAdminUserIDs()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "", ids)
}

func (h *Handler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	h.setUserAdmin(w, r, true, "admin granted")
}

func (h *Handler) RevokeAdmin(w http.ResponseWriter, r *http.Request) {
	h.setUserAdmin(w, r, false, "admin revoked")
}

func (h *Handler) setUserAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool, msg string) {
	userID := chi.URLParam(r, "userID")

	if err := h.repository.SetUserAdmin(userID, isAdmin); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "user not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, msg, nil)
}
