package handlers

import (
	"net/http"

	"github.com/tastebook/tastebook/internal/auth"
	"github.com/tastebook/tastebook/internal/models"
)

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3"`
	Password    string `json:"password" validate:"required,min=6,containsany=0123456789"`
	RealName    string `json:"realName" validate:"omitempty,min=1"`
	Description string `json:"description"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
}

type updateAccountRequest struct {
	Password    *string `json:"password" validate:"omitempty,min=6,containsany=0123456789"`
	RealName    *string `json:"realName" validate:"omitempty,min=1"`
	Description *string `json:"description"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.users.FindByUsername(r.Context(), req.Username); err == nil {
		respondError(w, http.StatusBadRequest, "Username already exists")
		return
	} else if !isNotFound(err) {
		h.internalError(w, err, "Username lookup failed")
		return
	}

	hashed, err := h.tokens.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, err, "Password hashing failed")
		return
	}

	user := &models.User{
		Username:    req.Username,
		Password:    hashed,
		RealName:    req.RealName,
		Description: req.Description,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		h.internalError(w, err, "User creation failed")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.FindByUsername(r.Context(), req.Username)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.internalError(w, err, "User lookup failed")
		return
	}

	if !h.tokens.CheckPassword(user.Password, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.internalError(w, err, "Token issuance failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	var req updateAccountRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.FindByID(r.Context(), userID)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, err, "User lookup failed")
		return
	}

	if req.Password != nil {
		hashed, err := h.tokens.HashPassword(*req.Password)
		if err != nil {
			h.internalError(w, err, "Password hashing failed")
			return
		}
		user.Password = hashed
	}
	if req.RealName != nil {
		user.RealName = *req.RealName
	}
	if req.Description != nil {
		user.Description = *req.Description
	}

	if err := h.users.Save(r.Context(), user); err != nil {
		h.internalError(w, err, "User update failed")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r)

	if err := h.users.Delete(r.Context(), userID); err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, err, "User deletion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
