package handlers

import (
	"net/http"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.internalError(w, err, "User listing failed")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, err, "User lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
