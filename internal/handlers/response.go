package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/tastebook/tastebook/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// internalError hides collaborator failures behind a generic 500; the
// detail stays in the server log.
func (h *Handler) internalError(w http.ResponseWriter, err error, context string) {
	h.log.WithError(err).Error(context)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeAndValidate unmarshals the JSON body into dst and applies its
// validate tags. The returned error message is safe to show the client.
func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("Invalid request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			return errors.New("Invalid value for field " + fieldErrors[0].Field())
		}
		return errors.New("Invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
