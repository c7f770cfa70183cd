package api

import (
	"net/http"

	"todo-app/internal/auth"
	"todo-app/internal/model"
	"todo-app/internal/service"
)

func (h *handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	user, err := h.profiles.Get(r.Context(), claims)
	h.respondProfile(w, r, user, err, http.StatusOK, "")
}

func (h *handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	var input service.ProfileInput
	if err := h.api.DecodeJSON(r, &input); err != nil {
		h.api.Err(w, r, err)
		return
	}

	user, err := h.profiles.Create(r.Context(), claims, input)
	h.respondProfile(w, r, user, err, http.StatusCreated, "User profile created successfully")
}

func (h *handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	var input service.ProfileInput
	if err := h.api.DecodeJSON(r, &input); err != nil {
		h.api.Err(w, r, err)
		return
	}

	user, err := h.profiles.Update(r.Context(), claims, input)
	h.respondProfile(w, r, user, err, http.StatusOK, "User profile updated successfully")
}

func (h *handler) respondProfile(w http.ResponseWriter, r *http.Request, user *model.User, err error, status int, message string) {
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, status, newUserProfileResponse(*user), message)
}
