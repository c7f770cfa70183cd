package api

import (
	"net/http"

	"todo-app/internal/service"
)

func (h *handler) handleListTags(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	tags, err := h.tags.List(r.Context(), userID)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newTagResponses(tags), "")
}

func (h *handler) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var input service.TagInput
	if err := h.api.DecodeJSON(r, &input); err != nil {
		h.api.Err(w, r, err)
		return
	}

	tag, err := h.tags.Create(r.Context(), userID, input)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, newTagResponse(*tag), "Tag created successfully")
}

func (h *handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newCategoryResponses(categories), "")
}
