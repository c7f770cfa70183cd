package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"todo-app/internal/auth"
	"todo-app/internal/errs"
	"todo-app/internal/repository"
	"todo-app/internal/service"
)

// userID resolves the caller behind the verified claims.
func (h *handler) userID(r *http.Request) (uuid.UUID, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return uuid.Nil, errs.Unauthenticated("api.user", "user not authenticated")
	}
	return h.resolver.Resolve(r.Context(), claims)
}

// taskID parses the {id} path segment. A malformed id cannot name a task the
// caller owns, so it reads as not found.
func taskID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errs.NotFound("api.task", "task not found")
	}
	return id, nil
}

func decodeTaskFilter(r *http.Request) (repository.TaskFilter, error) {
	q := r.URL.Query()
	filter := repository.TaskFilter{
		Category: q.Get("category"),
		Tag:      q.Get("tag"),
	}
	if raw := q.Get("isCompleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errs.Invalid("api.tasks", fmt.Errorf("isCompleted: must be true or false"))
		}
		filter.IsCompleted = &v
	}
	return filter, nil
}

func (h *handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	filter, err := decodeTaskFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newTaskResponses(tasks), "")
}

func (h *handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	id, err := taskID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newTaskResponse(*task), "")
}

func (h *handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var input service.TaskInput
	if err := h.api.DecodeJSON(r, &input); err != nil {
		h.api.Err(w, r, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, input)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusCreated, newTaskResponse(*task), "Task created successfully")
}

func (h *handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	id, err := taskID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var input service.TaskInput
	if err := h.api.DecodeJSON(r, &input); err != nil {
		h.api.Err(w, r, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, id, input)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newTaskResponse(*task), "Task updated successfully")
}

type taskStatusRequest struct {
	IsCompleted *bool `json:"isCompleted"`
}

func (h *handler) handleSetTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	id, err := taskID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	var req taskStatusRequest
	if err := h.api.DecodeJSON(r, &req); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if req.IsCompleted == nil {
		h.api.Err(w, r, errs.Invalid("api.task_status", fmt.Errorf("isCompleted: is required")))
		return
	}

	task, err := h.tasks.SetStatus(r.Context(), userID, id, *req.IsCompleted)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, newTaskResponse(*task), "Task status updated successfully")
}

func (h *handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	id, err := taskID(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, id); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, r, http.StatusOK, nil, "Task deleted successfully")
}
