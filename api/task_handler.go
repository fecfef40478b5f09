package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/models"
	"github.com/rpupo63/taskmanager/services"
)

type taskHandler struct {
	responder Responder
	logger    zerolog.Logger
	validator *Validator
	tasks     *services.TaskService
}

func newTaskHandler(responder Responder, validator *Validator, tasks *services.TaskService) taskHandler {
	logger := log.With().Str("handlerName", "taskHandler").Logger()
	return taskHandler{
		responder: responder.With(logger),
		logger:    logger,
		validator: validator,
		tasks:     tasks,
	}
}

// parseTaskQuery reads the listing filter from the query string. Empty fields are
// ignored; a malformed id is an error.
func parseTaskQuery(query url.Values) (services.TaskQuery, error) {
	var q services.TaskQuery
	for key, dst := range map[string]*uuid.UUID{
		"status":   &q.StatusID,
		"executor": &q.ExecutorID,
		"label":    &q.LabelID,
	} {
		raw := strings.TrimSpace(query.Get(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, fmt.Errorf("invalid %s filter %q: %w", key, raw, err)
		}
		*dst = id
	}

	switch strings.ToLower(query.Get("isCreatorUser")) {
	case "true", "on", "1":
		q.IsCreatorUser = true
	}
	return q, nil
}

func (h taskHandler) listTasks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseTaskQuery(r.URL.Query())
		if err != nil {
			h.logger.Info().Err(err).Msg("rejecting task filter")
			h.responder.Flash(w, r, auth.FlashDanger, "Invalid task filter", "/")
			return
		}

		tasks, err := h.tasks.List(r.Context(), query, ctxGetUserID(r.Context()))
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}
		options, err := h.tasks.Options(r.Context())
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}

		h.responder.Render(w, r, page{
			Name:  "tasks_index",
			Title: "Tasks",
			Data:  taskIndexView{Tasks: tasks, Options: options},
			Form:  r.URL.Query(),
		})
	}
}

func (h taskHandler) showTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "task")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		task, err := h.tasks.GetByID(r.Context(), id)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		h.responder.Render(w, r, page{Name: "task_show", Title: task.Name, Data: task})
	}
}

func (h taskHandler) newTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := h.tasks.Options(r.Context())
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}

		h.responder.Render(w, r, page{
			Name:  "task_form",
			Title: "Create task",
			Data: taskFormView{
				formView: formView{Heading: "Create task", Action: "/tasks", Submit: "Create"},
				Options:  options,
			},
		})
	}
}

func (h taskHandler) createTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks/new"})
			return
		}
		route := failRoute{Form: "/tasks/new", Fallback: "/tasks/new", Values: r.PostForm}

		form := parseTaskForm(r.PostForm)
		if err := h.validator.Validate("task", form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.tasks.Create(r.Context(), ctxGetUserID(r.Context()), form.input()); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashInfo, "Task created successfully", "/tasks")
	}
}

func (h taskHandler) editTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "task")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		task, err := h.tasks.GetByID(r.Context(), id)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}
		options, err := h.tasks.Options(r.Context())
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		h.responder.Render(w, r, page{
			Name:  "task_form",
			Title: "Edit task",
			Data: taskFormView{
				formView: formView{Heading: "Edit task", Action: "/tasks/" + id.String(), Method: "patch", Submit: "Update"},
				Options:  options,
			},
			Form: taskFormValues(task),
		})
	}
}

func (h taskHandler) updateTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "task")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}
		route := failRoute{Form: fmt.Sprintf("/tasks/%s/edit", id), Fallback: "/tasks", Values: r.PostForm}

		form := parseTaskForm(r.PostForm)
		if err := h.validator.Validate("task", form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.tasks.Update(r.Context(), id, ctxGetUserID(r.Context()), form.input()); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashSuccess, "Task updated successfully", "/tasks")
	}
}

func (h taskHandler) deleteTask() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "task")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		if err := h.tasks.Delete(r.Context(), id); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/tasks"})
			return
		}

		h.responder.Flash(w, r, auth.FlashSuccess, "Task deleted successfully", "/tasks")
	}
}

func taskFormValues(task *models.Task) url.Values {
	values := url.Values{
		"name":        {task.Name},
		"description": {task.Description},
		"statusId":    {task.StatusID.String()},
	}
	if task.ExecutorID != nil {
		values.Set("executorId", task.ExecutorID.String())
	}
	for _, label := range task.Labels {
		values.Add("labels", label.ID.String())
	}
	return values
}
