package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/services"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	validator *Validator
	users     *services.UserService
}

func newUserHandler(responder Responder, validator *Validator, users *services.UserService) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()
	return userHandler{
		responder: responder.With(logger),
		logger:    logger,
		validator: validator,
		users:     users,
	}
}

func (h userHandler) listUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.users.List(r.Context())
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}
		h.responder.Render(w, r, page{Name: "users_index", Title: "Users", Data: users})
	}
}

func (h userHandler) newUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.Render(w, r, page{
			Name:  "user_form",
			Title: "Registration",
			Data: userFormView{
				formView:     formView{Heading: "Registration", Action: "/users", Submit: "Save"},
				ShowPassword: true,
			},
		})
	}
}

func (h userHandler) createUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/users/new"})
			return
		}
		route := failRoute{Form: "/users/new", Fallback: "/users/new", Values: r.PostForm}

		form := parseUserForm(r.PostForm)
		if err := h.validator.Validate("user", form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.users.Create(r.Context(), form.input()); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashInfo, "User registered successfully", "/")
	}
}

func (h userHandler) editUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}

		user, err := h.users.GetAuthorized(r.Context(), id, ctxGetUserID(r.Context()))
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}

		h.responder.Render(w, r, page{
			Name:  "user_form",
			Title: "Edit user",
			Data: userFormView{
				formView:     formView{Heading: "Edit user", Action: "/users/" + id.String(), Method: "patch", Submit: "Update"},
				ShowPassword: true,
			},
			Form: url.Values{
				"firstName": {user.FirstName},
				"lastName":  {user.LastName},
				"email":     {user.Email},
			},
		})
	}
}

func (h userHandler) updateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/users"})
			return
		}
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/users"})
			return
		}
		route := failRoute{Form: fmt.Sprintf("/users/%s/edit", id), Fallback: "/users", Values: r.PostForm}

		form := parseUserForm(r.PostForm)
		if err := h.validator.Validate("user", form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.users.Update(r.Context(), id, ctxGetUserID(r.Context()), form.input()); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashSuccess, "User updated successfully", "/users")
	}
}

func (h userHandler) deleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/users"})
			return
		}

		session := ctxGetSession(r.Context())
		if err := h.users.Delete(r.Context(), id, session.UserID); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/users"})
			return
		}

		// the deleted account was the caller's own
		session.ClearUser()
		h.responder.Flash(w, r, auth.FlashSuccess, "User deleted successfully", "/users")
	}
}
