package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes registers the public pages and the routes that need a logged-in user
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/healthz", handlers.rootHandler.health())

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.loadSession)

		// Public pages
		r.Get("/", handlers.rootHandler.welcome())
		r.Get("/users", handlers.userHandler.listUsers())
		r.Get("/users/new", handlers.userHandler.newUser())
		r.Post("/users", handlers.userHandler.createUser())
		r.Get("/session/new", handlers.sessionHandler.newSession())
		r.Post("/session", handlers.sessionHandler.createSession())
		r.Delete("/session", handlers.sessionHandler.deleteSession())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Get("/users/{id}/edit", handlers.userHandler.editUser())
			r.Patch("/users/{id}", handlers.userHandler.updateUser())
			r.Delete("/users/{id}", handlers.userHandler.deleteUser())

			r.Route("/statuses", func(r chi.Router) {
				r.Get("/", handlers.statusHandler.list())
				r.Get("/new", handlers.statusHandler.newForm())
				r.Post("/", handlers.statusHandler.create())
				r.Get("/{id}/edit", handlers.statusHandler.edit())
				r.Patch("/{id}", handlers.statusHandler.update())
				r.Delete("/{id}", handlers.statusHandler.destroy())
			})

			r.Route("/labels", func(r chi.Router) {
				r.Get("/", handlers.labelHandler.list())
				r.Get("/new", handlers.labelHandler.newForm())
				r.Post("/", handlers.labelHandler.create())
				r.Get("/{id}/edit", handlers.labelHandler.edit())
				r.Patch("/{id}", handlers.labelHandler.update())
				r.Delete("/{id}", handlers.labelHandler.destroy())
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", handlers.taskHandler.listTasks())
				r.Get("/new", handlers.taskHandler.newTask())
				r.Post("/", handlers.taskHandler.createTask())
				r.Get("/{id}", handlers.taskHandler.showTask())
				r.Get("/{id}/edit", handlers.taskHandler.editTask())
				r.Patch("/{id}", handlers.taskHandler.updateTask())
				r.Delete("/{id}", handlers.taskHandler.deleteTask())
			})
		})
	})
}
