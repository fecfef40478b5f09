package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/rpupo63/taskmanager/models"
	"github.com/rpupo63/taskmanager/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	rootHandler    rootHandler
	userHandler    userHandler
	sessionHandler sessionHandler
	statusHandler  namedHandler[models.Status]
	labelHandler   namedHandler[models.Label]
	taskHandler    taskHandler
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// formView describes where a form posts and how it is labelled
type formView struct {
	Heading string
	Action  string
	Method  string // value of the hidden _method field, empty for plain POST
	Submit  string
}

type namedItem struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type namedIndexView struct {
	Heading  string
	BasePath string
	Items    []namedItem
}

type userFormView struct {
	formView
	ShowPassword bool
}

type taskFormView struct {
	formView
	Options *services.TaskOptions
}

type taskIndexView struct {
	Tasks   []*models.Task
	Options *services.TaskOptions
}
