package api

import (
	"time"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, responder Responder, startupTime time.Time) *routeHandlers {
	validator := NewValidator()
	return &routeHandlers{
		rootHandler:    newRootHandler(responder, deps.DB, startupTime),
		userHandler:    newUserHandler(responder, validator, deps.Users),
		sessionHandler: newSessionHandler(responder, validator, deps.Users, deps.LoginLimiter),
		statusHandler:  newStatusHandler(responder, validator, deps.Statuses),
		labelHandler:   newLabelHandler(responder, validator, deps.Labels),
		taskHandler:    newTaskHandler(responder, validator, deps.Tasks),
	}
}
