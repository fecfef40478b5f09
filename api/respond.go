package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/errs"
)

type Responder struct {
	logger   zerolog.Logger
	sessions *auth.SessionManager
	views    *renderer
}

func NewResponder(logger zerolog.Logger, sessions *auth.SessionManager, views *renderer) Responder {
	return Responder{logger: logger, sessions: sessions, views: views}
}

// With returns a copy of the responder logging through logger
func (r Responder) With(logger zerolog.Logger) Responder {
	r.logger = logger
	return r
}

// page is one rendered view. Form holds the values a form starts with when no
// submission was carried over from a failed request.
type page struct {
	Name  string
	Title string
	Data  any
	Form  url.Values
}

// Render writes a page with the session's pending flashes and carried-over form.
// The session is saved before the body so the popped flashes are not shown twice.
func (r Responder) Render(w http.ResponseWriter, req *http.Request, p page) {
	session := ctxGetSession(req.Context())
	form, fieldErrors := session.PopForm()
	if len(form) == 0 {
		form = p.Form
	}
	if form == nil {
		form = url.Values{}
	}
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}

	data := viewData{
		Title:           p.Title,
		IsAuthenticated: session.IsAuthenticated(),
		CurrentUserID:   session.UserID,
		Flashes:         session.PopFlashes(),
		Form:            form,
		Errors:          fieldErrors,
		Data:            p.Data,
	}

	var buf bytes.Buffer
	if err := r.views.render(&buf, p.Name, data); err != nil {
		r.logger.Error().Err(err).
			Str("page", p.Name).
			Str("requestId", middleware.GetReqID(req.Context())).
			Msg("error rendering page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := r.sessions.Save(w, session); err != nil {
		r.logger.Error().Err(err).Msg("error saving session")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// Redirect saves the session and sends the browser to target
func (r Responder) Redirect(w http.ResponseWriter, req *http.Request, target string) {
	if err := r.sessions.Save(w, ctxGetSession(req.Context())); err != nil {
		r.logger.Error().Err(err).Msg("error saving session")
	}
	http.Redirect(w, req, target, http.StatusFound)
}

// Flash queues a message and redirects
func (r Responder) Flash(w http.ResponseWriter, req *http.Request, kind auth.FlashKind, message, target string) {
	ctxGetSession(req.Context()).AddFlash(kind, message)
	r.Redirect(w, req, target)
}

// failRoute tells Fail where to send the caller. Form receives input-related
// failures along with the submitted values; everything else goes to Fallback.
type failRoute struct {
	Form     string
	Fallback string
	Values   url.Values
}

// Fail maps an error kind to a flash and a redirect
func (r Responder) Fail(w http.ResponseWriter, req *http.Request, err error, route failRoute) {
	session := ctxGetSession(req.Context())

	var e *errs.Error
	if !errors.As(err, &e) {
		e = errs.NewInternalErrorWithCause("unexpected error", err)
	}

	logger := r.logger.With().
		Str("kind", e.Kind.String()).
		Str("entity", e.Entity).
		Str("callerId", session.UserID.String()).
		Str("requestId", middleware.GetReqID(req.Context())).
		Logger()

	fallback := route.Fallback
	if fallback == "" {
		fallback = "/"
	}

	switch e.Kind {
	case errs.KindNameExists, errs.KindEmailExists, errs.KindValidation, errs.KindInvalidCredentials:
		logger.Info().Msg(e.Error())
		session.AddFlash(auth.FlashWarning, flashMessage(e))
		session.KeepForm(route.Values, fieldErrors(e))
		target := route.Form
		if target == "" {
			target = fallback
		}
		r.Redirect(w, req, target)
	case errs.KindNotFound, errs.KindForbidden, errs.KindInUse:
		logger.Info().Msg(e.Error())
		r.Flash(w, req, auth.FlashWarning, flashMessage(e), fallback)
	case errs.KindUnauthorized:
		r.Flash(w, req, auth.FlashDanger, flashMessage(e), "/")
	default:
		logger.Error().Str("error", e.GetFullError()).Msg("request failed")
		r.Flash(w, req, auth.FlashDanger, flashMessage(e), fallback)
	}
}

func flashMessage(e *errs.Error) string {
	entity := capitalize(e.Entity)
	switch e.Kind {
	case errs.KindNotFound:
		return entity + " not found"
	case errs.KindNameExists:
		return entity + " with this name already exists"
	case errs.KindEmailExists:
		return "User with this email already exists"
	case errs.KindInUse:
		return entity + " is in use and cannot be deleted"
	case errs.KindForbidden:
		return "You cannot edit or delete another user"
	case errs.KindInvalidCredentials:
		return "Invalid email or password"
	case errs.KindValidation:
		return "Please correct the errors below"
	case errs.KindUnauthorized:
		return "Access denied. Please log in."
	default:
		return "Something went wrong. Please try again."
	}
}

func fieldErrors(e *errs.Error) map[string]string {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	switch e.Kind {
	case errs.KindNameExists:
		return map[string]string{"name": "is already taken"}
	case errs.KindEmailExists:
		return map[string]string{"email": "is already taken"}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return "Record"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
