package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/models"
)

// namedStore is a store of records identified by a unique name: statuses and labels
type namedStore[T any] interface {
	List(ctx context.Context) ([]*T, error)
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, name string) (*T, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// namedHandler serves the list, form and mutation routes of a named resource
type namedHandler[T any] struct {
	responder Responder
	logger    zerolog.Logger
	validator *Validator
	store     namedStore[T]
	entity    string // "status"
	plural    string // "Statuses"
	basePath  string // "/statuses"
	item      func(*T) namedItem
}

func newStatusHandler(responder Responder, validator *Validator, store namedStore[models.Status]) namedHandler[models.Status] {
	return newNamedHandler(responder, validator, store, "status", "Statuses", "/statuses", func(s *models.Status) namedItem {
		return namedItem{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
	})
}

func newLabelHandler(responder Responder, validator *Validator, store namedStore[models.Label]) namedHandler[models.Label] {
	return newNamedHandler(responder, validator, store, "label", "Labels", "/labels", func(l *models.Label) namedItem {
		return namedItem{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
	})
}

func newNamedHandler[T any](responder Responder, validator *Validator, store namedStore[T], entity, plural, basePath string, item func(*T) namedItem) namedHandler[T] {
	logger := log.With().Str("handlerName", entity+"Handler").Logger()
	return namedHandler[T]{
		responder: responder.With(logger),
		logger:    logger,
		validator: validator,
		store:     store,
		entity:    entity,
		plural:    plural,
		basePath:  basePath,
		item:      item,
	}
}

func (h namedHandler[T]) title() string {
	return capitalize(h.entity)
}

func (h namedHandler[T]) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := h.store.List(r.Context())
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: "/"})
			return
		}

		items := make([]namedItem, 0, len(records))
		for _, record := range records {
			items = append(items, h.item(record))
		}
		h.responder.Render(w, r, page{
			Name:  "named_index",
			Title: h.plural,
			Data:  namedIndexView{Heading: h.plural, BasePath: h.basePath, Items: items},
		})
	}
}

func (h namedHandler[T]) newForm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		heading := "Create " + h.entity
		h.responder.Render(w, r, page{
			Name:  "named_form",
			Title: heading,
			Data:  formView{Heading: heading, Action: h.basePath, Submit: "Create"},
		})
	}
}

func (h namedHandler[T]) create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		newPath := h.basePath + "/new"
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: newPath})
			return
		}
		route := failRoute{Form: newPath, Fallback: newPath, Values: r.PostForm}

		form := parseNameForm(r.PostForm)
		if err := h.validator.Validate(h.entity, form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.store.Create(r.Context(), form.Name); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashInfo, h.title()+" created successfully", h.basePath)
	}
}

func (h namedHandler[T]) edit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, h.entity)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}

		record, err := h.store.GetByID(r.Context(), id)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}

		heading := "Edit " + h.entity
		h.responder.Render(w, r, page{
			Name:  "named_form",
			Title: heading,
			Data:  formView{Heading: heading, Action: fmt.Sprintf("%s/%s", h.basePath, id), Method: "patch", Submit: "Update"},
			Form:  url.Values{"name": {h.item(record).Name}},
		})
	}
}

func (h namedHandler[T]) update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, h.entity)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}
		if err := r.ParseForm(); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}
		route := failRoute{Form: fmt.Sprintf("%s/%s/edit", h.basePath, id), Fallback: h.basePath, Values: r.PostForm}

		form := parseNameForm(r.PostForm)
		if err := h.validator.Validate(h.entity, form); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		if _, err := h.store.Update(r.Context(), id, form.Name); err != nil {
			h.responder.Fail(w, r, err, route)
			return
		}

		h.responder.Flash(w, r, auth.FlashSuccess, h.title()+" updated successfully", h.basePath)
	}
}

func (h namedHandler[T]) destroy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, h.entity)
		if err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}

		if err := h.store.Delete(r.Context(), id); err != nil {
			h.responder.Fail(w, r, err, failRoute{Fallback: h.basePath})
			return
		}

		h.responder.Flash(w, r, auth.FlashSuccess, h.title()+" deleted successfully", h.basePath)
	}
}
