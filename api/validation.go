package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rpupo63/taskmanager/errs"
	"github.com/rpupo63/taskmanager/services"
)

// Validator wraps go-playground/validator and reports failures as errs validation errors
// keyed by form field name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("form")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate checks s and returns an *errs.Error of kind Validation naming each bad field
func (v *Validator) Validate(entity string, s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errs.NewMalformedPayloadError(entity, err)
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		name := e.Field()
		// labels[2] reports as labels
		if i := strings.IndexByte(name, '['); i > 0 {
			name = name[:i]
		}
		fieldErrors[name] = friendlyMessage(e)
	}
	return errs.NewValidationError(entity, fieldErrors)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "uuid":
		return "must be a valid id"
	case "dive":
		return "contains an invalid value"
	default:
		return "is invalid"
	}
}

type userForm struct {
	FirstName string `form:"firstName" validate:"required,max=100"`
	LastName  string `form:"lastName" validate:"required,max=100"`
	Email     string `form:"email" validate:"required,email,max=255"`
	Password  string `form:"password" validate:"required,min=3,max=100"`
}

func parseUserForm(values url.Values) userForm {
	return userForm{
		FirstName: strings.TrimSpace(values.Get("firstName")),
		LastName:  strings.TrimSpace(values.Get("lastName")),
		Email:     strings.TrimSpace(values.Get("email")),
		Password:  values.Get("password"),
	}
}

func (f userForm) input() services.UserInput {
	return services.UserInput{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Password: f.Password}
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func parseLoginForm(values url.Values) loginForm {
	return loginForm{
		Email:    strings.TrimSpace(values.Get("email")),
		Password: values.Get("password"),
	}
}

// nameForm is the single-field form shared by statuses and labels
type nameForm struct {
	Name string `form:"name" validate:"required,max=100"`
}

func parseNameForm(values url.Values) nameForm {
	return nameForm{Name: strings.TrimSpace(values.Get("name"))}
}

type taskForm struct {
	Name        string   `form:"name" validate:"required,max=100"`
	Description string   `form:"description" validate:"required,max=10000"`
	StatusID    string   `form:"statusId" validate:"required,uuid"`
	ExecutorID  string   `form:"executorId" validate:"omitempty,uuid"`
	Labels      []string `form:"labels" validate:"dive,uuid"`
}

func parseTaskForm(values url.Values) taskForm {
	f := taskForm{
		Name:        strings.TrimSpace(values.Get("name")),
		Description: strings.TrimSpace(values.Get("description")),
		StatusID:    strings.TrimSpace(values.Get("statusId")),
		ExecutorID:  strings.TrimSpace(values.Get("executorId")),
	}
	for _, id := range values["labels"] {
		if id = strings.TrimSpace(id); id != "" {
			f.Labels = append(f.Labels, id)
		}
	}
	return f
}

// input converts a validated form. Ids were checked by the validator.
func (f taskForm) input() services.TaskInput {
	in := services.TaskInput{
		Name:        f.Name,
		Description: f.Description,
		StatusID:    uuid.MustParse(f.StatusID),
	}
	if f.ExecutorID != "" {
		id := uuid.MustParse(f.ExecutorID)
		in.ExecutorID = &id
	}
	for _, label := range f.Labels {
		in.LabelIDs = append(in.LabelIDs, uuid.MustParse(label))
	}
	return in
}
