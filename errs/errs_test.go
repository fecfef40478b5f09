package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestKindMatching(t *testing.T) {
	err := fmt.Errorf("loading status: %w", NewNotFound("status"))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsInUse(err))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestNewDatabaseError(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		entity    string
		cause     error
		want      Kind
	}{
		{"record not found", "find", "task", gorm.ErrRecordNotFound, KindNotFound},
		{"duplicated key", "create", "status", gorm.ErrDuplicatedKey, KindNameExists},
		{"duplicated email", "create", "user", errors.New("UNIQUE constraint failed: users.email"), KindEmailExists},
		{"postgres duplicate", "update", "label", errors.New(`ERROR: duplicate key value violates unique constraint "idx_labels_name"`), KindNameExists},
		{"fk on delete", "delete", "status", errors.New("FOREIGN KEY constraint failed"), KindInUse},
		{"fk on insert", "relate", "label", gorm.ErrForeignKeyViolated, KindNotFound},
		{"anything else", "find", "task", errors.New("syntax error"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDatabaseError(tt.operation, tt.entity, tt.cause)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.cause)
		})
	}

	assert.NoError(t, NewDatabaseError("find", "task", nil))
}

func TestNewDatabaseErrorKeepsDomainErrors(t *testing.T) {
	inUse := NewInUse("label")
	assert.Same(t, inUse, NewDatabaseError("delete", "label", inUse))
}

func TestGetFullError(t *testing.T) {
	err := NewInternalErrorWithCause("save task", NewNameExists("task", "write docs"))
	assert.Equal(t, "save task -> task name already exists: write docs", err.GetFullError())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("task", map[string]string{"name": "is required", "description": "is required"})

	assert.True(t, IsValidation(err))
	assert.Equal(t, "description", err.Field)
	assert.Len(t, err.Fields, 2)
}
