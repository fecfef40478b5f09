package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskLabel links a task to a label. Removing a task removes its links; a linked
// label cannot be removed.
type TaskLabel struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	TaskID    uuid.UUID `json:"taskId" db:"task_id" gorm:"type:uuid;not null;index:idx_task_labels_task_id;uniqueIndex:idx_task_labels_unique"`
	LabelID   uuid.UUID `json:"labelId" db:"label_id" gorm:"type:uuid;not null;index:idx_task_labels_label_id;uniqueIndex:idx_task_labels_unique"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"not null"`

	Task  Task  `json:"-" gorm:"foreignKey:TaskID;references:ID;constraint:OnDelete:CASCADE"`
	Label Label `json:"-" gorm:"foreignKey:LabelID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (tl *TaskLabel) BeforeCreate(tx *gorm.DB) error {
	if tl.ID == uuid.Nil {
		tl.ID = uuid.New()
	}
	return nil
}
