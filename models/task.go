package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task references its status, creator and executor through explicit foreign keys.
// The relation fields exist so migrations declare the constraints; they are filled
// by the task repository with batched queries, never by gorm preloading.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name        string     `json:"name" db:"name" gorm:"type:varchar(100);not null;index:idx_tasks_name"`
	Description string     `json:"description" db:"description" gorm:"type:text;not null"`
	StatusID    uuid.UUID  `json:"statusId" db:"status_id" gorm:"type:uuid;not null;index:idx_tasks_status_id"`
	CreatorID   uuid.UUID  `json:"creatorId" db:"creator_id" gorm:"type:uuid;not null;index:idx_tasks_creator_id"`
	ExecutorID  *uuid.UUID `json:"executorId,omitempty" db:"executor_id" gorm:"type:uuid;index:idx_tasks_executor_id"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" gorm:"not null"`

	Status   Status  `json:"status" gorm:"foreignKey:StatusID;references:ID;constraint:OnDelete:RESTRICT"`
	Creator  User    `json:"creator" gorm:"foreignKey:CreatorID;references:ID;constraint:OnDelete:RESTRICT"`
	Executor *User   `json:"executor,omitempty" gorm:"foreignKey:ExecutorID;references:ID;constraint:OnDelete:RESTRICT"`
	Labels   []Label `json:"labels" gorm:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// HasLabel reports whether the label is in the task's loaded label set.
func (t Task) HasLabel(id uuid.UUID) bool {
	for _, l := range t.Labels {
		if l.ID == id {
			return true
		}
	}
	return false
}
