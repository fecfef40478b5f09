package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/taskmanager/models"
)

type TaskLabelRepo struct {
	db *gorm.DB
}

func NewTaskLabelRepo(db *gorm.DB) *TaskLabelRepo {
	return &TaskLabelRepo{db}
}

// FindByTaskIDs returns the links of all given tasks
func (r *TaskLabelRepo) FindByTaskIDs(ctx context.Context, taskIDs []uuid.UUID) ([]models.TaskLabel, error) {
	var links []models.TaskLabel
	if len(taskIDs) == 0 {
		return links, nil
	}
	err := r.db.WithContext(ctx).Where("task_id IN ?", taskIDs).Find(&links).Error
	return links, err
}

// LabelIDs returns the ids of the labels currently related to a task
func (r *TaskLabelRepo) LabelIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	links, err := r.FindByTaskIDs(ctx, []uuid.UUID{taskID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.LabelID)
	}
	return ids, nil
}

// Relate links a task to each label
func (r *TaskLabelRepo) Relate(ctx context.Context, taskID uuid.UUID, labelIDs []uuid.UUID) error {
	if len(labelIDs) == 0 {
		return nil
	}
	links := make([]models.TaskLabel, 0, len(labelIDs))
	for _, labelID := range labelIDs {
		links = append(links, models.TaskLabel{TaskID: taskID, LabelID: labelID})
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&links).Error
}

// Unrelate removes the links between a task and the labels, leaving both entities
func (r *TaskLabelRepo) Unrelate(ctx context.Context, taskID uuid.UUID, labelIDs []uuid.UUID) error {
	if len(labelIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("task_id = ? AND label_id IN ?", taskID, labelIDs).
		Delete(&models.TaskLabel{}).Error
}

// CountByLabel counts the tasks related to a label
func (r *TaskLabelRepo) CountByLabel(ctx context.Context, labelID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskLabel{}).Where("label_id = ?", labelID).Count(&count).Error
	return count, err
}
