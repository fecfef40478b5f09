package database

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rpupo63/taskmanager/models"
)

// TaskFilter narrows a task listing. A zero id means the predicate is skipped;
// the predicates that are set are combined with AND.
type TaskFilter struct {
	StatusID   uuid.UUID
	ExecutorID uuid.UUID
	CreatorID  uuid.UUID
	LabelID    uuid.UUID
}

type TaskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) *TaskRepo {
	return &TaskRepo{db}
}

// Find returns the tasks matching the filter with their relations loaded
func (r *TaskRepo) Find(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if filter.StatusID != uuid.Nil {
		query = query.Where("tasks.status_id = ?", filter.StatusID)
	}
	if filter.ExecutorID != uuid.Nil {
		query = query.Where("tasks.executor_id = ?", filter.ExecutorID)
	}
	if filter.CreatorID != uuid.Nil {
		query = query.Where("tasks.creator_id = ?", filter.CreatorID)
	}
	if filter.LabelID != uuid.Nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM task_labels WHERE task_labels.task_id = tasks.id AND task_labels.label_id = ?)",
			filter.LabelID,
		)
	}

	var tasks []*models.Task
	if err := query.Order("tasks.created_at").Order("tasks.name").Find(&tasks).Error; err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByID returns nil without an error when no task has the id
func (r *TaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var tasks []*models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	if err := r.loadRelations(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks[0], nil
}

// FindByName returns the bare task row, without relations
func (r *TaskRepo) FindByName(ctx context.Context, name string) (*models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

// Add inserts the task row only; relations are written by their own repositories
func (r *TaskRepo) Add(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// Update patches the given columns of a task
func (r *TaskRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes a task; its label links go with it through the cascade
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	return res.RowsAffected, res.Error
}

func (r *TaskRepo) CountByStatus(ctx context.Context, statusID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("status_id = ?", statusID).Count(&count).Error
	return count, err
}

// CountByUser counts the tasks a user created or executes
func (r *TaskRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("creator_id = ? OR executor_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

// loadRelations fills status, creator, executor and labels with one query per
// relation for the whole batch. Users are sanitized.
func (r *TaskRepo) loadRelations(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)

	taskIDs := make([]uuid.UUID, 0, len(tasks))
	statusIDs := make(map[uuid.UUID]struct{})
	userIDs := make(map[uuid.UUID]struct{})
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		statusIDs[t.StatusID] = struct{}{}
		userIDs[t.CreatorID] = struct{}{}
		if t.ExecutorID != nil {
			userIDs[*t.ExecutorID] = struct{}{}
		}
	}

	var statuses []models.Status
	if err := db.Where("id IN ?", keys(statusIDs)).Find(&statuses).Error; err != nil {
		return err
	}
	statusByID := make(map[uuid.UUID]models.Status, len(statuses))
	for _, s := range statuses {
		statusByID[s.ID] = s
	}

	var users []models.User
	if err := db.Where("id IN ?", keys(userIDs)).Find(&users).Error; err != nil {
		return err
	}
	userByID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u.Sanitize()
	}

	links, err := NewTaskLabelRepo(r.db).FindByTaskIDs(ctx, taskIDs)
	if err != nil {
		return err
	}
	labelIDs := make(map[uuid.UUID]struct{})
	for _, link := range links {
		labelIDs[link.LabelID] = struct{}{}
	}
	labelByID := make(map[uuid.UUID]models.Label, len(labelIDs))
	if len(labelIDs) > 0 {
		var labels []models.Label
		if err := db.Where("id IN ?", keys(labelIDs)).Find(&labels).Error; err != nil {
			return err
		}
		for _, l := range labels {
			labelByID[l.ID] = l
		}
	}
	labelsByTask := make(map[uuid.UUID][]models.Label, len(tasks))
	for _, link := range links {
		if l, ok := labelByID[link.LabelID]; ok {
			labelsByTask[link.TaskID] = append(labelsByTask[link.TaskID], l)
		}
	}

	for _, t := range tasks {
		t.Status = statusByID[t.StatusID]
		t.Creator = userByID[t.CreatorID]
		t.Executor = nil
		if t.ExecutorID != nil {
			if u, ok := userByID[*t.ExecutorID]; ok {
				executor := u
				t.Executor = &executor
			}
		}
		t.Labels = labelsByTask[t.ID]
		if t.Labels == nil {
			t.Labels = []models.Label{}
		}
		sort.Slice(t.Labels, func(i, j int) bool { return t.Labels[i].Name < t.Labels[j].Name })
	}
	return nil
}

func keys(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
