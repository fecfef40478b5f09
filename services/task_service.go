package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/errs"
	"github.com/rpupo63/taskmanager/models"
)

type TaskInput struct {
	Name        string
	Description string
	StatusID    uuid.UUID
	ExecutorID  *uuid.UUID
	LabelIDs    []uuid.UUID
}

// TaskQuery is the listing filter as submitted by the caller. IsCreatorUser
// restricts the listing to tasks the caller created.
type TaskQuery struct {
	StatusID      uuid.UUID
	ExecutorID    uuid.UUID
	LabelID       uuid.UUID
	IsCreatorUser bool
}

// TaskOptions feeds the select boxes of the task forms and the filter bar.
type TaskOptions struct {
	Statuses []*models.Status
	Users    []models.User
	Labels   []*models.Label
}

type TaskService struct {
	db              database.Database
	reassignCreator bool
	logger          zerolog.Logger
}

// NewTaskService builds the task store. With reassignCreator set, every update
// records the editor as the task's creator.
func NewTaskService(db database.Database, reassignCreator bool) *TaskService {
	return &TaskService{
		db:              db,
		reassignCreator: reassignCreator,
		logger:          log.With().Str("service", "taskService").Logger(),
	}
}

func (s *TaskService) List(ctx context.Context, q TaskQuery, callerID uuid.UUID) ([]*models.Task, error) {
	filter := database.TaskFilter{
		StatusID:   q.StatusID,
		ExecutorID: q.ExecutorID,
		LabelID:    q.LabelID,
	}
	if q.IsCreatorUser {
		if callerID == uuid.Nil {
			return []*models.Task{}, nil
		}
		filter.CreatorID = callerID
	}

	tasks, err := s.db.TaskRepo().Find(ctx, filter)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.db.TaskRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "task", err)
	}
	if task == nil {
		return nil, errs.NewNotFound("task")
	}
	return task, nil
}

// Create inserts the task and its label links in one transaction. A link that
// cannot be written rolls the task back with it.
func (s *TaskService) Create(ctx context.Context, callerID uuid.UUID, in TaskInput) (*models.Task, error) {
	logger := s.logger.With().Str("method", "create").Str("callerId", callerID.String()).Logger()

	var created *models.Task
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.TaskRepo().FindByName(ctx, in.Name)
		if err != nil {
			return errs.NewDatabaseError("find", "task", err)
		}
		if existing != nil {
			return errs.NewNameExists("task", in.Name)
		}
		if err := checkReferences(ctx, tx, in); err != nil {
			return err
		}

		task := &models.Task{
			Name:        in.Name,
			Description: in.Description,
			StatusID:    in.StatusID,
			CreatorID:   callerID,
			ExecutorID:  in.ExecutorID,
		}
		if err := tx.TaskRepo().Add(ctx, task); err != nil {
			return errs.NewDatabaseError("create", "task", err)
		}
		if err := tx.TaskLabelRepo().Relate(ctx, task.ID, dedupe(in.LabelIDs)); err != nil {
			return errs.NewDatabaseError("relate", "label", err)
		}

		created, err = tx.TaskRepo().FindByID(ctx, task.ID)
		if err != nil {
			return errs.NewDatabaseError("find", "task", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("create task", err)
	}

	logger.Info().Str("taskId", created.ID.String()).Msg("task created")
	return created, nil
}

// Update rewrites the task's fields and replaces its label set with the submitted
// one: links that are no longer wanted are removed, new ones added.
func (s *TaskService) Update(ctx context.Context, id, callerID uuid.UUID, in TaskInput) (*models.Task, error) {
	logger := s.logger.With().Str("method", "update").Str("callerId", callerID.String()).Str("taskId", id.String()).Logger()

	var updated *models.Task
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		current, err := tx.TaskRepo().FindByName(ctx, in.Name)
		if err != nil {
			return errs.NewDatabaseError("find", "task", err)
		}
		if current != nil && current.ID != id {
			return errs.NewNameExists("task", in.Name)
		}
		if current == nil {
			found, err := tx.TaskRepo().FindByID(ctx, id)
			if err != nil {
				return errs.NewDatabaseError("find", "task", err)
			}
			if found == nil {
				return errs.NewNotFound("task")
			}
		}
		if err := checkReferences(ctx, tx, in); err != nil {
			return err
		}

		var executor interface{}
		if in.ExecutorID != nil {
			executor = *in.ExecutorID
		}
		fields := map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"status_id":   in.StatusID,
			"executor_id": executor,
		}
		if s.reassignCreator {
			fields["creator_id"] = callerID
		}
		if _, err := tx.TaskRepo().Update(ctx, id, fields); err != nil {
			return errs.NewDatabaseError("update", "task", err)
		}

		linked, err := tx.TaskLabelRepo().LabelIDs(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		toRelate, toUnrelate := diffLabels(linked, dedupe(in.LabelIDs))
		if err := tx.TaskLabelRepo().Unrelate(ctx, id, toUnrelate); err != nil {
			return errs.NewDatabaseError("unrelate", "label", err)
		}
		if err := tx.TaskLabelRepo().Relate(ctx, id, toRelate); err != nil {
			return errs.NewDatabaseError("relate", "label", err)
		}

		updated, err = tx.TaskRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "task", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("update task", err)
	}

	logger.Info().Int("labels", len(updated.Labels)).Msg("task updated")
	return updated, nil
}

// checkReferences reports a missing status or executor as a field error so the
// submitted form is shown again.
func checkReferences(ctx context.Context, tx database.Database, in TaskInput) error {
	fields := map[string]string{}

	status, err := tx.StatusRepo().FindByID(ctx, in.StatusID)
	if err != nil {
		return errs.NewDatabaseError("find", "status", err)
	}
	if status == nil {
		fields["statusId"] = "does not exist"
	}

	if in.ExecutorID != nil {
		executor, err := tx.UserRepo().FindByID(ctx, *in.ExecutorID)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		if executor == nil {
			fields["executorId"] = "does not exist"
		}
	}

	if len(fields) > 0 {
		return errs.NewValidationError("task", fields)
	}
	return nil
}

// Delete removes the task. Its label links go with it through the cascade.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := s.db.TaskRepo().Delete(ctx, id)
	if err != nil {
		return errs.NewDatabaseError("delete", "task", err)
	}
	if affected == 0 {
		return errs.NewNotFound("task")
	}

	s.logger.Info().Str("method", "delete").Str("taskId", id.String()).Msg("task deleted")
	return nil
}

// Options loads statuses, users and labels concurrently.
func (s *TaskService) Options(ctx context.Context) (*TaskOptions, error) {
	var (
		opts  TaskOptions
		users []*models.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opts.Statuses, err = s.db.StatusRepo().FindAll(gctx)
		return errs.NewDatabaseError("find", "statuses", err)
	})
	g.Go(func() error {
		var err error
		users, err = s.db.UserRepo().FindAll(gctx)
		return errs.NewDatabaseError("find", "users", err)
	})
	g.Go(func() error {
		var err error
		opts.Labels, err = s.db.LabelRepo().FindAll(gctx)
		return errs.NewDatabaseError("find", "labels", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	opts.Users = make([]models.User, 0, len(users))
	for _, u := range users {
		opts.Users = append(opts.Users, u.Sanitize())
	}
	return &opts, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// diffLabels returns the ids in wanted but not in linked, and the ids in linked but not in wanted.
func diffLabels(linked, wanted []uuid.UUID) (toRelate, toUnrelate []uuid.UUID) {
	have := make(map[uuid.UUID]struct{}, len(linked))
	for _, id := range linked {
		have[id] = struct{}{}
	}
	want := make(map[uuid.UUID]struct{}, len(wanted))
	for _, id := range wanted {
		want[id] = struct{}{}
		if _, ok := have[id]; !ok {
			toRelate = append(toRelate, id)
		}
	}
	for _, id := range linked {
		if _, ok := want[id]; !ok {
			toUnrelate = append(toUnrelate, id)
		}
	}
	return toRelate, toUnrelate
}
