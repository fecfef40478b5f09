package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/errs"
	"github.com/rpupo63/taskmanager/models"
)

// StatusService owns statuses. A status referenced by any task cannot be deleted.
type StatusService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewStatusService(db database.Database) *StatusService {
	return &StatusService{
		db:     db,
		logger: log.With().Str("service", "statusService").Logger(),
	}
}

func (s *StatusService) List(ctx context.Context) ([]*models.Status, error) {
	statuses, err := s.db.StatusRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "statuses", err)
	}
	return statuses, nil
}

func (s *StatusService) GetByID(ctx context.Context, id uuid.UUID) (*models.Status, error) {
	status, err := s.db.StatusRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "status", err)
	}
	if status == nil {
		return nil, errs.NewNotFound("status")
	}
	return status, nil
}

func (s *StatusService) GetByName(ctx context.Context, name string) (*models.Status, error) {
	status, err := s.db.StatusRepo().FindByName(ctx, name)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "status", err)
	}
	if status == nil {
		return nil, errs.NewNotFound("status")
	}
	return status, nil
}

func (s *StatusService) Create(ctx context.Context, name string) (*models.Status, error) {
	var created *models.Status
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.StatusRepo().FindByName(ctx, name)
		if err != nil {
			return errs.NewDatabaseError("find", "status", err)
		}
		if existing != nil {
			return errs.NewNameExists("status", name)
		}

		created = &models.Status{Name: name}
		if err := tx.StatusRepo().Add(ctx, created); err != nil {
			return errs.NewDatabaseError("create", "status", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("create status", err)
	}

	s.logger.Info().Str("method", "create").Str("statusId", created.ID.String()).Msg("status created")
	return created, nil
}

func (s *StatusService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Status, error) {
	var updated *models.Status
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		current, err := tx.StatusRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "status", err)
		}
		if current == nil {
			return errs.NewNotFound("status")
		}

		holder, err := tx.StatusRepo().FindByName(ctx, name)
		if err != nil {
			return errs.NewDatabaseError("find", "status", err)
		}
		if holder != nil && holder.ID != id {
			return errs.NewNameExists("status", name)
		}

		if _, err := tx.StatusRepo().Rename(ctx, id, name); err != nil {
			return errs.NewDatabaseError("update", "status", err)
		}
		updated, err = tx.StatusRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "status", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("update status", err)
	}

	s.logger.Info().Str("method", "update").Str("statusId", id.String()).Msg("status updated")
	return updated, nil
}

func (s *StatusService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		current, err := tx.StatusRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "status", err)
		}
		if current == nil {
			return errs.NewNotFound("status")
		}

		count, err := tx.TaskRepo().CountByStatus(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("count", "tasks", err)
		}
		if count > 0 {
			return errs.NewInUse("status")
		}

		if _, err := tx.StatusRepo().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "status", err)
		}
		return nil
	})
	if err != nil {
		return errs.NewTransactionFailedError("delete status", err)
	}

	s.logger.Info().Str("method", "delete").Str("statusId", id.String()).Msg("status deleted")
	return nil
}
