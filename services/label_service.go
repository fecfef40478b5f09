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

// LabelService owns labels. A label linked to any task cannot be deleted.
type LabelService struct {
	db     database.Database
	logger zerolog.Logger
}

func NewLabelService(db database.Database) *LabelService {
	return &LabelService{
		db:     db,
		logger: log.With().Str("service", "labelService").Logger(),
	}
}

func (s *LabelService) List(ctx context.Context) ([]*models.Label, error) {
	labels, err := s.db.LabelRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "labels", err)
	}
	return labels, nil
}

func (s *LabelService) GetByID(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	label, err := s.db.LabelRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "label", err)
	}
	if label == nil {
		return nil, errs.NewNotFound("label")
	}
	return label, nil
}

func (s *LabelService) GetByName(ctx context.Context, name string) (*models.Label, error) {
	label, err := s.db.LabelRepo().FindByName(ctx, name)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "label", err)
	}
	if label == nil {
		return nil, errs.NewNotFound("label")
	}
	return label, nil
}

func (s *LabelService) Create(ctx context.Context, name string) (*models.Label, error) {
	var created *models.Label
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.LabelRepo().FindByName(ctx, name)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		if existing != nil {
			return errs.NewNameExists("label", name)
		}

		created = &models.Label{Name: name}
		if err := tx.LabelRepo().Add(ctx, created); err != nil {
			return errs.NewDatabaseError("create", "label", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("create label", err)
	}

	s.logger.Info().Str("method", "create").Str("labelId", created.ID.String()).Msg("label created")
	return created, nil
}

func (s *LabelService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Label, error) {
	var updated *models.Label
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		current, err := tx.LabelRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		if current == nil {
			return errs.NewNotFound("label")
		}

		holder, err := tx.LabelRepo().FindByName(ctx, name)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		if holder != nil && holder.ID != id {
			return errs.NewNameExists("label", name)
		}

		if _, err := tx.LabelRepo().Rename(ctx, id, name); err != nil {
			return errs.NewDatabaseError("update", "label", err)
		}
		updated, err = tx.LabelRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("update label", err)
	}

	s.logger.Info().Str("method", "update").Str("labelId", id.String()).Msg("label updated")
	return updated, nil
}

func (s *LabelService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		current, err := tx.LabelRepo().FindByID(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("find", "label", err)
		}
		if current == nil {
			return errs.NewNotFound("label")
		}

		count, err := tx.TaskLabelRepo().CountByLabel(ctx, id)
		if err != nil {
			return errs.NewDatabaseError("count", "tasks", err)
		}
		if count > 0 {
			return errs.NewInUse("label")
		}

		if _, err := tx.LabelRepo().Delete(ctx, id); err != nil {
			return errs.NewDatabaseError("delete", "label", err)
		}
		return nil
	})
	if err != nil {
		return errs.NewTransactionFailedError("delete label", err)
	}

	s.logger.Info().Str("method", "delete").Str("labelId", id.String()).Msg("label deleted")
	return nil
}
