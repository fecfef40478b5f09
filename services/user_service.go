package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/errs"
	"github.com/rpupo63/taskmanager/models"
)

type UserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService owns user records. Every user it returns is sanitized.
type UserService struct {
	db     database.Database
	hasher *auth.Hasher
	logger zerolog.Logger
}

func NewUserService(db database.Database, hasher *auth.Hasher) *UserService {
	return &UserService{
		db:     db,
		hasher: hasher,
		logger: log.With().Str("service", "userService").Logger(),
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.db.UserRepo().FindAll(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "users", err)
	}
	safe := make([]models.User, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Sanitize())
	}
	return safe, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.db.UserRepo().FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	safe := user.Sanitize()
	return &safe, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	safe := user.Sanitize()
	return &safe, nil
}

// GetAuthorized loads the caller's own record. Any other target, existing or not, is Forbidden.
func (s *UserService) GetAuthorized(ctx context.Context, targetID, callerID uuid.UUID) (*models.User, error) {
	if targetID != callerID {
		return nil, errs.NewForbidden("user")
	}
	user, err := s.GetByID(ctx, targetID)
	if errs.IsNotFound(err) {
		return nil, errs.NewForbidden("user")
	}
	return user, err
}

// Create registers a user with a hashed password.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	logger := s.logger.With().Str("method", "create").Logger()

	var user *models.User
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		existing, err := tx.UserRepo().FindByEmail(ctx, in.Email)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		if existing != nil {
			return errs.NewEmailExists(in.Email)
		}

		user = &models.User{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Password:  s.hasher.Hash(in.Password),
		}
		if err := tx.UserRepo().Add(ctx, user); err != nil {
			return errs.NewDatabaseError("create", "user", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("create user", err)
	}

	logger.Info().Str("userId", user.ID.String()).Msg("user created")
	safe := user.Sanitize()
	return &safe, nil
}

// Authenticate answers InvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.db.UserRepo().FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "user", err)
	}
	if user == nil {
		// keep the timing of unknown emails close to wrong passwords
		s.hasher.Verify(password, "")
		return nil, errs.NewInvalidCredentials()
	}
	if !s.hasher.Verify(password, user.Password) {
		return nil, errs.NewInvalidCredentials()
	}
	safe := user.Sanitize()
	return &safe, nil
}

// Update patches the caller's own record and re-hashes the submitted password.
func (s *UserService) Update(ctx context.Context, targetID, callerID uuid.UUID, in UserInput) (*models.User, error) {
	logger := s.logger.With().Str("method", "update").Str("userId", callerID.String()).Logger()

	var updated *models.User
	err := s.db.Transaction(ctx, func(tx database.Database) error {
		user, err := tx.UserRepo().FindByID(ctx, targetID)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		if user == nil || user.ID != callerID {
			return errs.NewForbidden("user")
		}

		holder, err := tx.UserRepo().FindByEmail(ctx, in.Email)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		if holder != nil && holder.ID != targetID {
			return errs.NewEmailExists(in.Email)
		}

		fields := map[string]interface{}{
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"email":      in.Email,
			"password":   s.hasher.Hash(in.Password),
		}
		if _, err := tx.UserRepo().Update(ctx, targetID, fields); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}

		updated, err = tx.UserRepo().FindByID(ctx, targetID)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewTransactionFailedError("update user", err)
	}

	logger.Info().Msg("user updated")
	safe := updated.Sanitize()
	return &safe, nil
}

// Delete removes the caller's own record unless a task still references it.
func (s *UserService) Delete(ctx context.Context, targetID, callerID uuid.UUID) error {
	logger := s.logger.With().Str("method", "delete").Str("userId", callerID.String()).Logger()

	err := s.db.Transaction(ctx, func(tx database.Database) error {
		user, err := tx.UserRepo().FindByID(ctx, targetID)
		if err != nil {
			return errs.NewDatabaseError("find", "user", err)
		}
		if user == nil || user.ID != callerID {
			return errs.NewForbidden("user")
		}

		count, err := tx.TaskRepo().CountByUser(ctx, targetID)
		if err != nil {
			return errs.NewDatabaseError("count", "tasks", err)
		}
		if count > 0 {
			return errs.NewInUse("user")
		}

		if _, err := tx.UserRepo().Delete(ctx, targetID); err != nil {
			return errs.NewDatabaseError("delete", "user", err)
		}
		return nil
	})
	if err != nil {
		return errs.NewTransactionFailedError("delete user", err)
	}

	logger.Info().Msg("user deleted")
	return nil
}
