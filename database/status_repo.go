package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/taskmanager/models"
)

type StatusRepo struct {
	db *gorm.DB
}

func NewStatusRepo(db *gorm.DB) *StatusRepo {
	return &StatusRepo{db}
}

// FindAll returns all statuses ordered by name
func (r *StatusRepo) FindAll(ctx context.Context) ([]*models.Status, error) {
	var statuses []*models.Status
	err := r.db.WithContext(ctx).Order("name").Find(&statuses).Error
	return statuses, err
}

// FindByID returns nil without an error when the id is unknown
func (r *StatusRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Status, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName returns nil without an error when the name is unknown
func (r *StatusRepo) FindByName(ctx context.Context, name string) (*models.Status, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *StatusRepo) findOne(ctx context.Context, query string, args ...interface{}) (*models.Status, error) {
	var statuses []models.Status
	if err := r.db.WithContext(ctx).Where(query, args...).Limit(1).Find(&statuses).Error; err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	return &statuses[0], nil
}

// Add inserts a new status into the database
func (r *StatusRepo) Add(ctx context.Context, status *models.Status) error {
	return r.db.WithContext(ctx).Create(status).Error
}

// Rename changes the name of a status
func (r *StatusRepo) Rename(ctx context.Context, id uuid.UUID, name string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Status{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

// Delete removes a status from the database by id
func (r *StatusRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Status{})
	return res.RowsAffected, res.Error
}
