package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rpupo63/taskmanager/models"
)

type LabelRepo struct {
	db *gorm.DB
}

func NewLabelRepo(db *gorm.DB) *LabelRepo {
	return &LabelRepo{db}
}

// FindAll returns all labels ordered by name
func (r *LabelRepo) FindAll(ctx context.Context) ([]*models.Label, error) {
	var labels []*models.Label
	err := r.db.WithContext(ctx).Order("name").Find(&labels).Error
	return labels, err
}

// FindByID returns nil without an error when the id is unknown
func (r *LabelRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Label, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByName returns nil without an error when the name is unknown
func (r *LabelRepo) FindByName(ctx context.Context, name string) (*models.Label, error) {
	return r.findOne(ctx, "name = ?", name)
}

func (r *LabelRepo) findOne(ctx context.Context, query string, args ...interface{}) (*models.Label, error) {
	var labels []models.Label
	if err := r.db.WithContext(ctx).Where(query, args...).Limit(1).Find(&labels).Error; err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return &labels[0], nil
}

// Add inserts a new label into the database
func (r *LabelRepo) Add(ctx context.Context, label *models.Label) error {
	return r.db.WithContext(ctx).Create(label).Error
}

// Rename changes the name of a label
func (r *LabelRepo) Rename(ctx context.Context, id uuid.UUID, name string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Label{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected, res.Error
}

// Delete removes a label from the database by id
func (r *LabelRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Label{})
	return res.RowsAffected, res.Error
}
