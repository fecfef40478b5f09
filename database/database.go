package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db            *gorm.DB
	userRepo      *UserRepo
	statusRepo    *StatusRepo
	labelRepo     *LabelRepo
	taskRepo      *TaskRepo
	taskLabelRepo *TaskLabelRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:            db,
		userRepo:      NewUserRepo(db),
		statusRepo:    NewStatusRepo(db),
		labelRepo:     NewLabelRepo(db),
		taskRepo:      NewTaskRepo(db),
		taskLabelRepo: NewTaskLabelRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) StatusRepo() *StatusRepo {
	return d.statusRepo
}

func (d Database) LabelRepo() *LabelRepo {
	return d.labelRepo
}

func (d Database) TaskRepo() *TaskRepo {
	return d.taskRepo
}

func (d Database) TaskLabelRepo() *TaskLabelRepo {
	return d.taskLabelRepo
}

// GetDB returns the underlying database connection
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Transaction runs fn with every repository bound to one transaction. Returning an
// error from fn rolls the transaction back.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
