package database

import (
	"gorm.io/gen"
	"gorm.io/gorm"

	"github.com/rpupo63/taskmanager/models"
)

// GenerateQueries writes type-safe gorm/gen query helpers for every model to outPath.
func GenerateQueries(db *gorm.DB, outPath string) {
	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface | gen.WithoutContext,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})

	g.UseDB(db)
	g.ApplyBasic(
		models.User{},
		models.Status{},
		models.Label{},
		models.Task{},
		models.TaskLabel{},
	)
	g.Execute()
}
