package database

import (
	"fmt"
	"io"
	"sort"

	"gorm.io/gorm"

	"github.com/rpupo63/taskmanager/models"
)

// ColumnMismatch lists the database columns of a table that no model field maps to.
type ColumnMismatch struct {
	Table        string
	TableMissing bool
	Columns      []string
}

// FindColumnMismatches compares each model table with the live schema.
func FindColumnMismatches(db *gorm.DB) ([]ColumnMismatch, error) {
	tables := models.Tables()
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	migrator := db.Migrator()
	report := make([]ColumnMismatch, 0, len(names))
	for _, table := range names {
		model := tables[table]
		if !migrator.HasTable(table) {
			report = append(report, ColumnMismatch{Table: table, TableMissing: true})
			continue
		}

		columnTypes, err := migrator.ColumnTypes(table)
		if err != nil {
			return nil, fmt.Errorf("error querying columns for table %s: %w", table, err)
		}

		modelFields, err := modelColumns(db, model)
		if err != nil {
			return nil, err
		}

		entry := ColumnMismatch{Table: table}
		for _, col := range columnTypes {
			if _, ok := modelFields[col.Name()]; !ok {
				entry.Columns = append(entry.Columns, col.Name())
			}
		}
		report = append(report, entry)
	}
	return report, nil
}

func modelColumns(db *gorm.DB, model any) (map[string]struct{}, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parsing model %T: %w", model, err)
	}
	fields := make(map[string]struct{}, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		fields[name] = struct{}{}
	}
	return fields, nil
}

// WriteColumnMismatchReport prints the report and returns the total number of
// unaccounted columns.
func WriteColumnMismatchReport(w io.Writer, db *gorm.DB) (int, error) {
	report, err := FindColumnMismatches(db)
	if err != nil {
		return 0, err
	}

	fmt.Fprintln(w, "=== COLUMN MISMATCH REPORT ===")
	total := 0
	for _, entry := range report {
		fmt.Fprintf(w, "\n--- Table: %s ---\n", entry.Table)
		switch {
		case entry.TableMissing:
			fmt.Fprintln(w, "Table does not exist yet (will be created during migration)")
		case len(entry.Columns) > 0:
			fmt.Fprintf(w, "Found %d columns not accounted for in model:\n", len(entry.Columns))
			for _, col := range entry.Columns {
				fmt.Fprintf(w, "  - %s\n", col)
			}
			total += len(entry.Columns)
		default:
			fmt.Fprintln(w, "All columns are accounted for in the model.")
		}
	}

	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Total mismatched columns across all tables: %d\n", total)
	return total, nil
}
