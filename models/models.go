package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Status{},
		&Label{},
		&Task{},
		&TaskLabel{},
	}
}

// Tables maps each table name to its model, for schema reports and code generation.
func Tables() map[string]any {
	return map[string]any{
		"users":       User{},
		"statuses":    Status{},
		"labels":      Label{},
		"tasks":       Task{},
		"task_labels": TaskLabel{},
	}
}
