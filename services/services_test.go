package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/taskmanager/auth"
	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/errs"
	"github.com/rpupo63/taskmanager/models"
)

type stores struct {
	db       database.Database
	users    *UserService
	statuses *StatusService
	labels   *LabelService
	tasks    *TaskService
}

func newStores(t *testing.T, reassignCreator bool) stores {
	t.Helper()

	gormDB, err := database.Open(config.DatabaseConfig{Type: "sqlite", DSN: ":memory:?_pragma=foreign_keys(1)"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), gormDB))

	db := database.New(gormDB)
	t.Cleanup(func() { _ = db.Close() })

	hasher, err := auth.NewHasher("sha256", "test-secret")
	require.NoError(t, err)

	return stores{
		db:       db,
		users:    NewUserService(db, hasher),
		statuses: NewStatusService(db),
		labels:   NewLabelService(db),
		tasks:    NewTaskService(db, reassignCreator),
	}
}

func (s stores) register(t *testing.T, first, email string) *models.User {
	t.Helper()
	user, err := s.users.Create(context.Background(), UserInput{FirstName: first, LastName: "Tester", Email: email, Password: "pw-" + first})
	require.NoError(t, err)
	return user
}

func (s stores) status(t *testing.T, name string) *models.Status {
	t.Helper()
	status, err := s.statuses.Create(context.Background(), name)
	require.NoError(t, err)
	return status
}

func (s stores) label(t *testing.T, name string) *models.Label {
	t.Helper()
	label, err := s.labels.Create(context.Background(), name)
	require.NoError(t, err)
	return label
}

func labelNames(task *models.Task) []string {
	names := make([]string, 0, len(task.Labels))
	for _, l := range task.Labels {
		names = append(names, l.Name)
	}
	return names
}

func TestUserRegisterAndAuthenticate(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	user := s.register(t, "Ann", "ann@example.com")
	assert.Empty(t, user.Password)

	stored, err := s.db.UserRepo().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw-Ann", stored.Password)
	assert.NotEmpty(t, stored.Password)

	got, err := s.users.Authenticate(ctx, "ann@example.com", "pw-Ann")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.Password)

	_, err = s.users.Authenticate(ctx, "ann@example.com", "wrong")
	assert.True(t, errs.IsInvalidCredentials(err))

	_, err = s.users.Authenticate(ctx, "nobody@example.com", "pw-Ann")
	assert.True(t, errs.IsInvalidCredentials(err))

	_, err = s.users.Create(ctx, UserInput{FirstName: "Other", LastName: "Ann", Email: "ann@example.com", Password: "x"})
	assert.True(t, errs.IsEmailExists(err))
}

func TestUserOwnership(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")

	_, err := s.users.GetAuthorized(ctx, ben.ID, ann.ID)
	assert.True(t, errs.IsForbidden(err))

	_, err = s.users.GetAuthorized(ctx, uuid.New(), ann.ID)
	assert.True(t, errs.IsForbidden(err))

	own, err := s.users.GetAuthorized(ctx, ann.ID, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", own.Email)

	_, err = s.users.Update(ctx, ben.ID, ann.ID, UserInput{FirstName: "x", LastName: "y", Email: "x@example.com", Password: "z"})
	assert.True(t, errs.IsForbidden(err))

	assert.True(t, errs.IsForbidden(s.users.Delete(ctx, ben.ID, ann.ID)))
	assert.True(t, errs.IsForbidden(s.users.Delete(ctx, uuid.New(), ann.ID)))

	_, err = s.users.GetByID(ctx, ben.ID)
	assert.NoError(t, err)
}

func TestUserUpdate(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	s.register(t, "Ben", "ben@example.com")

	_, err := s.users.Update(ctx, ann.ID, ann.ID, UserInput{FirstName: "Ann", LastName: "T", Email: "ben@example.com", Password: "pw"})
	assert.True(t, errs.IsEmailExists(err))

	updated, err := s.users.Update(ctx, ann.ID, ann.ID, UserInput{FirstName: "Annie", LastName: "T", Email: "ann@example.com", Password: "new-pw"})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.FirstName)
	assert.Empty(t, updated.Password)

	_, err = s.users.Authenticate(ctx, "ann@example.com", "pw-Ann")
	assert.True(t, errs.IsInvalidCredentials(err))
	_, err = s.users.Authenticate(ctx, "ann@example.com", "new-pw")
	assert.NoError(t, err)
}

func TestUserDeleteBlockedByTasks(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")
	todo := s.status(t, "todo")

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "t", Description: "d", StatusID: todo.ID, ExecutorID: &ben.ID})
	require.NoError(t, err)

	assert.True(t, errs.IsInUse(s.users.Delete(ctx, ann.ID, ann.ID)))
	assert.True(t, errs.IsInUse(s.users.Delete(ctx, ben.ID, ben.ID)))

	require.NoError(t, s.tasks.Delete(ctx, task.ID))
	require.NoError(t, s.users.Delete(ctx, ben.ID, ben.ID))

	_, err = s.users.GetByID(ctx, ben.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestStatusAndLabelNamesAreUnique(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	todo := s.status(t, "todo")
	_, err := s.statuses.Create(ctx, "todo")
	assert.True(t, errs.IsNameExists(err))

	done := s.status(t, "done")
	_, err = s.statuses.Update(ctx, done.ID, "todo")
	assert.True(t, errs.IsNameExists(err))

	renamed, err := s.statuses.Update(ctx, todo.ID, "todo")
	require.NoError(t, err)
	assert.Equal(t, todo.ID, renamed.ID)

	_, err = s.statuses.Update(ctx, uuid.New(), "whatever")
	assert.True(t, errs.IsNotFound(err))

	bug := s.label(t, "bug")
	_, err = s.labels.Create(ctx, "bug")
	assert.True(t, errs.IsNameExists(err))

	renamedLabel, err := s.labels.Update(ctx, bug.ID, "defect")
	require.NoError(t, err)
	assert.Equal(t, "defect", renamedLabel.Name)

	found, err := s.labels.GetByName(ctx, "defect")
	require.NoError(t, err)
	assert.Equal(t, bug.ID, found.ID)
}

func TestGetByIDNotFound(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	_, err := s.users.GetByID(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
	_, err = s.statuses.GetByID(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
	_, err = s.labels.GetByID(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
	_, err = s.tasks.GetByID(ctx, uuid.New())
	assert.True(t, errs.IsNotFound(err))
	assert.True(t, errs.IsNotFound(s.tasks.Delete(ctx, uuid.New())))
	assert.True(t, errs.IsNotFound(s.statuses.Delete(ctx, uuid.New())))
	assert.True(t, errs.IsNotFound(s.labels.Delete(ctx, uuid.New())))
}

func TestDeleteGuards(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	todo := s.status(t, "todo")
	done := s.status(t, "done")
	bug := s.label(t, "bug")
	spare := s.label(t, "spare")

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "t", Description: "d", StatusID: todo.ID, LabelIDs: []uuid.UUID{bug.ID}})
	require.NoError(t, err)

	assert.True(t, errs.IsInUse(s.statuses.Delete(ctx, todo.ID)))
	assert.True(t, errs.IsInUse(s.labels.Delete(ctx, bug.ID)))
	require.NoError(t, s.statuses.Delete(ctx, done.ID))
	require.NoError(t, s.labels.Delete(ctx, spare.ID))

	require.NoError(t, s.tasks.Delete(ctx, task.ID))
	require.NoError(t, s.statuses.Delete(ctx, todo.ID))
	require.NoError(t, s.labels.Delete(ctx, bug.ID))
}

func TestTaskCreate(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")
	todo := s.status(t, "todo")
	bug := s.label(t, "bug")
	ui := s.label(t, "ui")

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{
		Name:        "fix button",
		Description: "it is broken",
		StatusID:    todo.ID,
		ExecutorID:  &ben.ID,
		LabelIDs:    []uuid.UUID{ui.ID, bug.ID, ui.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, ann.ID, task.CreatorID)
	assert.Equal(t, ann.ID, task.Creator.ID)
	assert.Empty(t, task.Creator.Password)
	require.NotNil(t, task.Executor)
	assert.Equal(t, ben.ID, task.Executor.ID)
	assert.Equal(t, "todo", task.Status.Name)
	assert.Equal(t, []string{"bug", "ui"}, labelNames(task))

	_, err = s.tasks.Create(ctx, ben.ID, TaskInput{Name: "fix button", Description: "again", StatusID: todo.ID})
	assert.True(t, errs.IsNameExists(err))
}

func TestTaskCreateIsAtomic(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	todo := s.status(t, "todo")
	bug := s.label(t, "bug")

	_, err := s.tasks.Create(ctx, ann.ID, TaskInput{
		Name:        "doomed",
		Description: "d",
		StatusID:    todo.ID,
		LabelIDs:    []uuid.UUID{bug.ID, uuid.New()},
	})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	found, err := s.db.TaskRepo().FindByName(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, found)

	count, err := s.db.TaskLabelRepo().CountByLabel(ctx, bug.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTaskUpdateReplacesLabelSet(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")
	todo := s.status(t, "todo")
	done := s.status(t, "done")
	a := s.label(t, "a")
	b := s.label(t, "b")
	c := s.label(t, "c")

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{
		Name: "t", Description: "d", StatusID: todo.ID, ExecutorID: &ben.ID, LabelIDs: []uuid.UUID{a.ID, b.ID},
	})
	require.NoError(t, err)

	updated, err := s.tasks.Update(ctx, task.ID, ben.ID, TaskInput{
		Name: "t2", Description: "d2", StatusID: done.ID, LabelIDs: []uuid.UUID{b.ID, c.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "t2", updated.Name)
	assert.Equal(t, "done", updated.Status.Name)
	assert.Nil(t, updated.ExecutorID)
	assert.Nil(t, updated.Executor)
	assert.Equal(t, []string{"b", "c"}, labelNames(updated))
	assert.Equal(t, ben.ID, updated.CreatorID)

	count, err := s.db.TaskLabelRepo().CountByLabel(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = s.labels.GetByID(ctx, a.ID)
	assert.NoError(t, err)

	cleared, err := s.tasks.Update(ctx, task.ID, ben.ID, TaskInput{Name: "t2", Description: "d2", StatusID: done.ID})
	require.NoError(t, err)
	assert.NotNil(t, cleared.Labels)
	assert.Empty(t, cleared.Labels)
}

func TestTaskUpdateKeepsCreatorWhenConfigured(t *testing.T) {
	s := newStores(t, false)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")
	todo := s.status(t, "todo")

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "t", Description: "d", StatusID: todo.ID})
	require.NoError(t, err)

	updated, err := s.tasks.Update(ctx, task.ID, ben.ID, TaskInput{Name: "t", Description: "changed", StatusID: todo.ID})
	require.NoError(t, err)
	assert.Equal(t, ann.ID, updated.CreatorID)
	assert.Equal(t, "changed", updated.Description)
}

func TestTaskUpdateErrors(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	todo := s.status(t, "todo")
	bug := s.label(t, "bug")

	first, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "first", Description: "d", StatusID: todo.ID, LabelIDs: []uuid.UUID{bug.ID}})
	require.NoError(t, err)
	_, err = s.tasks.Create(ctx, ann.ID, TaskInput{Name: "second", Description: "d", StatusID: todo.ID})
	require.NoError(t, err)

	_, err = s.tasks.Update(ctx, first.ID, ann.ID, TaskInput{Name: "second", Description: "d", StatusID: todo.ID})
	assert.True(t, errs.IsNameExists(err))

	_, err = s.tasks.Update(ctx, uuid.New(), ann.ID, TaskInput{Name: "third", Description: "d", StatusID: todo.ID})
	assert.True(t, errs.IsNotFound(err))

	_, err = s.tasks.Update(ctx, first.ID, ann.ID, TaskInput{Name: "renamed", Description: "d", StatusID: todo.ID, LabelIDs: []uuid.UUID{uuid.New()}})
	require.Error(t, err)

	unchanged, err := s.tasks.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", unchanged.Name)
	assert.Equal(t, []string{"bug"}, labelNames(unchanged))
}

func TestTaskUnknownStatusOrExecutorIsFieldError(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	todo := s.status(t, "todo")
	ghost := uuid.New()

	_, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "orphan", Description: "d", StatusID: uuid.New(), ExecutorID: &ghost})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, map[string]string{"statusId": "does not exist", "executorId": "does not exist"}, e.Fields)

	found, err := s.db.TaskRepo().FindByName(ctx, "orphan")
	require.NoError(t, err)
	assert.Nil(t, found)

	task, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "real", Description: "d", StatusID: todo.ID})
	require.NoError(t, err)

	_, err = s.tasks.Update(ctx, task.ID, ann.ID, TaskInput{Name: "real", Description: "d", StatusID: todo.ID, ExecutorID: &ghost})
	require.True(t, errors.As(err, &e))
	assert.Equal(t, map[string]string{"executorId": "does not exist"}, e.Fields)

	unchanged, err := s.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, unchanged.ExecutorID)
}

func TestTaskListFilters(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	ann := s.register(t, "Ann", "ann@example.com")
	ben := s.register(t, "Ben", "ben@example.com")
	s1 := s.status(t, "s1")
	s2 := s.status(t, "s2")
	l1 := s.label(t, "l1")

	_, err := s.tasks.Create(ctx, ann.ID, TaskInput{Name: "T1", Description: "d", StatusID: s1.ID, ExecutorID: &ben.ID, LabelIDs: []uuid.UUID{l1.ID}})
	require.NoError(t, err)
	_, err = s.tasks.Create(ctx, ben.ID, TaskInput{Name: "T2", Description: "d", StatusID: s2.ID})
	require.NoError(t, err)

	names := func(tasks []*models.Task) []string {
		out := make([]string, 0, len(tasks))
		for _, task := range tasks {
			out = append(out, task.Name)
		}
		return out
	}

	tests := []struct {
		name   string
		query  TaskQuery
		caller uuid.UUID
		want   []string
	}{
		{"all", TaskQuery{}, ann.ID, []string{"T1", "T2"}},
		{"status s1", TaskQuery{StatusID: s1.ID}, ann.ID, []string{"T1"}},
		{"label l1 created by caller", TaskQuery{LabelID: l1.ID, IsCreatorUser: true}, ann.ID, []string{"T1"}},
		{"label l1 created by other caller", TaskQuery{LabelID: l1.ID, IsCreatorUser: true}, ben.ID, []string{}},
		{"executor ben", TaskQuery{ExecutorID: ben.ID}, ann.ID, []string{"T1"}},
		{"created by ben", TaskQuery{IsCreatorUser: true}, ben.ID, []string{"T2"}},
		{"status s2 and label l1", TaskQuery{StatusID: s2.ID, LabelID: l1.ID}, ann.ID, []string{}},
		{"creator filter without caller", TaskQuery{IsCreatorUser: true}, uuid.Nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.tasks.List(ctx, tt.query, tt.caller)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(tasks))
		})
	}
}

func TestTaskOptions(t *testing.T) {
	s := newStores(t, true)
	ctx := context.Background()

	s.register(t, "Ann", "ann@example.com")
	s.status(t, "todo")
	s.status(t, "done")
	s.label(t, "bug")

	opts, err := s.tasks.Options(ctx)
	require.NoError(t, err)
	assert.Len(t, opts.Statuses, 2)
	assert.Equal(t, "done", opts.Statuses[0].Name)
	require.Len(t, opts.Users, 1)
	assert.Empty(t, opts.Users[0].Password)
	assert.Len(t, opts.Labels, 1)
}

func TestDiffLabels(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	toRelate, toUnrelate := diffLabels([]uuid.UUID{a, b}, []uuid.UUID{b, c})
	assert.Equal(t, []uuid.UUID{c}, toRelate)
	assert.Equal(t, []uuid.UUID{a}, toUnrelate)

	toRelate, toUnrelate = diffLabels(nil, nil)
	assert.Empty(t, toRelate)
	assert.Empty(t, toUnrelate)

	assert.Equal(t, []uuid.UUID{a, b}, dedupe([]uuid.UUID{a, uuid.Nil, b, a}))
}
