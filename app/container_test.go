package app

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/taskmanager/config"
	"github.com/rpupo63/taskmanager/database"
	"github.com/rpupo63/taskmanager/services"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"APP_ENV":     "test",
		"DB_TYPE":     "sqlite",
		"SQLITE_PATH": ":memory:?_pragma=foreign_keys(1)",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.FromMap(base)
	require.NoError(t, err)
	return cfg
}

func TestContainerBuildsServer(t *testing.T) {
	injector := NewContainer(testConfig(t, nil))

	server, err := do.Invoke[*ServerHandle](injector)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", server.Addr)

	db := do.MustInvoke[*DatabaseHandle](injector)
	require.NoError(t, database.Migrate(context.Background(), db.GetDB()))

	users := do.MustInvoke[*services.UserService](injector)
	created, err := users.Create(context.Background(), services.UserInput{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Empty(t, created.Password)

	assert.NoError(t, Shutdown(injector))
}

type failingHandle struct{}

func (failingHandle) Shutdown() error {
	return errors.New("close failed")
}

func TestShutdownReportsFailures(t *testing.T) {
	injector := NewContainer(testConfig(t, nil))
	do.ProvideValue(injector, failingHandle{})
	do.MustInvoke[failingHandle](injector)
	do.MustInvoke[*DatabaseHandle](injector)

	err := Shutdown(injector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close failed")
}

func TestShutdownWithNothingInvoked(t *testing.T) {
	assert.NoError(t, Shutdown(NewContainer(testConfig(t, nil))))
}

func TestContainerRejectsUnknownPasswordAlgorithm(t *testing.T) {
	injector := NewContainer(testConfig(t, map[string]string{"PASSWORD_ALGORITHM": "md5"}))

	_, err := do.Invoke[*services.UserService](injector)
	assert.Error(t, err)
}
