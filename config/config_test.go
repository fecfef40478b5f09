package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/taskmanager/errs"
)

func TestGetters(t *testing.T) {
	env := map[string]string{
		"PORT":    "9000",
		"BAD_INT": "nine",
		"ENABLED": "true",
		"TIMEOUT": "15",
		"EMPTY":   "",
	}

	assert.Equal(t, "9000", GetString(env, "PORT", "8080"))
	assert.Equal(t, "fallback", GetString(env, "EMPTY", "fallback"))
	assert.Equal(t, "x", GetString(nil, "PORT", "x"))
	assert.Equal(t, 9000, GetInt(env, "PORT", 1))
	assert.Equal(t, 1, GetInt(env, "BAD_INT", 1))
	assert.True(t, GetBool(env, "ENABLED", false))
	assert.Equal(t, 15*time.Second, GetDuration(env, "TIMEOUT", time.Second, time.Minute))
	assert.Equal(t, time.Minute, GetDuration(env, "MISSING", time.Second, time.Minute))
}

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.NotEmpty(t, cfg.Database.DSN)
	assert.Equal(t, "sha256", cfg.Password.Algorithm)
	assert.True(t, cfg.TaskUpdateReassignsCreator)
	assert.False(t, cfg.Session.Secure)
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestFromMapPostgres(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"DB_TYPE":             "postgres",
		"PG_HOST":             "db",
		"PG_USER":             "app",
		"PG_PASSWORD":         "s3cret",
		"PG_DATABASE":         "tasks",
		"ACCEPTED_ORIGINS":    "http://a.test, http://b.test",
		"TRUST_PROXY_HEADERS": "true",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://app:s3cret@db:5432/tasks?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AcceptedOrigins)
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestFromMapProductionRequiresSecrets(t *testing.T) {
	_, err := FromMap(map[string]string{"APP_ENV": "production"})
	require.Error(t, err)
	assert.True(t, errs.IsConfigError(err))

	_, err = FromMap(map[string]string{"DB_TYPE": "mysql"})
	assert.True(t, errs.IsConfigError(err))
}

type fakeSSM struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeSSM) GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestReadParameters(t *testing.T) {
	client := &fakeSSM{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{{Name: aws.String("/tm/prod/session-secret"), Value: aws.String("abc")}},
			NextToken:  aws.String("next"),
		},
		{
			Parameters: []types.Parameter{{Name: aws.String("/tm/prod/PASSWORD_SALT_SECRET"), Value: aws.String("def")}},
		},
	}}

	params, err := readParameters(context.Background(), client, "/tm/prod")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"SESSION_SECRET": "abc", "PASSWORD_SALT_SECRET": "def"}, params)
	assert.Equal(t, 2, client.calls)
}
