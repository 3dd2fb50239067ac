package postgres_test

import (
	"testing"

	"expedition/internal/adapters/out/postgres"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := postgres.Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "expedition"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=expedition sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestConfig_Validate(t *testing.T) {
	err := postgres.Config{Port: "5432"}.Validate()

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	assert.Contains(t, err.Error(), "database host")
	assert.Contains(t, err.Error(), "database name")
	assert.NotContains(t, err.Error(), "database port")
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := postgres.Open(postgres.Config{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
