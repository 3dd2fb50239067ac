package draftstore_test

import (
	"testing"
	"time"

	"expedition/internal/adapters/out/redis/draftstore"
	"expedition/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := draftstore.New(nil, time.Hour)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() { _ = client.Close() })

	store, err := draftstore.New(client, 0)
	require.NoError(t, err)
	assert.Equal(t, draftstore.DefaultTTL, store.TTL())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := draftstore.Connect(t.Context(), "")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = draftstore.Connect(t.Context(), "http://not-redis")
	require.Error(t, err)
}
