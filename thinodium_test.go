package thinodium

import (
	"context"
	"testing"

	"github.com/Nemutagk/thinodium/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewIsNotConnected(t *testing.T) {
	db := New(WithLogger(zap.NewNop()))
	assert.Nil(t, db.Connection())

	err := db.NewModel("people", models.ModelConfig{}).Init(context.Background())
	assert.ErrorIs(t, err, models.ErrNotConnected)
}

func TestOpenInvalidURL(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	_, err := Open(context.Background(), "http://localhost/app", nil, WithLogger(zap.New(core)))
	var ce *models.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Zero(t, logs.Len())
}

func TestInitOnlyOnce(t *testing.T) {
	err := Init(context.Background(), "not-a-mongo-url", nil)
	require.Error(t, err)

	again := Init(context.Background(), "mongodb://localhost:27017/app", nil)
	assert.Equal(t, err, again)

	assert.Panics(t, func() { Default() })
}
