package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Nemutagk/thinodium/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
url: mongodb://localhost:27017/app
options:
  maxPoolSize: 20
models:
  users:
    indexes:
      - keys:
          name: 1
          age: -1
        options:
          unique: true
      - keys:
          location: 2dsphere
    schema:
      title:
        type: string
        enum: [mr, mrs]
      age:
        type: number
        required: true
    insertOptions:
      w: majority
  sessions:
    pk: token
    collectionOptions:
      capped: true
      size: 1048576
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017/app", cfg.URL)
	assert.Equal(t, models.Options{"maxPoolSize": 20}, cfg.Options)
	assert.Equal(t, []string{"sessions", "users"}, cfg.ModelNames())
}

func TestModelConfig(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	users, err := cfg.Model("users")
	require.NoError(t, err)
	assert.Equal(t, "", users.PK)
	require.Len(t, users.Indexes, 2)
	assert.Equal(t, []models.IndexKey{{Field: "name", Direction: 1}, {Field: "age", Direction: -1}}, users.Indexes[0].Keys)
	assert.Equal(t, models.Options{"unique": true}, users.Indexes[0].Options)
	assert.Equal(t, []models.IndexKey{{Field: "location", Direction: "2dsphere"}}, users.Indexes[1].Keys)
	assert.Equal(t, models.Options{"w": "majority"}, users.DefaultInsertOptions)
	assert.Nil(t, users.DefaultUpdateOptions)

	require.NotNil(t, users.Schema)
	err = users.Schema.Validate(models.Document{"title": "sir"}, models.ValidateOptions{})
	assert.True(t, models.IsValidationError(err))

	sessions, err := cfg.Model("sessions")
	require.NoError(t, err)
	assert.Equal(t, "token", sessions.PK)
	assert.Nil(t, sessions.Schema)
	assert.Equal(t, models.Options{"capped": true, "size": 1048576}, sessions.CollectionOptions)

	unknown, err := cfg.Model("other")
	require.NoError(t, err)
	assert.Equal(t, models.ModelConfig{}, unknown)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("url: mongodb://x\nmodels:\n  a:\n    indexes:\n      - keys: [a, b]\n"))
	assert.ErrorContains(t, err, "index keys must be a mapping")

	cfg, err := Parse([]byte("url: mongodb://x\nmodels:\n  a:\n    schema:\n      age: {type: integer}\n"))
	require.NoError(t, err)
	_, err = cfg.Model("a")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	// sin url todavía se puede completar con un override
	cfg, err := Parse([]byte("models:\n  users:\n    pk: email\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingURL)

	cfg.URL = "mongodb://localhost:27017/app"
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thinodium.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Models, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
