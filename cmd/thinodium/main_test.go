package main

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/Nemutagk/thinodium/config"
	"github.com/Nemutagk/thinodium/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseDocument(t *testing.T) {
	doc, err := parseDocument(`{"name": "john", "age": 19, "_id": {"$oid": "5f1d7f3e2b9b8c6a4e3d2c1b"}}`)
	require.NoError(t, err)

	assert.Equal(t, "john", doc["name"])
	assert.EqualValues(t, 19, doc["age"])
	oid, ok := doc["_id"].(primitive.ObjectID)
	require.True(t, ok)
	assert.Equal(t, "5f1d7f3e2b9b8c6a4e3d2c1b", oid.Hex())

	_, err = parseDocument(`{"name": `)
	assert.ErrorContains(t, err, "invalid document")
}

func TestFormatDocuments(t *testing.T) {
	assert.Equal(t, "[]", formatDocuments(nil))
	assert.Equal(t, "[\n  {\n    \"name\": \"john\"\n  }\n]", formatDocuments([]models.Document{{"name": "john"}}))
	assert.Equal(t, "{\n  \"age\": 19\n}", formatValue(models.Document{"age": 19}))
	assert.Equal(t, "abc", formatValue("abc"))
	assert.Equal(t, "null", formatValue(nil))
}

func TestCommandsValidateInputBeforeConnecting(t *testing.T) {
	_, err := run(t, "insert", "people", "{bad json")
	assert.ErrorContains(t, err, "invalid document")

	_, err = run(t, "update", "people", "abc", "[1]")
	assert.ErrorContains(t, err, "invalid document")

	_, err = run(t, "get", "people")
	assert.Error(t, err)
}

func TestMissingConfigWithoutURL(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")

	_, err := run(t, "--config", missing, "all", "people")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadConfigURLFlagWins(t *testing.T) {
	opts := &rootOptions{
		configPath: filepath.Join(t.TempDir(), "none.yaml"),
		url:        "mongodb://localhost:27017/app",
	}

	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/app", cfg.URL)
	assert.Empty(t, cfg.ModelNames())
}

func TestLoadConfigURLFlagFillsMissingURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thinodium.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  people:\n    pk: email\n"), 0o644))

	opts := &rootOptions{configPath: path}
	_, err := opts.loadConfig()
	assert.ErrorIs(t, err, config.ErrMissingURL)

	opts.url = "mongodb://localhost:27017/app"
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/app", cfg.URL)
	assert.Equal(t, []string{"people"}, cfg.ModelNames())
}
