// Package config carga la conexión y los modelos desde un archivo YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/Nemutagk/goenvars"
	"github.com/Nemutagk/thinodium/models"
	"github.com/Nemutagk/thinodium/schema"
	"gopkg.in/yaml.v3"
)

var ErrMissingURL = errors.New("config: missing connection url")

type Config struct {
	URL     string                 `yaml:"url"`
	Options models.Options         `yaml:"options"`
	Models  map[string]ModelConfig `yaml:"models"`
}

type ModelConfig struct {
	PK                string                 `yaml:"pk"`
	Indexes           []Index                `yaml:"indexes"`
	Schema            map[string]schema.Rule `yaml:"schema"`
	CollectionOptions models.Options         `yaml:"collectionOptions"`
	InsertOptions     models.Options         `yaml:"insertOptions"`
	UpdateOptions     models.Options         `yaml:"updateOptions"`
	DeleteOptions     models.Options         `yaml:"deleteOptions"`
}

type Index struct {
	Keys    IndexKeys      `yaml:"keys"`
	Options models.Options `yaml:"options"`
}

// IndexKeys conserva el orden en que se escribieron las llaves en el YAML.
type IndexKeys []models.IndexKey

func (k *IndexKeys) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: index keys must be a mapping", node.Line)
	}

	keys := make(IndexKeys, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var field string
		if err := node.Content[i].Decode(&field); err != nil {
			return err
		}
		var direction any
		if err := node.Content[i+1].Decode(&direction); err != nil {
			return err
		}
		keys = append(keys, models.IndexKey{Field: field, Direction: direction})
	}
	*k = keys
	return nil
}

// Load lee path y aplica THINODIUM_MONGO_URL si está definida.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.URL = goenvars.GetEnv("THINODIUM_MONGO_URL", cfg.URL)
	return cfg, nil
}

// Validate se llama después de aplicar overrides (p. ej. --url).
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	return nil
}

// ModelNames regresa los nombres de los modelos ordenados.
func (c *Config) ModelNames() []string {
	names := make([]string, 0, len(c.Models))
	for name := range c.Models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Model regresa la configuración del modelo lista para el adapter. Los
// nombres que no están en el archivo usan la configuración por defecto.
func (c *Config) Model(name string) (models.ModelConfig, error) {
	mc, ok := c.Models[name]
	if !ok {
		return models.ModelConfig{}, nil
	}
	return mc.toModelConfig()
}

func (mc ModelConfig) toModelConfig() (models.ModelConfig, error) {
	out := models.ModelConfig{
		PK:                   mc.PK,
		CollectionOptions:    mc.CollectionOptions,
		DefaultInsertOptions: mc.InsertOptions,
		DefaultUpdateOptions: mc.UpdateOptions,
		DefaultDeleteOptions: mc.DeleteOptions,
	}

	for _, idx := range mc.Indexes {
		out.Indexes = append(out.Indexes, models.IndexSpec{
			Keys:    []models.IndexKey(idx.Keys),
			Options: idx.Options,
		})
	}

	if len(mc.Schema) > 0 {
		s, err := schema.New(mc.Schema)
		if err != nil {
			return models.ModelConfig{}, err
		}
		out.Schema = s
	}
	return out, nil
}
