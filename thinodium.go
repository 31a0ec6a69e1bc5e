package thinodium

import (
	"context"
	"sync"

	"github.com/Nemutagk/thinodium/driver/mongodb"
	"github.com/Nemutagk/thinodium/models"
	"go.uber.org/zap"
)

var (
	defaultOnce sync.Once
	defaultDB   *mongodb.Database
	defaultErr  error
)

type config struct {
	logger *zap.Logger
}

type Option func(*config)

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New crea el adapter sin conectar.
func New(opts ...Option) *mongodb.Database {
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	return mongodb.NewDatabase(cfg.logger)
}

// Open crea el adapter y lo conecta.
func Open(ctx context.Context, url string, connOpts models.Options, opts ...Option) (*mongodb.Database, error) {
	db := New(opts...)
	if err := db.Connect(ctx, url, connOpts); err != nil {
		return nil, err
	}
	return db, nil
}

// Init abre la conexión compartida del proceso. Solo la primera llamada tiene efecto.
func Init(ctx context.Context, url string, connOpts models.Options, opts ...Option) error {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = Open(ctx, url, connOpts, opts...)
	})
	return defaultErr
}

// Default regresa la conexión abierta por Init.
func Default() *mongodb.Database {
	if defaultDB == nil {
		panic("thinodium not initialized. Call Init() first.")
	}
	return defaultDB
}
