package mongodb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Nemutagk/thinodium/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	defaultDatabase       = "test"
	defaultConnectTimeout = 10 * time.Second
)

// Database es el adapter de conexión: abre y cierra el cliente y fabrica modelos.
type Database struct {
	logger *zap.Logger

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
	host   string
}

var _ models.Database = (*Database)(nil)

func NewDatabase(logger *zap.Logger) *Database {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Database{logger: logger.Named("mongodb")}
}

// NewDatabaseFrom envuelve una conexión ya abierta (p. ej. la de los tests).
func NewDatabaseFrom(db *mongo.Database, logger *zap.Logger) *Database {
	d := NewDatabase(logger)
	d.client = db.Client()
	d.db = db
	return d
}

// Connect abre la conexión. Las opciones se agregan al connection string tal cual.
func (d *Database) Connect(ctx context.Context, rawURL string, opts models.Options) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return &models.ConnectionError{Op: "connect", Host: d.host, Err: fmt.Errorf("already connected")}
	}

	uri, dbName, host, err := buildURI(rawURL, opts)
	if err != nil {
		return &models.ConnectionError{Op: "connect", Err: err}
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return &models.ConnectionError{Op: "connect", Host: host, Err: err}
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return &models.ConnectionError{Op: "connect", Host: host, Err: err}
	}

	d.client = client
	d.db = client.Database(dbName)
	d.host = host
	d.logger.Info("connected", zap.String("host", host), zap.String("database", dbName))
	return nil
}

// Disconnect cierra el cliente sin esperar a que drenen las operaciones
// más allá de lo que permita ctx. Invalida todos los modelos creados.
func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}

	client, host := d.client, d.host
	d.client, d.db = nil, nil

	if err := client.Disconnect(ctx); err != nil {
		d.logger.Warn("disconnect failed", zap.String("host", host), zap.Error(err))
		return &models.ConnectionError{Op: "disconnect", Host: host, Err: err}
	}
	d.logger.Info("disconnected", zap.String("host", host))
	return nil
}

// Connection regresa la base de datos nativa, nil si no hay conexión.
func (d *Database) Connection() *mongo.Database {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// NewModel no hace I/O; hay que llamar Init antes de usarlo.
func (d *Database) NewModel(name string, cfg models.ModelConfig) models.Model {
	return d.newModel(name, cfg)
}

// Model crea el modelo y lo inicializa.
func (d *Database) Model(ctx context.Context, name string, cfg models.ModelConfig) (*Model, error) {
	m := d.newModel(name, cfg)
	if err := m.Init(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Database) newModel(name string, cfg models.ModelConfig) *Model {
	return newModel(d.Connection(), name, cfg, d.logger)
}

// buildURI no usa url.Parse: la lista de hosts (h1:27017,h2) no es un
// authority válido para net/url.
func buildURI(rawURL string, opts models.Options) (uri, dbName, host string, err error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return "", "", "", fmt.Errorf("missing scheme")
	}
	if scheme != "mongodb" && scheme != "mongodb+srv" {
		return "", "", "", fmt.Errorf("unsupported scheme %q", scheme)
	}

	rest, query, _ := strings.Cut(rest, "?")
	authority, path, _ := strings.Cut(rest, "/")
	host = authority
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		host = authority[i+1:]
	}
	if host == "" {
		return "", "", "", fmt.Errorf("missing host")
	}

	dbName, err = url.PathUnescape(strings.Trim(path, "/"))
	if err != nil {
		return "", "", "", fmt.Errorf("invalid database name: %w", err)
	}
	if dbName == "" {
		dbName = defaultDatabase
	}

	if len(opts) > 0 {
		q, err := url.ParseQuery(query)
		if err != nil {
			return "", "", "", fmt.Errorf("invalid query: %w", err)
		}
		for k, v := range opts {
			q.Set(k, fmt.Sprint(v))
		}
		query = q.Encode()
	}

	// el driver pide "/" antes de las opciones
	uri = scheme + "://" + authority + "/" + path
	if query != "" {
		uri += "?" + query
	}
	return uri, dbName, host, nil
}
