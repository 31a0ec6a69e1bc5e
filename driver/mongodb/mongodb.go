package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Nemutagk/thinodium/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	defaultPK = "_id"

	// codigo de servidor NamespaceExists
	codeNamespaceExists = 48
)

var errInitInProgress = errors.New("model init already in progress")

// Model enlaza una colección y expone las operaciones crudas.
type Model struct {
	db     *mongo.Database
	name   string
	pk     string
	cfg    models.ModelConfig
	logger *zap.Logger

	initializing atomic.Bool
	h            atomic.Pointer[handles]
}

// handles se arma completo en Init y después solo se lee.
type handles struct {
	collection *mongo.Collection
	insert     *mongo.Collection
	update     *mongo.Collection
	delete     *mongo.Collection
}

var _ models.Model = (*Model)(nil)

func newModel(db *mongo.Database, name string, cfg models.ModelConfig, logger *zap.Logger) *Model {
	if cfg.PK == "" {
		cfg.PK = defaultPK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{
		db:     db,
		name:   name,
		pk:     cfg.PK,
		cfg:    cfg,
		logger: logger.With(zap.String("collection", name)),
	}
}

func (m *Model) Name() string { return m.name }

func (m *Model) PK() string { return m.pk }

// Init busca la colección (la crea si no existe) y crea los índices configurados.
// Puede llamarse otra vez; los índices existentes no se duplican.
func (m *Model) Init(ctx context.Context) error {
	if m.db == nil {
		return models.ErrNotConnected
	}
	if !m.initializing.CompareAndSwap(false, true) {
		return errInitInProgress
	}
	defer m.initializing.Store(false)

	insertWC, err := writeConcernFrom(m.cfg.DefaultInsertOptions)
	if err != nil {
		return fmt.Errorf("insert options: %w", err)
	}
	updateWC, err := writeConcernFrom(m.cfg.DefaultUpdateOptions)
	if err != nil {
		return fmt.Errorf("update options: %w", err)
	}
	deleteWC, err := writeConcernFrom(m.cfg.DefaultDeleteOptions)
	if err != nil {
		return fmt.Errorf("delete options: %w", err)
	}

	indexes := make([]mongo.IndexModel, 0, len(m.cfg.Indexes))
	for i, spec := range m.cfg.Indexes {
		im, err := indexModelFrom(spec)
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		indexes = append(indexes, im)
	}

	collection, err := m.lookupOrCreate(ctx)
	if err != nil {
		return err
	}

	if len(indexes) > 0 {
		names, err := collection.Indexes().CreateMany(ctx, indexes)
		if err != nil {
			m.logger.Error("index creation failed", zap.Error(err))
			return err
		}
		m.logger.Debug("indexes ready", zap.Strings("indexes", names))
	}

	h := &handles{collection: collection}
	if h.insert, err = collection.Clone(options.Collection().SetWriteConcern(insertWC)); err != nil {
		return err
	}
	if h.update, err = collection.Clone(options.Collection().SetWriteConcern(updateWC)); err != nil {
		return err
	}
	if h.delete, err = collection.Clone(options.Collection().SetWriteConcern(deleteWC)); err != nil {
		return err
	}

	m.h.Store(h)
	return nil
}

func (m *Model) lookupOrCreate(ctx context.Context) (*mongo.Collection, error) {
	names, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: m.name}})
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		err := m.db.RunCommand(ctx, createCommand(m.name, m.cfg.CollectionOptions)).Err()
		// otro proceso pudo crearla entre el listado y el create
		var ce mongo.CommandError
		if err != nil && !(errors.As(err, &ce) && ce.Code == codeNamespaceExists) {
			m.logger.Error("collection creation failed", zap.Error(err))
			return nil, err
		}
		if err == nil {
			m.logger.Info("collection created")
		}
	}

	return m.db.Collection(m.name), nil
}

func (m *Model) ready() (*handles, error) {
	h := m.h.Load()
	if h == nil {
		return nil, models.ErrNotInitialized
	}
	return h, nil
}

// Collection regresa el handle nativo, nil antes de Init.
func (m *Model) Collection() *mongo.Collection {
	if h := m.h.Load(); h != nil {
		return h.collection
	}
	return nil
}

func (m *Model) RawQuery() any {
	return m.Collection()
}

// RawGet regresa nil sin consultar cuando id es nil, y nil cuando no hay match.
func (m *Model) RawGet(ctx context.Context, id any) (models.Document, error) {
	if id == nil {
		return nil, nil
	}
	h, err := m.ready()
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = h.collection.FindOne(ctx, m.filter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		m.logger.Debug("get failed", zap.Any("id", id), zap.Error(err))
		return nil, err
	}
	return models.Document(doc), nil
}

func (m *Model) RawGetAll(ctx context.Context) ([]models.Document, error) {
	h, err := m.ready()
	if err != nil {
		return nil, err
	}

	cursor, err := h.collection.Find(ctx, bson.D{})
	if err != nil {
		m.logger.Debug("get all failed", zap.Error(err))
		return nil, err
	}

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.Document(row))
	}
	return docs, nil
}

// RawInsert regresa una copia de doc con la llave primaria que asignó el driver
// (como string hex) cuando doc no traía una.
func (m *Model) RawInsert(ctx context.Context, doc models.Document) (models.Document, error) {
	h, err := m.ready()
	if err != nil {
		return nil, err
	}

	if m.cfg.Schema != nil {
		if err := m.cfg.Schema.Validate(doc, models.ValidateOptions{}); err != nil {
			return nil, err
		}
	}

	out := doc.Clone()
	// el driver solo genera _id; otras llaves reciben un ObjectID hex
	if m.pk != defaultPK && out[m.pk] == nil {
		out[m.pk] = primitive.NewObjectID().Hex()
	}

	res, err := h.insert.InsertOne(ctx, out)
	if err = ackError(err); err != nil {
		m.logger.Debug("insert failed", zap.Error(err))
		return nil, err
	}

	// con w: 0 no hay resultado
	if out[m.pk] == nil && res != nil {
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			out[m.pk] = oid.Hex()
		} else {
			out[m.pk] = res.InsertedID
		}
	}
	return out, nil
}

// RawUpdate aplica $set solo con los campos de changes. Sin match no es error.
func (m *Model) RawUpdate(ctx context.Context, id any, changes models.Document) error {
	h, err := m.ready()
	if err != nil {
		return err
	}

	if m.cfg.Schema != nil {
		if err := m.cfg.Schema.Validate(changes, models.ValidateOptions{IgnoreMissing: true}); err != nil {
			return err
		}
	}

	// $set vacío lo rechaza el servidor; nil nunca hace match
	if id == nil || len(changes) == 0 {
		return nil
	}

	_, err = h.update.UpdateOne(ctx, m.filter(id), bson.D{{Key: "$set", Value: changes}})
	if err = ackError(err); err != nil {
		m.logger.Debug("update failed", zap.Any("id", id), zap.Error(err))
	}
	return err
}

// RawRemove borra el documento; sin match no es error.
func (m *Model) RawRemove(ctx context.Context, id any) error {
	h, err := m.ready()
	if err != nil {
		return err
	}
	if id == nil {
		return nil
	}

	_, err = h.delete.DeleteOne(ctx, m.filter(id))
	if err = ackError(err); err != nil {
		m.logger.Debug("remove failed", zap.Any("id", id), zap.Error(err))
	}
	return err
}

// filter busca por la llave primaria. Con _id un string hex puede estar
// guardado como ObjectID (generado) o como string (dado por el caller), así
// que se buscan ambos.
func (m *Model) filter(id any) bson.D {
	if m.pk == defaultPK {
		if s, ok := id.(string); ok {
			if oid, err := primitive.ObjectIDFromHex(s); err == nil {
				return bson.D{{Key: m.pk, Value: bson.D{{Key: "$in", Value: bson.A{oid, s}}}}}
			}
		}
	}
	return bson.D{{Key: m.pk, Value: id}}
}

// ackError descarta el aviso de escritura sin confirmar (w: 0).
func ackError(err error) error {
	if errors.Is(err, mongo.ErrUnacknowledgedWrite) {
		return nil
	}
	return err
}
