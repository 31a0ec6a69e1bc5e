package models

import "context"

// Document es un registro crudo tal como se guarda en la colección.
type Document map[string]any

// Clone regresa una copia superficial del documento.
func (d Document) Clone() Document {
	out := make(Document, len(d)+1)
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Options es una bolsa opaca de opciones que se pasan tal cual al driver.
type Options map[string]any

// ValidateOptions ajusta una ejecución del Validator.
type ValidateOptions struct {
	// IgnoreMissing omite los campos requeridos (payloads parciales de update)
	IgnoreMissing bool
}

// Validator revisa un documento antes de escribirlo; un error aborta la escritura.
type Validator interface {
	Validate(doc Document, opts ValidateOptions) error
}

// IndexKey es un campo del patrón de llaves de un índice.
type IndexKey struct {
	Field string
	// 1, -1 o un tipo especial como "text" o "2dsphere"
	Direction any
}

// IndexSpec describe un índice que se crea en Init.
type IndexSpec struct {
	Keys    []IndexKey
	Options Options
}

// ModelConfig configura el enlace con una colección.
type ModelConfig struct {
	// PK es el campo llave primaria, "_id" si está vacío
	PK                   string
	Indexes              []IndexSpec
	Schema               Validator
	CollectionOptions    Options
	DefaultInsertOptions Options
	DefaultUpdateOptions Options
	DefaultDeleteOptions Options
}

// Database es el rol de conexión de un adapter.
type Database interface {
	Connect(ctx context.Context, url string, opts Options) error
	Disconnect(ctx context.Context) error
	NewModel(name string, cfg ModelConfig) Model
}

// Model es el rol de colección de un adapter. Todo excepto Init requiere
// que Init haya terminado sin error.
type Model interface {
	Init(ctx context.Context) error
	RawQuery() any
	RawGet(ctx context.Context, id any) (Document, error)
	RawGetAll(ctx context.Context) ([]Document, error)
	RawInsert(ctx context.Context, doc Document) (Document, error)
	RawUpdate(ctx context.Context, id any, changes Document) error
	RawRemove(ctx context.Context, id any) error
}
