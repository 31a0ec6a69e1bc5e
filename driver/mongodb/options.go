package mongodb

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Nemutagk/thinodium/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// defaultWriteOptions confirma la escritura en un solo nodo.
var defaultWriteOptions = models.Options{"w": 1}

func writeConcernFrom(opts models.Options) (*writeconcern.WriteConcern, error) {
	if opts == nil {
		opts = defaultWriteOptions
	}

	wc := &writeconcern.WriteConcern{}
	for key, value := range opts {
		switch key {
		case "w":
			if tag, ok := value.(string); ok {
				wc.W = tag
				continue
			}
			n, ok := toInt(value)
			if !ok || n < 0 {
				return nil, fmt.Errorf("write option w: invalid value %v", value)
			}
			wc.W = n
		case "j":
			j, ok := value.(bool)
			if !ok {
				return nil, fmt.Errorf("write option j: expected bool, got %T", value)
			}
			wc.Journal = &j
		case "wtimeout":
			n, ok := toInt(value)
			if !ok || n < 0 {
				return nil, fmt.Errorf("write option wtimeout: invalid value %v", value)
			}
			wc.WTimeout = time.Duration(n) * time.Millisecond
		default:
			return nil, fmt.Errorf("unsupported write option %q", key)
		}
	}
	return wc, nil
}

func indexModelFrom(spec models.IndexSpec) (mongo.IndexModel, error) {
	if len(spec.Keys) == 0 {
		return mongo.IndexModel{}, fmt.Errorf("index without keys")
	}

	keys := make(bson.D, 0, len(spec.Keys))
	for _, k := range spec.Keys {
		if k.Field == "" {
			return mongo.IndexModel{}, fmt.Errorf("index key without field")
		}
		keys = append(keys, bson.E{Key: k.Field, Value: k.Direction})
	}

	io := options.Index()
	for key, value := range spec.Options {
		var err error
		switch key {
		case "name":
			var s string
			if s, err = asString(key, value); err == nil {
				io.SetName(s)
			}
		case "default_language":
			var s string
			if s, err = asString(key, value); err == nil {
				io.SetDefaultLanguage(s)
			}
		case "unique":
			var b bool
			if b, err = asBool(key, value); err == nil {
				io.SetUnique(b)
			}
		case "sparse":
			var b bool
			if b, err = asBool(key, value); err == nil {
				io.SetSparse(b)
			}
		case "background":
			var b bool
			if b, err = asBool(key, value); err == nil {
				io.SetBackground(b)
			}
		case "hidden":
			var b bool
			if b, err = asBool(key, value); err == nil {
				io.SetHidden(b)
			}
		case "expireAfterSeconds":
			n, ok := toInt(value)
			if !ok || n < 0 || n > math.MaxInt32 {
				err = fmt.Errorf("index option %s: invalid value %v", key, value)
				break
			}
			io.SetExpireAfterSeconds(int32(n))
		case "partialFilterExpression":
			io.SetPartialFilterExpression(value)
		case "weights":
			io.SetWeights(value)
		default:
			err = fmt.Errorf("unsupported index option %q", key)
		}
		if err != nil {
			return mongo.IndexModel{}, err
		}
	}

	return mongo.IndexModel{Keys: keys, Options: io}, nil
}

// createCommand arma el comando create con las opciones de la colección tal cual.
func createCommand(name string, opts models.Options) bson.D {
	cmd := bson.D{{Key: "create", Value: name}}
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd = append(cmd, bson.E{Key: k, Value: opts[k]})
	}
	return cmd
}

func asString(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("index option %s: expected string, got %T", key, value)
	}
	return s, nil
}

func asBool(key string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("index option %s: expected bool, got %T", key, value)
	}
	return b, nil
}

// toInt acepta los enteros que llegan de YAML, JSON o código Go.
func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint32:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}
