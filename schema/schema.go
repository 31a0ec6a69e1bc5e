// Package schema implementa un models.Validator sencillo por campo: tipo,
// valores permitidos y requerido.
package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/Nemutagk/thinodium/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TypeAny      = "any"
	TypeString   = "string"
	TypeNumber   = "number"
	TypeInt      = "int"
	TypeBool     = "bool"
	TypeObject   = "object"
	TypeArray    = "array"
	TypeObjectID = "objectId"
	TypeDate     = "date"
)

var knownTypes = map[string]bool{
	"":           true,
	TypeAny:      true,
	TypeString:   true,
	TypeNumber:   true,
	TypeInt:      true,
	TypeBool:     true,
	TypeObject:   true,
	TypeArray:    true,
	TypeObjectID: true,
	TypeDate:     true,
}

// Rule describe un campo del documento.
type Rule struct {
	Type     string `yaml:"type"`
	Enum     []any  `yaml:"enum"`
	Required bool   `yaml:"required"`
}

type Schema struct {
	rules  map[string]Rule
	fields []string
}

var _ models.Validator = (*Schema)(nil)

func New(rules map[string]Rule) (*Schema, error) {
	fields := make([]string, 0, len(rules))
	for field, rule := range rules {
		if !knownTypes[rule.Type] {
			return nil, fmt.Errorf("schema field %q: unknown type %q", field, rule.Type)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return &Schema{rules: rules, fields: fields}, nil
}

// MustNew es New pero entra en pánico si las reglas son inválidas.
func MustNew(rules map[string]Rule) *Schema {
	s, err := New(rules)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate regresa un *models.ValidationError con todos los campos inválidos.
// Los campos que no están en el esquema se aceptan.
func (s *Schema) Validate(doc models.Document, opts models.ValidateOptions) error {
	verr := models.NewValidationError()

	for _, field := range s.fields {
		rule := s.rules[field]
		value, ok := doc[field]
		if !ok || value == nil {
			if rule.Required && !opts.IgnoreMissing {
				verr.Add(field, "is required")
			}
			continue
		}

		if !matchesType(rule.Type, value) {
			verr.Add(field, fmt.Sprintf("must be of type %s", rule.Type))
			continue
		}

		if len(rule.Enum) > 0 && !inEnum(rule.Enum, value) {
			verr.Add(field, fmt.Sprintf("must be one of %v", rule.Enum))
		}
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func matchesType(typ string, value any) bool {
	switch typ {
	case "", TypeAny:
		return true
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		_, ok := toFloat(value)
		if !ok {
			_, ok = value.(primitive.Decimal128)
		}
		return ok
	case TypeInt:
		f, ok := toFloat(value)
		return ok && f == math.Trunc(f)
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeObject:
		switch value.(type) {
		case map[string]any, models.Document, bson.M, bson.D:
			return true
		}
		return false
	case TypeArray:
		switch value.(type) {
		case []byte, bson.D:
			return false
		case bson.A:
			return true
		}
		k := reflect.TypeOf(value).Kind()
		return k == reflect.Slice || k == reflect.Array
	case TypeObjectID:
		switch v := value.(type) {
		case primitive.ObjectID:
			return true
		case string:
			return primitive.IsValidObjectID(v)
		}
		return false
	case TypeDate:
		switch value.(type) {
		case time.Time, primitive.DateTime:
			return true
		}
		return false
	}
	return false
}

func inEnum(enum []any, value any) bool {
	for _, allowed := range enum {
		if equal(allowed, value) {
			return true
		}
	}
	return false
}

// equal compara números por valor sin importar el tipo (YAML da int, JSON float64).
func equal(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
