package gate

import "fmt"

// Gate validates untyped operation payloads against declared schemas.
// Construct one with the full schema set and inject it where commands
// are dispatched; it holds no mutable state after construction.
type Gate struct {
	schemas map[string]Schema
}

// NewGate creates a Gate with the given per-operation schemas.
func NewGate(schemas map[string]Schema) *Gate {
	if schemas == nil {
		schemas = make(map[string]Schema)
	}
	return &Gate{schemas: schemas}
}

// Register adds or replaces the schema for an operation.
func (g *Gate) Register(op string, schema Schema) {
	g.schemas[op] = schema
}

// Validate walks the operation's schema depth-first and returns a new
// payload containing only the fields the schema recognizes. Unknown
// fields are dropped, not rejected. The first violated rule aborts the
// walk with a *ValidationError.
func (g *Gate) Validate(op string, payload map[string]any) (map[string]any, error) {
	schema, ok := g.schemas[op]
	if !ok {
		return nil, fmt.Errorf("validate payload for %q: %w", op, ErrUnknownOperation)
	}
	return validateObject(op, "", schema, payload)
}

// validateObject applies a schema to one (possibly nested) object.
// prefix carries the dotted path of enclosing fields for error context.
func validateObject(op, prefix string, schema Schema, payload map[string]any) (map[string]any, error) {
	validated := make(map[string]any, len(schema))

	for name, field := range schema {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		value, present := payload[name]
		if !present || value == nil {
			if field.Required {
				return nil, &ValidationError{Op: op, Field: path, Kind: ErrMissingField}
			}
			continue
		}

		checked, err := validateField(op, path, field, value)
		if err != nil {
			return nil, err
		}
		validated[name] = checked
	}

	return validated, nil
}

// validateField applies one field's rules to its value and returns the
// value to place in the validated payload.
func validateField(op, path string, field Field, value any) (any, error) {
	switch field.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrTypeMismatch}
		}
		if field.MaxLen > 0 && len(s) > field.MaxLen {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrTooLong}
		}

	case TypeNumber:
		n, ok := asNumber(value)
		if !ok {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrTypeMismatch}
		}
		if field.Min != nil && n < *field.Min {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrOutOfRange}
		}
		if field.Max != nil && n > *field.Max {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrOutOfRange}
		}

	case TypeBool:
		if _, ok := value.(bool); !ok {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrTypeMismatch}
		}

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrTypeMismatch}
		}
		if field.Fields != nil {
			// Recurse; the validated sub-object replaces the original.
			sub, err := validateObject(op, path, field.Fields, obj)
			if err != nil {
				return nil, err
			}
			value = sub
		}

	default:
		return nil, &ValidationError{Op: op, Field: path, Kind: ErrTypeMismatch}
	}

	if field.Check != nil {
		if err := field.Check(value); err != nil {
			return nil, &ValidationError{Op: op, Field: path, Kind: ErrCustomCheck, Detail: err}
		}
	}
	return value, nil
}

// asNumber normalizes the numeric types different decoders produce.
func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	default:
		return 0, false
	}
}
