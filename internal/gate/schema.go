package gate

// FieldType is the expected primitive kind of a schema field.
type FieldType string

const (
	// TypeString expects a string value.
	TypeString FieldType = "string"

	// TypeNumber expects a numeric value. Decoders may deliver numbers
	// as int, int64, or float64; all are accepted.
	TypeNumber FieldType = "number"

	// TypeBool expects a boolean value.
	TypeBool FieldType = "bool"

	// TypeObject expects a map value, optionally validated against a
	// nested sub-schema.
	TypeObject FieldType = "object"
)

// Field declares the validation rules for one payload field.
type Field struct {
	// Type is the expected primitive kind.
	Type FieldType

	// Required rejects the payload when the field is absent. Optional
	// absent fields are skipped silently.
	Required bool

	// Min and Max bound numeric fields when non-nil.
	Min *float64
	Max *float64

	// MaxLen bounds string fields when positive.
	MaxLen int

	// Fields is the sub-schema applied to object fields. Nil means the
	// object is accepted as-is (opaque).
	Fields Schema

	// Check is an optional custom predicate, run after the structural
	// checks pass. A non-nil return rejects the field.
	Check func(value any) error
}

// Schema maps field names to their validation rules for one operation.
type Schema map[string]Field

// Bounds is a convenience constructor for numeric min/max pointers.
func Bounds(min, max float64) (*float64, *float64) {
	return &min, &max
}
