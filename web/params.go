package web

import (
	"strconv"

	"github.com/google/uuid"
)

// Params holds the converted path parameter values extracted by a match,
// keyed by parameter name. Values are typed per the parameter kind:
// string for str and multipath, int64 for int, float64 for float and
// uuid.UUID for uuid.
type Params map[string]any

// Str returns the named parameter as a string. Returns "" when the
// parameter is absent or not a string.
func (p Params) Str(name string) string {
	v, _ := p[name].(string)
	return v
}

// Int returns the named parameter as an int64. Returns 0 when the
// parameter is absent or not an int64.
func (p Params) Int(name string) int64 {
	v, _ := p[name].(int64)
	return v
}

// Float returns the named parameter as a float64. Returns 0 when the
// parameter is absent or not a float64.
func (p Params) Float(name string) float64 {
	v, _ := p[name].(float64)
	return v
}

// UUID returns the named parameter as a uuid.UUID. Returns the zero UUID
// when the parameter is absent or not a UUID.
func (p Params) UUID(name string) uuid.UUID {
	v, _ := p[name].(uuid.UUID)
	return v
}

// Has reports whether the named parameter is present.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// convertParam converts a captured raw value per the parameter kind.
func convertParam(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return strconv.ParseInt(raw, 10, 64)
	case KindFloat:
		return strconv.ParseFloat(raw, 64)
	case KindUUID:
		return uuid.Parse(raw)
	default:
		return raw, nil
	}
}
