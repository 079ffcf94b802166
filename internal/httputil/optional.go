package httputil

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Optional tracks presence and value of a PATCH field (RFC 7396), which a
// plain pointer cannot tell apart:
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value!=nil: field has a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON implements json.Unmarshaler. It is only called for fields
// present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalString is a nullable text field
type OptionalString = Optional[string]

// OptionalDecimal is a nullable amount. Both JSON numbers and numeric
// strings are accepted.
type OptionalDecimal = Optional[decimal.Decimal]

// NullDecimal converts an amount pointer to the storage form; nil is NULL
func NullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*v)
}
