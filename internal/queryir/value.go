package queryir

// Value is a literal comparable against a trace store column in an
// Equals predicate.
//
// This is a sealed interface - only types in this package implement it,
// grounded on the same marker-method sealing used by Query/Predicate.
// Every trace store column is a fixed scalar type (TEXT or INTEGER), so
// unlike a schema-free value representation, Value only needs to cover
// strings and integers - there is no object, array, float, or null
// column to represent.
type Value interface {
	valueNode()
}

// QString is a literal TEXT value, e.g. a pattern_name or variable_name.
type QString string

func (QString) valueNode() {}

// QInt is a literal INTEGER value, e.g. an ordpos, seq, or result_handle.
type QInt int64

func (QInt) valueNode() {}
