// Package wire adapts the bsoncore codec to the offset-addressed view of
// BSON buffers that the document tree needs.  bsoncore reads and writes
// elements sequentially over byte slices; the tree instead records a byte
// offset per node and asks questions about the element encoded there: its
// type, its field name, the size of its name and value regions, and where
// the next element begins.  Everything below the header bookkeeping is
// delegated to bsoncore.
package wire

import (
	"bytes"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// TypeEOO is the end-of-object terminator tag.  bsontype does not name it.
const TypeEOO = bsontype.Type(0x00)

// DocumentHeaderLen is the size of the int32 length prefix that starts
// every encoded document.  A document's first element begins this many
// bytes past the document's own offset.
const DocumentHeaderLen = 4

// Elem locates one encoded element inside a larger buffer.  Name and
// Value.Data alias the buffer the element was decoded from.
type Elem struct {
	// Offset of the element's type byte within the source buffer.
	Offset int
	// Name is the field name without its terminator.
	Name []byte
	// Value is the typed payload.
	Value bsoncore.Value
}

// NameSize returns the encoded size of the field name, terminator
// included.
func (e Elem) NameSize() int { return len(e.Name) + 1 }

// Size returns the total encoded size of the element: type byte, name,
// and value payload.
func (e Elem) Size() int { return 1 + e.NameSize() + len(e.Value.Data) }

// ValueOffset returns the offset of the first byte of the value payload
// within the source buffer.
func (e Elem) ValueOffset() int { return e.Offset + 1 + e.NameSize() }

// DecodeElement parses the element whose type byte sits at offset in src.
// It returns ok=false with a nil error if offset addresses a container
// terminator rather than an element.
func DecodeElement(src []byte, offset int) (Elem, bool, error) {
	if offset < 0 || offset >= len(src) {
		return Elem{}, false, fmt.Errorf("wire: element offset %d out of range for %d-byte buffer", offset, len(src))
	}
	if src[offset] == byte(TypeEOO) {
		return Elem{}, false, nil
	}
	t := bsontype.Type(src[offset])
	nameStart := offset + 1
	nameLen := bytes.IndexByte(src[nameStart:], 0x00)
	if nameLen < 0 {
		return Elem{}, false, fmt.Errorf("wire: malformed element header at offset %d", offset)
	}
	val, _, ok := bsoncore.ReadValue(src[nameStart+nameLen+1:], t)
	if !ok {
		return Elem{}, false, fmt.Errorf("wire: malformed %v value at offset %d", t, offset)
	}
	return Elem{
		Offset: offset,
		Name:   src[nameStart : nameStart+nameLen],
		Value:  val,
	}, true, nil
}

// IsContainer reports whether t is an object or array type.
func IsContainer(t bsontype.Type) bool {
	return t == bsontype.EmbeddedDocument || t == bsontype.Array
}

// CanonicalRank maps a type tag to its position in the canonical BSON
// sort order.  Types sharing a rank (the numbers; string and symbol)
// compare by value.
func CanonicalRank(t bsontype.Type) int {
	switch t {
	case bsontype.MinKey:
		return -1
	case TypeEOO, bsontype.Undefined:
		return 0
	case bsontype.Null:
		return 5
	case bsontype.Double, bsontype.Int32, bsontype.Int64, bsontype.Decimal128:
		return 10
	case bsontype.String, bsontype.Symbol:
		return 15
	case bsontype.EmbeddedDocument:
		return 20
	case bsontype.Array:
		return 25
	case bsontype.Binary:
		return 30
	case bsontype.ObjectID:
		return 35
	case bsontype.Boolean:
		return 40
	case bsontype.DateTime:
		return 45
	case bsontype.Timestamp:
		return 47
	case bsontype.Regex:
		return 50
	case bsontype.DBPointer:
		return 55
	case bsontype.JavaScript:
		return 60
	case bsontype.CodeWithScope:
		return 65
	case bsontype.MaxKey:
		return 127
	default:
		panic(fmt.Sprintf("wire: no canonical rank for type %v", t))
	}
}
