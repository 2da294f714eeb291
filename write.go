package bsontree

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// WriteTo appends the element's encoding to dst and returns the extended
// buffer.  The root is emitted as a bare document: no type byte, no
// name, just the object body the tree represents.  Any other element
// must be an object and is emitted as a full element.  Serialized
// regions are block-copied from their byte sources; edited containers
// are rebuilt child by child.
func (e Element) WriteTo(dst []byte) []byte {
	e.mustOK()
	d := e.doc
	if d.typeOf(e.idx) != bsontype.EmbeddedDocument {
		panic("bsontree: WriteTo on a non-object element")
	}
	if e.idx == rootIdx && d.repAt(e.idx).parent == invalidIdx {
		idx, dst := bsoncore.AppendDocumentStart(dst)
		dst = d.writeChildren(dst, e.idx, false)
		return mustAppendEnd(dst, idx)
	}
	return d.writeElement(dst, e.idx, nil)
}

// WriteArrayTo appends the element's children as an encoded array
// document to dst.  The element must be an array; children are emitted
// with synthesized decimal index names regardless of the names their
// records carry.
func (e Element) WriteArrayTo(dst []byte) []byte {
	e.mustOK()
	d := e.doc
	if d.typeOf(e.idx) != bsontype.Array {
		panic("bsontree: WriteArrayTo on a non-array element")
	}
	idx, dst := bsoncore.AppendArrayStart(dst)
	dst = d.writeChildren(dst, e.idx, true)
	return mustAppendEnd(dst, idx)
}

// Bytes serializes the whole tree and returns the encoded document.
func (d *Document) Bytes() []byte {
	return d.Root().WriteTo(nil)
}

// writeElement emits one element.  name, when non-nil, overrides the
// element's own field name (array emission and copies under a new name).
func (d *Document) writeElement(dst []byte, idx uint32, name *string) []byte {
	if d.hasValue(idx) {
		elem := d.serializedElem(idx)
		if name == nil {
			src := d.sources[d.repAt(idx).source]
			return append(dst, src[elem.Offset:elem.Offset+elem.Size()]...)
		}
		return bsoncore.AppendValueElement(dst, *name, elem.Value)
	}
	fieldName := d.fieldName(idx)
	if name != nil {
		fieldName = *name
	}
	switch d.typeOf(idx) {
	case bsontype.Array:
		aidx, out := bsoncore.AppendArrayElementStart(dst, fieldName)
		out = d.writeChildren(out, idx, true)
		return mustAppendEnd(out, aidx)
	case bsontype.EmbeddedDocument:
		didx, out := bsoncore.AppendDocumentElementStart(dst, fieldName)
		out = d.writeChildren(out, idx, false)
		return mustAppendEnd(out, didx)
	}
	// A leaf without a value region would mean a dirtied leaf, which the
	// mutation paths never produce.
	panic("bsontree: cannot serialize a leaf without backing bytes")
}

func (d *Document) writeChildren(dst []byte, idx uint32, array bool) []byte {
	child := d.resolveLeftChild(idx)
	for pos := 0; child != invalidIdx; pos++ {
		if array {
			name := strconv.Itoa(pos)
			dst = d.writeElement(dst, child, &name)
		} else {
			dst = d.writeElement(dst, child, nil)
		}
		child = d.resolveRightSibling(child)
	}
	return dst
}

func mustAppendEnd(dst []byte, index int32) []byte {
	out, err := bsoncore.AppendDocumentEnd(dst, index)
	if err != nil {
		panic(err)
	}
	return out
}
