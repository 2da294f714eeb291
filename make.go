package bsontree

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bsontree/bsontree/wire"
)

// The MakeElement* constructors encode a new element into the leaf
// builder and return a detached handle for it.  The handle attaches to
// the tree via PushFront, PushBack, AddSiblingLeft, or AddSiblingRight;
// once attached it cannot be attached again until Remove detaches it.

func (d *Document) MakeElementDouble(name string, value float64) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendDoubleElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementString(name, value string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendStringElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

// MakeElementObject returns a new empty object with no backing bytes;
// its name lives in the name heap.
func (d *Document) MakeElementObject(name string) Element {
	rep := newRep()
	rep.offset = d.insertName(name)
	return Element{doc: d, idx: d.insertElement(rep)}
}

// MakeElementObjectFromBytes copies the encoded document value into the
// leaf builder and returns an object element over it.  Children stay
// opaque until navigated.
func (d *Document) MakeElementObjectFromBytes(name string, value []byte) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendDocumentElement(d.leaf, name, value)
	idx := d.insertLeafElement(off)
	rep := d.repAt(idx)
	rep.leftChild = opaqueIdx
	rep.rightChild = opaqueIdx
	return Element{doc: d, idx: idx}
}

// MakeElementArray returns a new empty array with no backing bytes.
func (d *Document) MakeElementArray(name string) Element {
	rep := newRep()
	rep.array = true
	rep.offset = d.insertName(name)
	return Element{doc: d, idx: d.insertElement(rep)}
}

// MakeElementArrayFromBytes copies the encoded array value into the leaf
// builder and returns an array element over it.
func (d *Document) MakeElementArrayFromBytes(name string, value []byte) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendArrayElement(d.leaf, name, value)
	idx := d.insertLeafElement(off)
	rep := d.repAt(idx)
	rep.leftChild = opaqueIdx
	rep.rightChild = opaqueIdx
	return Element{doc: d, idx: idx}
}

func (d *Document) MakeElementBinary(name string, subtype byte, data []byte) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendBinaryElement(d.leaf, name, subtype, data)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementUndefined(name string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendUndefinedElement(d.leaf, name)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementObjectID(name string, value primitive.ObjectID) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendObjectIDElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementBool(name string, value bool) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendBooleanElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

// MakeElementDateTime takes milliseconds since the Unix epoch.
func (d *Document) MakeElementDateTime(name string, value int64) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendDateTimeElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementNull(name string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendNullElement(d.leaf, name)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementRegex(name, pattern, options string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendRegexElement(d.leaf, name, pattern, options)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementDBPointer(name, ns string, oid primitive.ObjectID) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendDBPointerElement(d.leaf, name, ns, oid)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementJavaScript(name, code string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendJavaScriptElement(d.leaf, name, code)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementSymbol(name, value string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendSymbolElement(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementCodeWithScope(name, code string, scope []byte) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendCodeWithScopeElement(d.leaf, name, code, scope)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementInt32(name string, value int32) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendInt32Element(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementTimestamp(name string, t, i uint32) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendTimestampElement(d.leaf, name, t, i)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementInt64(name string, value int64) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendInt64Element(d.leaf, name, value)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementMinKey(name string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendMinKeyElement(d.leaf, name)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

func (d *Document) MakeElementMaxKey(name string) Element {
	off := len(d.leaf)
	d.leaf = bsoncore.AppendMaxKeyElement(d.leaf, name)
	return Element{doc: d, idx: d.insertLeafElement(off)}
}

// MakeElementValue builds an element holding value under the given field
// name.  It panics on the end-of-object type, which never encodes a
// value.
func (d *Document) MakeElementValue(name string, value bsoncore.Value) Element {
	if value.Type == wire.TypeEOO {
		panic("bsontree: cannot make an element of the end-of-object type")
	}
	off := len(d.leaf)
	d.leaf = bsoncore.AppendValueElement(d.leaf, name, value)
	idx := d.insertLeafElement(off)
	if wire.IsContainer(value.Type) {
		rep := d.repAt(idx)
		rep.leftChild = opaqueIdx
		rep.rightChild = opaqueIdx
	}
	return Element{doc: d, idx: idx}
}

// MakeElementFromElement builds a copy of src, which may belong to this
// or any other Document, under a new field name.  Containers without a
// value region are rebuilt through the serializer.
func (d *Document) MakeElementFromElement(name string, src Element) Element {
	src.mustOK()
	if src.doc.hasValue(src.idx) {
		return d.MakeElementValue(name, src.doc.serializedElem(src.idx).Value)
	}
	encoded := src.doc.writeElement(nil, src.idx, &name)
	off := len(d.leaf)
	d.leaf = append(d.leaf, encoded...)
	idx := d.insertLeafElement(off)
	rep := d.repAt(idx)
	rep.leftChild = opaqueIdx
	rep.rightChild = opaqueIdx
	return Element{doc: d, idx: idx}
}
