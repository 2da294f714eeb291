package bsontree

import (
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bsontree/bsontree/wire"
)

// The SetValue* family replaces an element's value while keeping its
// position in the tree.  Fixed-size values (double, bool, int32, int64)
// may qualify for an in-place update; everything else disables in-place
// mode for the Document.

// SetValueDouble replaces the element's value with a double.
func (e Element) SetValueDouble(value float64) error {
	e.mustOK()
	return e.setValueFixed(func(name string) Element {
		return e.doc.MakeElementDouble(name, value)
	})
}

// SetValueBool replaces the element's value with a boolean.
func (e Element) SetValueBool(value bool) error {
	e.mustOK()
	return e.setValueFixed(func(name string) Element {
		return e.doc.MakeElementBool(name, value)
	})
}

// SetValueInt32 replaces the element's value with an int32.
func (e Element) SetValueInt32(value int32) error {
	e.mustOK()
	return e.setValueFixed(func(name string) Element {
		return e.doc.MakeElementInt32(name, value)
	})
}

// SetValueInt64 replaces the element's value with an int64.
func (e Element) SetValueInt64(value int64) error {
	e.mustOK()
	return e.setValueFixed(func(name string) Element {
		return e.doc.MakeElementInt64(name, value)
	})
}

// setValueFixed attempts an in-place replacement before falling back to
// a splice.  Eligibility: in-place mode still on, the target has a value
// region outside the leaf builder, and the replacement encodes to the
// same size.  An eligible replacement records one damage event for the
// value payload, preceded by a one-byte event when the type tag changes.
func (e Element) setValueFixed(build func(name string) Element) error {
	d := e.doc
	inPlace := false
	value := d.End()

	if d.inPlace {
		rep := d.repAt(e.idx)
		inLeafHeap := rep.source == leafSourceID
		if d.hasValue(e.idx) && !inLeafHeap {
			value = build(d.fieldName(e.idx))
			thisElem := d.serializedElem(e.idx)
			newElem := d.serializedElem(value.idx)
			if thisElem.Size() == newElem.Size() {
				inPlace = true
				targetBase := uint32(thisElem.Offset)
				sourceBase := uint32(newElem.Offset)
				if thisElem.Value.Type != newElem.Value.Type {
					d.recordDamage(targetBase, sourceBase, 1)
				}
				// Same total size and same name imply the value regions
				// line up exactly.
				skip := uint32(1 + thisElem.NameSize())
				d.recordDamage(targetBase+skip, sourceBase+skip, uint32(len(thisElem.Value.Data)))
			}
		}
	}

	if !value.Ok() {
		value = build(d.fieldName(e.idx))
	}
	return e.setValueElement(value, inPlace)
}

// SetValueString replaces the element's value with a string.
func (e Element) SetValueString(value string) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementString(e.FieldName(), value), false)
}

// SetValueObject replaces the element's value with the encoded document.
func (e Element) SetValueObject(value []byte) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementObjectFromBytes(e.FieldName(), value), false)
}

// SetValueArray replaces the element's value with the encoded array.
func (e Element) SetValueArray(value []byte) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementArrayFromBytes(e.FieldName(), value), false)
}

// SetValueBinary replaces the element's value with a binary blob.
func (e Element) SetValueBinary(subtype byte, data []byte) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementBinary(e.FieldName(), subtype, data), false)
}

// SetValueUndefined replaces the element's value with undefined.
func (e Element) SetValueUndefined() error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementUndefined(e.FieldName()), false)
}

// SetValueObjectID replaces the element's value with an ObjectID.
func (e Element) SetValueObjectID(value primitive.ObjectID) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementObjectID(e.FieldName(), value), false)
}

// SetValueDateTime replaces the element's value with a datetime given as
// milliseconds since the Unix epoch.
func (e Element) SetValueDateTime(value int64) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementDateTime(e.FieldName(), value), false)
}

// SetValueNull replaces the element's value with null.
func (e Element) SetValueNull() error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementNull(e.FieldName()), false)
}

// SetValueRegex replaces the element's value with a regular expression.
func (e Element) SetValueRegex(pattern, options string) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementRegex(e.FieldName(), pattern, options), false)
}

// SetValueDBPointer replaces the element's value with a DB pointer.
func (e Element) SetValueDBPointer(ns string, oid primitive.ObjectID) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementDBPointer(e.FieldName(), ns, oid), false)
}

// SetValueJavaScript replaces the element's value with code.
func (e Element) SetValueJavaScript(code string) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementJavaScript(e.FieldName(), code), false)
}

// SetValueSymbol replaces the element's value with a symbol.
func (e Element) SetValueSymbol(value string) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementSymbol(e.FieldName(), value), false)
}

// SetValueCodeWithScope replaces the element's value with code and an
// encoded scope document.
func (e Element) SetValueCodeWithScope(code string, scope []byte) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementCodeWithScope(e.FieldName(), code, scope), false)
}

// SetValueTimestamp replaces the element's value with a timestamp.
func (e Element) SetValueTimestamp(t, i uint32) error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementTimestamp(e.FieldName(), t, i), false)
}

// SetValueMinKey replaces the element's value with the minimum key.
func (e Element) SetValueMinKey() error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementMinKey(e.FieldName()), false)
}

// SetValueMaxKey replaces the element's value with the maximum key.
func (e Element) SetValueMaxKey() error {
	e.mustOK()
	return e.setValueElement(e.doc.MakeElementMaxKey(e.FieldName()), false)
}

// SetValueWireValue replaces the element's value with an arbitrary
// encoded value, routing through the typed setter for its tag so the
// fixed-size types keep their in-place eligibility.
func (e Element) SetValueWireValue(value bsoncore.Value) error {
	e.mustOK()
	switch value.Type {
	case wire.TypeEOO:
		return ErrSetEOO
	case bsontype.Double:
		return e.SetValueDouble(value.Double())
	case bsontype.Boolean:
		return e.SetValueBool(value.Boolean())
	case bsontype.Int32:
		return e.SetValueInt32(value.Int32())
	case bsontype.Int64:
		return e.SetValueInt64(value.Int64())
	}
	return e.setValueElement(e.doc.MakeElementValue(e.FieldName(), value), false)
}
