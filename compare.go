package bsontree

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bsontree/bsontree/wire"
)

// CompareWith orders e against other, which may belong to a different
// Document.  The order is canonical type rank, then field name when
// considerFieldName is set, then value; containers recurse over their
// children in lockstep with the shorter side comparing less.  Children
// of two arrays compare without field names, since array indices are
// synthesized.
func (e Element) CompareWith(other Element, considerFieldName bool) int {
	e.mustOK()
	other.mustOK()
	if e.doc == other.doc && e.idx == other.idx {
		return 0
	}

	// When either side has an encoded value, the comparison runs over
	// wire elements.  The argument order flips for the left side, so the
	// result is negated.
	if e.doc.hasValue(e.idx) {
		elem := e.doc.serializedElem(e.idx)
		return -other.compareWithNamedValue(elem.Name, elem.Value, considerFieldName)
	}
	if other.doc.hasValue(other.idx) {
		elem := other.doc.serializedElem(other.idx)
		return e.compareWithNamedValue(elem.Name, elem.Value, considerFieldName)
	}

	// Both sides are containers without backing values.
	lt := e.doc.typeOf(e.idx)
	rt := other.doc.typeOf(other.idx)
	if diff := wire.CanonicalRank(lt) - wire.CanonicalRank(rt); diff != 0 {
		return diff
	}
	if considerFieldName {
		if c := strings.Compare(e.FieldName(), other.FieldName()); c != 0 {
			return c
		}
	}
	considerChildNames := lt != bsontype.Array && rt != bsontype.Array

	this, that := e.LeftChild(), other.LeftChild()
	for {
		if !this.Ok() {
			if !that.Ok() {
				return 0
			}
			return -1
		}
		if !that.Ok() {
			return 1
		}
		if r := this.CompareWith(that, considerChildNames); r != 0 {
			return r
		}
		this, that = this.RightSibling(), that.RightSibling()
	}
}

// CompareWithElement orders e against a raw encoded element.
func (e Element) CompareWithElement(raw bsoncore.Element, considerFieldName bool) int {
	e.mustOK()
	return e.compareWithNamedValue([]byte(raw.Key()), raw.Value(), considerFieldName)
}

func (e Element) compareWithNamedValue(name []byte, value bsoncore.Value, considerFieldName bool) int {
	d := e.doc
	if d.hasValue(e.idx) {
		elem := d.serializedElem(e.idx)
		return wire.CompareElements(elem.Name, elem.Value, name, value, considerFieldName)
	}

	// A valueless element is always a container.
	t := d.typeOf(e.idx)
	if diff := wire.CanonicalRank(t) - wire.CanonicalRank(value.Type); diff != 0 {
		return diff
	}
	if considerFieldName {
		if c := strings.Compare(d.fieldName(e.idx), string(name)); c != 0 {
			return c
		}
	}
	considerChildNames := t != bsontype.Array && value.Type != bsontype.Array
	return e.CompareWithDocument(bsoncore.Document(value.Data), considerChildNames)
}

// CompareWithDocument orders the container e against a raw encoded
// document, walking e's children and the document's elements in
// lockstep.
func (e Element) CompareWithDocument(raw bsoncore.Document, considerFieldName bool) int {
	e.mustOK()
	d := e.doc
	if d.isLeaf(e.idx) {
		panic("bsontree: CompareWithDocument on a leaf element")
	}

	this := e.LeftChild()
	off := wire.DocumentHeaderLen
	for {
		elem, more, err := wire.DecodeElement(raw, off)
		if err != nil {
			panic(err)
		}
		if !this.Ok() {
			if !more {
				return 0
			}
			return -1
		}
		if !more {
			return 1
		}
		if r := this.compareWithNamedValue(elem.Name, elem.Value, considerFieldName); r != 0 {
			return r
		}
		this = this.RightSibling()
		off = elem.Offset + elem.Size()
	}
}
