package bsontree

import (
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// Element is a handle on one node of a Document: the owning Document and
// an index into its record arena.  Handles are cheap values and stay
// valid for the Document's lifetime; they are never invalidated by arena
// growth, edits, or materialization.  Navigation may materialize records
// internally, so even accessor calls mutate the Document.
type Element struct {
	doc *Document
	idx uint32
}

// Ok reports whether the handle addresses an element.  Navigation past
// the end of a sibling list or off the root yields a not-ok handle.
func (e Element) Ok() bool {
	return e.doc != nil && e.idx <= maxIdx
}

// Document returns the Document the handle belongs to.
func (e Element) Document() *Document {
	return e.doc
}

// Const returns a read-only view of the element.
func (e Element) Const() ConstElement {
	return ConstElement{e}
}

// Parent returns the element's parent, or a not-ok handle for the root
// and for detached elements.
func (e Element) Parent() Element {
	e.mustOK()
	parent := e.doc.repAt(e.idx).parent
	if parent == opaqueIdx {
		panic("bsontree: opaque parent")
	}
	return Element{doc: e.doc, idx: parent}
}

// LeftChild returns the element's first child, materializing it from the
// backing bytes if needed, or a not-ok handle if there are no children.
func (e Element) LeftChild() Element {
	e.mustOK()
	return Element{doc: e.doc, idx: e.doc.resolveLeftChild(e.idx)}
}

// RightChild returns the element's last child.  Resolving it may
// materialize every child in between.
func (e Element) RightChild() Element {
	e.mustOK()
	return Element{doc: e.doc, idx: e.doc.resolveRightChild(e.idx)}
}

// HasChildren reports whether the element has at least one child.
func (e Element) HasChildren() bool {
	e.mustOK()
	return e.doc.resolveLeftChild(e.idx) != invalidIdx
}

// LeftSibling returns the element's left neighbor.  A left sibling is
// always already materialized: left-to-right walks resolve it on the way.
func (e Element) LeftSibling() Element {
	e.mustOK()
	left := e.doc.repAt(e.idx).leftSibling
	if left == opaqueIdx {
		panic("bsontree: opaque left sibling")
	}
	return Element{doc: e.doc, idx: left}
}

// RightSibling returns the element's right neighbor, materializing it if
// needed, or a not-ok handle at the end of the child list.
func (e Element) RightSibling() Element {
	e.mustOK()
	return Element{doc: e.doc, idx: e.doc.resolveRightSibling(e.idx)}
}

// FieldName returns the element's field name.  The root's name is empty.
func (e Element) FieldName() string {
	e.mustOK()
	return e.doc.fieldName(e.idx)
}

// Type returns the element's BSON type.  The root is always an object.
func (e Element) Type() bsontype.Type {
	e.mustOK()
	return e.doc.typeOf(e.idx)
}

// HasValue reports whether the element's value is available as a
// contiguous encoded region.  Containers that have been structurally
// edited, and containers created from scratch, have no value.
func (e Element) HasValue() bool {
	e.mustOK()
	return e.doc.hasValue(e.idx)
}

// Value returns the element's encoded value.  ok is false when the
// element has no value region; see HasValue.
func (e Element) Value() (bsoncore.Value, bool) {
	e.mustOK()
	if !e.doc.hasValue(e.idx) {
		return bsoncore.Value{}, false
	}
	return e.doc.serializedElem(e.idx).Value, true
}

// IsNumeric reports whether the element holds a double, int32, or int64.
func (e Element) IsNumeric() bool {
	switch e.Type() {
	case bsontype.Double, bsontype.Int32, bsontype.Int64:
		return true
	}
	return false
}

// IsIntegral reports whether the element holds an int32 or int64.
func (e Element) IsIntegral() bool {
	switch e.Type() {
	case bsontype.Int32, bsontype.Int64:
		return true
	}
	return false
}

// String renders the element as extended JSON.
func (e Element) String() string {
	if !e.Ok() {
		return "<invalid element>"
	}
	if e.idx == rootIdx {
		return e.doc.String()
	}
	if e.doc.hasValue(e.idx) {
		elem := e.doc.serializedElem(e.idx)
		src := e.doc.sources[e.doc.repAt(e.idx).source]
		return bsoncore.Element(src[elem.Offset : elem.Offset+elem.Size()]).String()
	}
	return bsoncore.Element(e.doc.writeElement(nil, e.idx, nil)).String()
}

func (e Element) mustOK() {
	if !e.Ok() {
		panic("bsontree: use of an invalid Element")
	}
}

func (e Element) mustSameDocument(other Element) {
	if e.doc != other.doc {
		panic("bsontree: elements belong to different Documents")
	}
}

// ConstElement is a read-only view of an Element.  It hides the mutating
// surface but, like every handle, may still materialize records while
// navigating.
type ConstElement struct {
	e Element
}

func (c ConstElement) Ok() bool                  { return c.e.Ok() }
func (c ConstElement) Document() *Document       { return c.e.Document() }
func (c ConstElement) Parent() ConstElement      { return c.e.Parent().Const() }
func (c ConstElement) LeftChild() ConstElement   { return c.e.LeftChild().Const() }
func (c ConstElement) RightChild() ConstElement  { return c.e.RightChild().Const() }
func (c ConstElement) LeftSibling() ConstElement { return c.e.LeftSibling().Const() }
func (c ConstElement) RightSibling() ConstElement {
	return c.e.RightSibling().Const()
}
func (c ConstElement) HasChildren() bool             { return c.e.HasChildren() }
func (c ConstElement) FieldName() string             { return c.e.FieldName() }
func (c ConstElement) Type() bsontype.Type           { return c.e.Type() }
func (c ConstElement) HasValue() bool                { return c.e.HasValue() }
func (c ConstElement) Value() (bsoncore.Value, bool) { return c.e.Value() }
func (c ConstElement) IsNumeric() bool               { return c.e.IsNumeric() }
func (c ConstElement) IsIntegral() bool              { return c.e.IsIntegral() }
func (c ConstElement) String() string                { return c.e.String() }

func (c ConstElement) CompareWith(other ConstElement, considerFieldName bool) int {
	return c.e.CompareWith(other.e, considerFieldName)
}

func (c ConstElement) CompareWithElement(raw bsoncore.Element, considerFieldName bool) int {
	return c.e.CompareWithElement(raw, considerFieldName)
}

func (c ConstElement) CompareWithDocument(raw bsoncore.Document, considerFieldName bool) int {
	return c.e.CompareWithDocument(raw, considerFieldName)
}

func (c ConstElement) WriteTo(dst []byte) []byte      { return c.e.WriteTo(dst) }
func (c ConstElement) WriteArrayTo(dst []byte) []byte { return c.e.WriteArrayTo(dst) }
