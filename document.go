// Package bsontree implements a mutable document tree over immutable BSON
// buffers.  A Document wraps an encoded buffer without unpacking it:
// element records are materialized lazily as navigation crosses them, and
// unvisited subtrees never allocate.  Mutations edit topology and append
// new leaf encodings to an internal builder; serialization block-copies
// the regions that still match the input and rebuilds only what changed.
// When a Document is opened with in-place updates enabled, equal-size
// primitive replacements accumulate byte-level damage events instead of
// invalidating the input buffer.
package bsontree

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bsontree/bsontree/wire"
)

// Element indices.  The arena is append-only, so an index stays valid for
// the Document's lifetime.  The two topmost values are reserved: invalidIdx
// marks a missing relative (end of a sibling list, no parent), opaqueIdx a
// relative that exists in the backing bytes but has no record yet.
const (
	rootIdx    = uint32(0)
	maxIdx     = ^uint32(0) - 2
	opaqueIdx  = ^uint32(0) - 1
	invalidIdx = ^uint32(0)
)

// Byte-source ids.  Id 0 always names the leaf builder's buffer; the
// topmost value marks a record with no backing bytes at all.
const (
	leafSourceID    = uint16(0)
	maxSourceID     = ^uint16(0) - 1
	invalidSourceID = ^uint16(0)
)

// elementRep is one arena record.  offset is a byte offset into the
// record's byte source when the record has backing bytes, and into the
// name heap otherwise.
type elementRep struct {
	source     uint16
	serialized bool
	array      bool
	offset     uint32

	leftSibling  uint32
	rightSibling uint32
	leftChild    uint32
	rightChild   uint32
	parent       uint32
}

func newRep() elementRep {
	return elementRep{
		source:       invalidSourceID,
		leftSibling:  invalidIdx,
		rightSibling: invalidIdx,
		leftChild:    invalidIdx,
		rightChild:   invalidIdx,
		parent:       invalidIdx,
	}
}

// InPlaceMode selects, at construction, whether a Document tracks
// byte-level damage for eligible value replacements.
type InPlaceMode int

const (
	InPlaceDisabled InPlaceMode = iota
	InPlaceEnabled
)

// Document is a mutable tree of BSON elements.  It is a single-owner
// structure: no method is safe for concurrent use, and even read-only
// navigation may materialize records internally.
type Document struct {
	// elements is the append-only record arena.  Records are addressed by
	// index; a *elementRep must never be held across a call that can
	// append to the arena.
	elements []elementRep
	// sources holds the immutable byte buffers records point into.
	// sources[0] aliases leaf and is refreshed after every leaf append.
	sources [][]byte
	// names is the heap of \0-terminated field names for records without
	// backing bytes.  Offset 0 holds the empty name.
	names []byte
	// leaf accumulates the encodings produced by the MakeElement*
	// constructors and by in-place replacement sources.
	leaf []byte

	damages DamageVector
	inPlace bool
}

// New returns an empty Document holding a single root object.
func New() *Document {
	d := &Document{
		sources: [][]byte{nil},
		names:   []byte{0},
	}
	root := newRep()
	d.insertElement(root)
	return d
}

// FromBytes returns a Document over the encoded document buf.  The buffer
// is referenced, not copied; it must remain live and unmodified for the
// Document's lifetime.
func FromBytes(buf []byte, mode InPlaceMode) (*Document, error) {
	if err := bsoncore.Document(buf).Validate(); err != nil {
		return nil, fmt.Errorf("bsontree: invalid document: %w", err)
	}
	d := &Document{
		sources: [][]byte{nil},
		names:   []byte{0},
		inPlace: mode == InPlaceEnabled,
	}
	root := newRep()
	root.source = d.insertSource(buf)
	// The root is not really an encoded element, but marking it
	// serialized lets a pristine tree be detected cheaply.
	root.serialized = true
	root.leftChild = opaqueIdx
	root.rightChild = opaqueIdx
	d.insertElement(root)
	return d, nil
}

// Root returns the handle for the root object.
func (d *Document) Root() Element {
	return Element{doc: d, idx: rootIdx}
}

// End returns the canonical not-ok handle for this Document.
func (d *Document) End() Element {
	return Element{doc: d, idx: invalidIdx}
}

// InPlaceMode reports whether the Document is still accumulating damage
// events.
func (d *Document) InPlaceMode() InPlaceMode {
	if d.inPlace {
		return InPlaceEnabled
	}
	return InPlaceDisabled
}

// String renders the current state of the tree as extended JSON.
func (d *Document) String() string {
	return bsoncore.Document(d.Bytes()).String()
}

func (d *Document) repAt(idx uint32) *elementRep {
	if idx > maxIdx || int(idx) >= len(d.elements) {
		panic(fmt.Sprintf("bsontree: element index %d out of range", idx))
	}
	return &d.elements[idx]
}

func (d *Document) insertElement(rep elementRep) uint32 {
	idx := uint32(len(d.elements))
	if idx > maxIdx {
		panic("bsontree: element arena full")
	}
	d.elements = append(d.elements, rep)
	return idx
}

// insertLeafElement records a leaf whose encoding starts at offset in the
// leaf builder, refreshing the registry alias for source 0.
func (d *Document) insertLeafElement(offset int) uint32 {
	rep := newRep()
	rep.source = leafSourceID
	rep.serialized = true
	rep.offset = uint32(offset)
	d.sources[leafSourceID] = d.leaf
	return d.insertElement(rep)
}

func (d *Document) insertSource(buf []byte) uint16 {
	id := uint16(len(d.sources))
	if id > maxSourceID {
		panic("bsontree: byte-source registry full")
	}
	d.sources = append(d.sources, buf)
	return id
}

// insertName appends name to the name heap and returns its offset.  The
// empty name is always at offset 0.
func (d *Document) insertName(name string) uint32 {
	if name == "" {
		return 0
	}
	off := uint32(len(d.names))
	d.names = append(d.names, name...)
	d.names = append(d.names, 0)
	return off
}

func (d *Document) nameAt(off uint32) string {
	end := off
	for d.names[end] != 0 {
		end++
	}
	return string(d.names[off:end])
}

// serializedElem decodes the element record idx points at.  The record
// must have a valid encoding.
func (d *Document) serializedElem(idx uint32) wire.Elem {
	rep := d.repAt(idx)
	elem, ok, err := wire.DecodeElement(d.sources[rep.source], int(rep.offset))
	if err != nil || !ok {
		panic(fmt.Sprintf("bsontree: element %d has no decodable backing bytes: %v", idx, err))
	}
	return elem
}

func (d *Document) fieldName(idx uint32) string {
	if idx == rootIdx {
		return ""
	}
	rep := d.repAt(idx)
	if rep.serialized || rep.source != invalidSourceID {
		return string(d.serializedElem(idx).Name)
	}
	return d.nameAt(rep.offset)
}

func (d *Document) typeOf(idx uint32) bsontype.Type {
	if idx == rootIdx {
		return bsontype.EmbeddedDocument
	}
	rep := d.repAt(idx)
	if rep.serialized || rep.source != invalidSourceID {
		return bsontype.Type(d.sources[rep.source][rep.offset])
	}
	if rep.array {
		return bsontype.Array
	}
	return bsontype.EmbeddedDocument
}

func (d *Document) isLeaf(idx uint32) bool {
	return !wire.IsContainer(d.typeOf(idx))
}

// hasValue reports whether idx's value can be provided as an encoded
// element.  The root may be marked serialized but never has one.
func (d *Document) hasValue(idx uint32) bool {
	return idx != rootIdx && d.repAt(idx).serialized
}

// resolveLeftChild returns the index of idx's left child, materializing
// it from the backing bytes if it is still opaque.
func (d *Document) resolveLeftChild(idx uint32) uint32 {
	mustBeReal(idx)
	rep := d.repAt(idx)
	if rep.leftChild != opaqueIdx {
		return rep.leftChild
	}
	// An opaque child implies an intact encoding to materialize from.
	if !rep.serialized {
		panic("bsontree: opaque child of an unserialized element")
	}
	src := d.sources[rep.source]
	var body int
	if d.hasValue(idx) {
		body = d.serializedElem(idx).ValueOffset() + wire.DocumentHeaderLen
	} else {
		// The root: its byte source is the document body itself.
		body = wire.DocumentHeaderLen
	}
	if src[body] == byte(wire.TypeEOO) {
		rep.leftChild = invalidIdx
		rep.rightChild = invalidIdx
		return invalidIdx
	}
	child := newRep()
	child.serialized = true
	child.source = rep.source
	child.offset = uint32(body)
	child.parent = idx
	child.rightSibling = opaqueIdx
	if wire.IsContainer(bsontype.Type(src[body])) {
		child.leftChild = opaqueIdx
		child.rightChild = opaqueIdx
	}
	// insertElement may grow the arena; rep is dead past this point.
	inserted := d.insertElement(child)
	rep = d.repAt(idx)
	rep.leftChild = inserted
	return inserted
}

// resolveRightSibling returns the index of idx's right sibling,
// materializing it if opaque.  Discovering the end of the sibling list
// proves idx is the last child, so the parent's right child is installed
// as a side effect.
func (d *Document) resolveRightSibling(idx uint32) uint32 {
	mustBeReal(idx)
	rep := d.repAt(idx)
	if rep.rightSibling != opaqueIdx {
		return rep.rightSibling
	}
	elem := d.serializedElem(idx)
	src := d.sources[rep.source]
	next := elem.Offset + elem.Size()
	if src[next] == byte(wire.TypeEOO) {
		rep.rightSibling = invalidIdx
		parent := d.repAt(rep.parent)
		parent.rightChild = idx
		return invalidIdx
	}
	sib := newRep()
	sib.serialized = true
	sib.source = rep.source
	sib.offset = uint32(next)
	sib.parent = rep.parent
	sib.leftSibling = idx
	sib.rightSibling = opaqueIdx
	if wire.IsContainer(bsontype.Type(src[next])) {
		sib.leftChild = opaqueIdx
		sib.rightChild = opaqueIdx
	}
	inserted := d.insertElement(sib)
	rep = d.repAt(idx)
	rep.rightSibling = inserted
	return inserted
}

// resolveRightChild returns the index of idx's right child, walking and
// materializing the whole child list if the slot is still opaque.
func (d *Document) resolveRightChild(idx uint32) uint32 {
	mustBeReal(idx)
	current := d.repAt(idx).rightChild
	if current != opaqueIdx {
		return current
	}
	current = d.resolveLeftChild(idx)
	for current != invalidIdx {
		next := d.resolveRightSibling(current)
		if next == invalidIdx {
			break
		}
		current = next
	}
	return current
}

// deserialize marks idx and its still-serialized ancestors as no longer
// faithfully represented by their backing bytes.
func (d *Document) deserialize(idx uint32) {
	for idx != invalidIdx {
		if d.isLeaf(idx) {
			panic("bsontree: cannot deserialize a leaf element")
		}
		rep := d.repAt(idx)
		if !rep.serialized {
			break
		}
		rep.serialized = false
		idx = rep.parent
	}
}

// canAttach reports whether idx roots a clean detached subtree, which
// keeps attachment from turning the tree into a graph.  The root is
// never attachable.
func (d *Document) canAttach(idx uint32) bool {
	rep := d.repAt(idx)
	return idx != rootIdx &&
		rep.leftSibling == invalidIdx &&
		rep.rightSibling == invalidIdx &&
		rep.parent == invalidIdx
}

func (d *Document) attachmentError(idx uint32) error {
	rep := d.repAt(idx)
	switch {
	case rep.leftSibling != invalidIdx:
		return ErrDanglingLeftSibling
	case rep.rightSibling != invalidIdx:
		return ErrDanglingRightSibling
	case rep.parent != invalidIdx:
		return ErrDanglingParent
	}
	return ErrAttachRoot
}

func mustBeReal(idx uint32) {
	if idx == invalidIdx || idx == opaqueIdx {
		panic("bsontree: navigation from a nonexistent element")
	}
}
