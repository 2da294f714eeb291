package bsontree

import (
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AddSiblingLeft attaches n immediately to the left of e.  n must root a
// clean detached subtree in the same Document.
func (e Element) AddSiblingLeft(n Element) error {
	e.mustOK()
	n.mustOK()
	e.mustSameDocument(n)
	d := e.doc

	if !d.canAttach(n.idx) {
		return d.attachmentError(n.idx)
	}
	thisRep := d.repAt(e.idx)
	if thisRep.parent == invalidIdx {
		return ErrSiblingOfParentless
	}
	d.disableInPlaceUpdates()

	newRep := d.repAt(n.idx)
	newRep.parent = thisRep.parent
	newRep.rightSibling = e.idx
	newRep.leftSibling = thisRep.leftSibling
	if newRep.leftSibling != invalidIdx {
		d.repAt(thisRep.leftSibling).rightSibling = n.idx
	}
	thisRep.leftSibling = n.idx

	parentRep := d.repAt(thisRep.parent)
	if parentRep.leftChild == e.idx {
		parentRep.leftChild = n.idx
	}
	d.deserialize(thisRep.parent)
	return nil
}

// AddSiblingRight attaches n immediately to the right of e.
func (e Element) AddSiblingRight(n Element) error {
	e.mustOK()
	n.mustOK()
	e.mustSameDocument(n)
	d := e.doc

	if !d.canAttach(n.idx) {
		return d.attachmentError(n.idx)
	}
	if d.repAt(e.idx).parent == invalidIdx {
		return ErrSiblingOfParentless
	}
	d.disableInPlaceUpdates()

	// An opaque right sibling must be resolved now: once e points at n it
	// can no longer be recovered from the backing bytes.  Resolution may
	// grow the arena, so records are looked up only afterwards.
	rightIdx := d.repAt(e.idx).rightSibling
	if rightIdx == opaqueIdx {
		rightIdx = d.resolveRightSibling(e.idx)
	}

	thisRep := d.repAt(e.idx)
	newRep := d.repAt(n.idx)
	newRep.parent = thisRep.parent
	newRep.leftSibling = e.idx
	newRep.rightSibling = rightIdx
	thisRep.rightSibling = n.idx
	if rightIdx != invalidIdx {
		d.repAt(rightIdx).leftSibling = n.idx
	}

	parentRep := d.repAt(thisRep.parent)
	if parentRep.rightChild == e.idx {
		parentRep.rightChild = n.idx
	}
	d.deserialize(thisRep.parent)
	return nil
}

// PushFront attaches n as e's first child.
func (e Element) PushFront(n Element) error {
	return e.addChild(n, true)
}

// PushBack attaches n as e's last child.
func (e Element) PushBack(n Element) error {
	return e.addChild(n, false)
}

func (e Element) addChild(n Element, front bool) error {
	e.mustOK()
	n.mustOK()
	e.mustSameDocument(n)
	d := e.doc

	if !d.canAttach(n.idx) {
		return d.attachmentError(n.idx)
	}
	if d.isLeaf(e.idx) {
		return ErrChildOfLeaf
	}
	d.disableInPlaceUpdates()

	if front {
		if lc := e.LeftChild(); lc.Ok() {
			return lc.AddSiblingLeft(n)
		}
	} else {
		if rc := e.RightChild(); rc.Ok() {
			return rc.AddSiblingRight(n)
		}
	}

	// No children: n becomes both the left and right child.  The resolve
	// calls above may have grown the arena, so records are fetched here.
	thisRep := d.repAt(e.idx)
	newRep := d.repAt(n.idx)
	thisRep.leftChild = n.idx
	thisRep.rightChild = n.idx
	newRep.parent = e.idx
	d.deserialize(e.idx)
	return nil
}

// Remove detaches e from its parent.  The record stays arena-resident
// with parent and siblings cleared, so the element can be re-attached.
func (e Element) Remove() error {
	e.mustOK()
	d := e.doc

	// The right sibling must be realized first: its left-sibling link is
	// about to change.  Doing this before any record lookup keeps the
	// lookups below valid.
	d.resolveRightSibling(e.idx)

	thisRep := d.repAt(e.idx)
	if thisRep.parent == invalidIdx {
		return ErrRemoveParentless
	}
	d.disableInPlaceUpdates()

	if thisRep.rightSibling != invalidIdx {
		d.repAt(thisRep.rightSibling).leftSibling = thisRep.leftSibling
	}
	if thisRep.leftSibling != invalidIdx {
		d.repAt(thisRep.leftSibling).rightSibling = thisRep.rightSibling
	}

	parentRep := d.repAt(thisRep.parent)
	if parentRep.rightChild == e.idx {
		parentRep.rightChild = thisRep.leftSibling
	}
	if parentRep.leftChild == e.idx {
		parentRep.leftChild = thisRep.rightSibling
	}
	d.deserialize(thisRep.parent)

	thisRep.parent = invalidIdx
	thisRep.leftSibling = invalidIdx
	thisRep.rightSibling = invalidIdx
	return nil
}

// Rename changes e's field name.  Renaming the root is illegal.
func (e Element) Rename(name string) error {
	e.mustOK()
	d := e.doc
	if e.idx == rootIdx {
		return ErrRenameRoot
	}
	d.disableInPlaceUpdates()

	rep := d.repAt(e.idx)
	if rep.source != invalidSourceID && !d.isLeaf(e.idx) {
		// A byte-backed container loses its encoded name, so the subtree
		// must become navigable without it: realize the opaque relatives
		// now, then orphan the record from its byte source.
		array := d.typeOf(e.idx) == bsontype.Array
		d.resolveLeftChild(e.idx)
		d.resolveRightSibling(e.idx)
		rep = d.repAt(e.idx)
		d.deserialize(e.idx)
		rep.array = array
		rep.source = invalidSourceID
	}

	if d.hasValue(e.idx) {
		// Byte-backed leaf: rebuild the same value under the new name and
		// splice the replacement into this slot.
		elem := d.serializedElem(e.idx)
		return e.setValueElement(d.MakeElementValue(name, elem.Value), false)
	}
	rep = d.repAt(e.idx)
	rep.offset = d.insertName(name)
	return nil
}

// setValueElement splices the detached element value into e's slot,
// taking over e's topology.  e keeps its index; value's old record is
// cleared.  When inPlace is false the Document stops producing damage.
func (e Element) setValueElement(value Element, inPlace bool) error {
	if e.idx == rootIdx {
		return ErrSetValueRoot
	}
	d := e.doc
	if !inPlace {
		d.disableInPlaceUpdates()
	}

	// Establish the right sibling while the backing bytes can still
	// provide it; the splice below repoints this slot elsewhere.
	d.resolveRightSibling(e.idx)

	thisRep := d.repAt(e.idx)
	valueRep := d.repAt(value.idx)
	if thisRep.parent != invalidIdx {
		valueRep.parent = thisRep.parent
		valueRep.leftSibling = thisRep.leftSibling
		valueRep.rightSibling = thisRep.rightSibling
	}
	*thisRep = *valueRep
	*valueRep = newRep()
	d.deserialize(thisRep.parent)
	return nil
}
