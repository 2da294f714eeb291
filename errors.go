package bsontree

import (
	"errors"
	"fmt"
)

// ErrIllegalOperation is the base of every recoverable mutation error.
// Callers can match the family with errors.Is(err, ErrIllegalOperation)
// or a specific kind with the sentinels below.  Invariant violations
// (navigating off a dead handle, mixing handles across Documents) are
// programming errors and panic instead.
var ErrIllegalOperation = errors.New("illegal operation")

var (
	ErrDanglingLeftSibling  = fmt.Errorf("%w: dangling left sibling", ErrIllegalOperation)
	ErrDanglingRightSibling = fmt.Errorf("%w: dangling right sibling", ErrIllegalOperation)
	ErrDanglingParent       = fmt.Errorf("%w: dangling parent", ErrIllegalOperation)
	ErrAttachRoot           = fmt.Errorf("%w: cannot add the root as a child", ErrIllegalOperation)
	ErrSiblingOfParentless  = fmt.Errorf("%w: cannot add a sibling to an element without a parent", ErrIllegalOperation)
	ErrRemoveParentless     = fmt.Errorf("%w: cannot remove an element without a parent", ErrIllegalOperation)
	ErrRenameRoot           = fmt.Errorf("%w: cannot rename the root element", ErrIllegalOperation)
	ErrChildOfLeaf          = fmt.Errorf("%w: cannot add a child to a non-object element", ErrIllegalOperation)
	ErrSetValueRoot         = fmt.Errorf("%w: cannot set a value on the root element", ErrIllegalOperation)
	ErrSetEOO               = fmt.Errorf("%w: cannot set an element to the end-of-object type", ErrIllegalOperation)
)
