package wire

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// CompareElements compares two elements in canonical order: type rank
// first, then field name if considerNames is set, then value.
func CompareElements(aName []byte, a bsoncore.Value, bName []byte, b bsoncore.Value, considerNames bool) int {
	if diff := CanonicalRank(a.Type) - CanonicalRank(b.Type); diff != 0 {
		return diff
	}
	if considerNames {
		if c := bytes.Compare(aName, bName); c != 0 {
			return c
		}
	}
	return CompareValues(a, b)
}

// CompareValues compares two values in canonical order, ignoring field
// names.  It defines a total order over well-formed values.
func CompareValues(a, b bsoncore.Value) int {
	ra, rb := CanonicalRank(a.Type), CanonicalRank(b.Type)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case -1, 0, 5, 127:
		// MinKey, Undefined, Null, MaxKey carry no payload.
		return 0
	case 10:
		return compareNumbers(a, b)
	case 15:
		return strings.Compare(stringOrSymbol(a), stringOrSymbol(b))
	case 20, 25:
		return CompareDocuments(a.Data, b.Data, true)
	case 30:
		return compareBinary(a, b)
	case 35:
		aid := mustOK1(a.ObjectIDOK())
		bid := mustOK1(b.ObjectIDOK())
		return bytes.Compare(aid[:], bid[:])
	case 40:
		ab := mustOK1(a.BooleanOK())
		bb := mustOK1(b.BooleanOK())
		return compareBools(ab, bb)
	case 45:
		return compareInt64(mustOK1(a.DateTimeOK()), mustOK1(b.DateTimeOK()))
	case 47:
		at, ai := mustOK2(a.TimestampOK())
		bt, bi := mustOK2(b.TimestampOK())
		if at != bt {
			return compareInt64(int64(at), int64(bt))
		}
		return compareInt64(int64(ai), int64(bi))
	case 50:
		ap, ao := mustOK2(a.RegexOK())
		bp, bo := mustOK2(b.RegexOK())
		if c := strings.Compare(ap, bp); c != 0 {
			return c
		}
		return strings.Compare(ao, bo)
	case 55:
		ans, aid := mustOK2(a.DBPointerOK())
		bns, bid := mustOK2(b.DBPointerOK())
		if c := strings.Compare(ans, bns); c != 0 {
			return c
		}
		return bytes.Compare(aid[:], bid[:])
	case 60:
		return strings.Compare(mustOK1(a.JavaScriptOK()), mustOK1(b.JavaScriptOK()))
	case 65:
		acode, ascope := mustOK2(a.CodeWithScopeOK())
		bcode, bscope := mustOK2(b.CodeWithScopeOK())
		if c := strings.Compare(acode, bcode); c != 0 {
			return c
		}
		return CompareDocuments(ascope, bscope, true)
	default:
		panic(fmt.Sprintf("wire: unhandled canonical rank %d", ra))
	}
}

// CompareDocuments compares two encoded documents element by element in
// lockstep.  The shorter document compares less when a common prefix is
// equal.
func CompareDocuments(a, b []byte, considerNames bool) int {
	aOff, bOff := DocumentHeaderLen, DocumentHeaderLen
	for {
		ae, aMore, err := DecodeElement(a, aOff)
		if err != nil {
			panic(err)
		}
		be, bMore, err := DecodeElement(b, bOff)
		if err != nil {
			panic(err)
		}
		if !aMore {
			if !bMore {
				return 0
			}
			return -1
		}
		if !bMore {
			return 1
		}
		if diff := CompareElements(ae.Name, ae.Value, be.Name, be.Value, considerNames); diff != 0 {
			return diff
		}
		aOff = ae.Offset + ae.Size()
		bOff = be.Offset + be.Size()
	}
}

func stringOrSymbol(v bsoncore.Value) string {
	if v.Type == bsontype.Symbol {
		return mustOK1(v.SymbolOK())
	}
	return mustOK1(v.StringValueOK())
}

func compareBinary(a, b bsoncore.Value) int {
	ast, adata := mustOK2(a.BinaryOK())
	bst, bdata := mustOK2(b.BinaryOK())
	if len(adata) != len(bdata) {
		if len(adata) < len(bdata) {
			return -1
		}
		return 1
	}
	if ast != bst {
		return int(ast) - int(bst)
	}
	return bytes.Compare(adata, bdata)
}

func compareNumbers(a, b bsoncore.Value) int {
	if ai, ok := intValue(a); ok {
		if bi, ok := intValue(b); ok {
			return compareInt64(ai, bi)
		}
	}
	af, aok := floatValue(a)
	bf, bok := floatValue(b)
	if !aok || !bok {
		// Unrepresentable decimal payloads fall back to byte order so
		// the relation stays total.
		return bytes.Compare(a.Data, b.Data)
	}
	return compareDoubles(af, bf)
}

func intValue(v bsoncore.Value) (int64, bool) {
	if i, ok := v.Int32OK(); ok {
		return int64(i), true
	}
	if i, ok := v.Int64OK(); ok {
		return i, true
	}
	return 0, false
}

func floatValue(v bsoncore.Value) (float64, bool) {
	switch v.Type {
	case bsontype.Double:
		return mustOK1(v.DoubleOK()), true
	case bsontype.Int32:
		return float64(mustOK1(v.Int32OK())), true
	case bsontype.Int64:
		return float64(mustOK1(v.Int64OK())), true
	case bsontype.Decimal128:
		d := mustOK1(v.Decimal128OK())
		f, err := strconv.ParseFloat(d.String(), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func compareDoubles(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	case l == r:
		return 0
	}
	// NaN orders below every number and equal to itself.
	if math.IsNaN(l) {
		if math.IsNaN(r) {
			return 0
		}
		return -1
	}
	return 1
}

func compareInt64(l, r int64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func compareBools(l, r bool) int {
	switch {
	case l == r:
		return 0
	case r:
		return -1
	}
	return 1
}

func mustOK1[T any](v T, ok bool) T {
	if !ok {
		panic("wire: value payload does not match its type tag")
	}
	return v
}

func mustOK2[T, U any](v T, u U, ok bool) (T, U) {
	if !ok {
		panic("wire: value payload does not match its type tag")
	}
	return v, u
}
