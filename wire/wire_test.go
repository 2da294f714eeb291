package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

func buildDocument(t *testing.T, elems ...[]byte) []byte {
	t.Helper()
	idx, doc := bsoncore.AppendDocumentStart(nil)
	for _, elem := range elems {
		doc = append(doc, elem...)
	}
	doc, err := bsoncore.AppendDocumentEnd(doc, idx)
	require.NoError(t, err)
	return doc
}

func value(t *testing.T, elem []byte) bsoncore.Value {
	t.Helper()
	e, ok, err := DecodeElement(buildDocument(t, elem), DocumentHeaderLen)
	require.NoError(t, err)
	require.True(t, ok)
	return e.Value
}

func TestDecodeElement(t *testing.T) {
	doc := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "ab", 7),
		bsoncore.AppendStringElement(nil, "s", "hello"),
	)

	first, ok, err := DecodeElement(doc, DocumentHeaderLen)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bsontype.Int32, first.Value.Type)
	assert.Equal(t, []byte("ab"), first.Name)
	assert.Equal(t, 3, first.NameSize())
	assert.Equal(t, 8, first.Size()) // type + "ab\x00" + int32
	assert.Equal(t, DocumentHeaderLen+4, first.ValueOffset())

	second, ok, err := DecodeElement(doc, first.Offset+first.Size())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bsontype.String, second.Value.Type)
	assert.Equal(t, "hello", second.Value.StringValue())

	// The next offset addresses the terminator.
	_, ok, err = DecodeElement(doc, second.Offset+second.Size())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeElementErrors(t *testing.T) {
	doc := buildDocument(t, bsoncore.AppendInt32Element(nil, "a", 1))
	_, _, err := DecodeElement(doc, len(doc))
	assert.Error(t, err)
	_, _, err = DecodeElement(doc, -1)
	assert.Error(t, err)
	// A type byte with no name terminator in range.
	_, _, err = DecodeElement([]byte{0x10, 'a', 'b', 'c'}, 0)
	assert.Error(t, err)
}

func TestCanonicalRankOrdering(t *testing.T) {
	ascending := []bsontype.Type{
		bsontype.MinKey,
		bsontype.Undefined,
		bsontype.Null,
		bsontype.Int32,
		bsontype.String,
		bsontype.EmbeddedDocument,
		bsontype.Array,
		bsontype.Binary,
		bsontype.ObjectID,
		bsontype.Boolean,
		bsontype.DateTime,
		bsontype.Timestamp,
		bsontype.Regex,
		bsontype.DBPointer,
		bsontype.JavaScript,
		bsontype.CodeWithScope,
		bsontype.MaxKey,
	}
	for i := 1; i < len(ascending); i++ {
		assert.Less(t, CanonicalRank(ascending[i-1]), CanonicalRank(ascending[i]))
	}
	// Shared ranks.
	assert.Equal(t, CanonicalRank(bsontype.Int32), CanonicalRank(bsontype.Double))
	assert.Equal(t, CanonicalRank(bsontype.Int32), CanonicalRank(bsontype.Int64))
	assert.Equal(t, CanonicalRank(bsontype.String), CanonicalRank(bsontype.Symbol))
	assert.Equal(t, CanonicalRank(TypeEOO), CanonicalRank(bsontype.Undefined))
}

func TestCompareValuesNumbers(t *testing.T) {
	one := value(t, bsoncore.AppendInt32Element(nil, "k", 1))
	oneLong := value(t, bsoncore.AppendInt64Element(nil, "k", 1))
	oneAndAHalf := value(t, bsoncore.AppendDoubleElement(nil, "k", 1.5))
	nan := value(t, bsoncore.AppendDoubleElement(nil, "k", math.NaN()))

	assert.Zero(t, CompareValues(one, oneLong))
	assert.Negative(t, CompareValues(one, oneAndAHalf))
	assert.Positive(t, CompareValues(oneAndAHalf, one))

	// NaN sorts below every number and equal to itself.
	assert.Negative(t, CompareValues(nan, one))
	assert.Positive(t, CompareValues(one, nan))
	assert.Zero(t, CompareValues(nan, nan))

	// Large int64s survive without float truncation.
	big := value(t, bsoncore.AppendInt64Element(nil, "k", math.MaxInt64))
	almost := value(t, bsoncore.AppendInt64Element(nil, "k", math.MaxInt64-1))
	assert.Positive(t, CompareValues(big, almost))
}

func TestCompareValuesStringsAndSymbols(t *testing.T) {
	s := value(t, bsoncore.AppendStringElement(nil, "k", "abc"))
	sym := value(t, bsoncore.AppendSymbolElement(nil, "k", "abc"))
	bigger := value(t, bsoncore.AppendStringElement(nil, "k", "abd"))

	assert.Zero(t, CompareValues(s, sym))
	assert.Negative(t, CompareValues(s, bigger))
	assert.Positive(t, CompareValues(bigger, sym))
}

func TestCompareValuesBinary(t *testing.T) {
	short := value(t, bsoncore.AppendBinaryElement(nil, "k", 0, []byte{9}))
	long := value(t, bsoncore.AppendBinaryElement(nil, "k", 0, []byte{1, 2}))
	sub := value(t, bsoncore.AppendBinaryElement(nil, "k", 2, []byte{9}))

	// Shorter payloads order first regardless of content.
	assert.Negative(t, CompareValues(short, long))
	// Same length: subtype breaks the tie.
	assert.Negative(t, CompareValues(short, sub))
}

func TestCompareValuesTimestamps(t *testing.T) {
	a := value(t, bsoncore.AppendTimestampElement(nil, "k", 1, 9))
	b := value(t, bsoncore.AppendTimestampElement(nil, "k", 2, 0))
	c := value(t, bsoncore.AppendTimestampElement(nil, "k", 2, 1))
	assert.Negative(t, CompareValues(a, b))
	assert.Negative(t, CompareValues(b, c))
	assert.Zero(t, CompareValues(c, c))
}

func TestCompareValuesRegex(t *testing.T) {
	a := value(t, bsoncore.AppendRegexElement(nil, "k", "ab", "i"))
	b := value(t, bsoncore.AppendRegexElement(nil, "k", "ab", "x"))
	c := value(t, bsoncore.AppendRegexElement(nil, "k", "ac", "i"))
	assert.Negative(t, CompareValues(a, b))
	assert.Negative(t, CompareValues(b, c))
}

func TestCompareDocuments(t *testing.T) {
	a := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "x", 1),
		bsoncore.AppendInt32Element(nil, "y", 2),
	)
	same := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "x", 1),
		bsoncore.AppendInt32Element(nil, "y", 2),
	)
	prefix := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "x", 1),
	)
	renamed := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "x", 1),
		bsoncore.AppendInt32Element(nil, "z", 2),
	)

	assert.Zero(t, CompareDocuments(a, same, true))
	assert.Positive(t, CompareDocuments(a, prefix, true))
	assert.Negative(t, CompareDocuments(prefix, a, true))
	assert.Negative(t, CompareDocuments(a, renamed, true))
	assert.Zero(t, CompareDocuments(a, renamed, false))
}

func TestCompareElementsNameOrder(t *testing.T) {
	a, ok, err := DecodeElement(buildDocument(t, bsoncore.AppendInt32Element(nil, "a", 9)), DocumentHeaderLen)
	require.NoError(t, err)
	require.True(t, ok)
	b, ok, err := DecodeElement(buildDocument(t, bsoncore.AppendInt32Element(nil, "b", 1)), DocumentHeaderLen)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Negative(t, CompareElements(a.Name, a.Value, b.Name, b.Value, true))
	assert.Positive(t, CompareElements(a.Name, a.Value, b.Name, b.Value, false))
}

func TestIsContainer(t *testing.T) {
	assert.True(t, IsContainer(bsontype.EmbeddedDocument))
	assert.True(t, IsContainer(bsontype.Array))
	assert.False(t, IsContainer(bsontype.Int32))
	assert.False(t, IsContainer(TypeEOO))
}
