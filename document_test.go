package bsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"

	"github.com/bsontree/bsontree/wire"
)

// decodeFirst decodes the first element of an encoded document.
func decodeFirst(doc []byte) (wire.Elem, bool, error) {
	return wire.DecodeElement(doc, wire.DocumentHeaderLen)
}

// buildDocument encodes a document from pre-encoded elements.
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

// xsYsDoc is the worked example used across the lazy-materialization
// tests: {"xs":{"x":"x","X":"X"},"ys":{"y":"y"}}.
func xsYsDoc(t *testing.T) []byte {
	t.Helper()
	xs := buildDocument(t,
		bsoncore.AppendStringElement(nil, "x", "x"),
		bsoncore.AppendStringElement(nil, "X", "X"),
	)
	ys := buildDocument(t,
		bsoncore.AppendStringElement(nil, "y", "y"),
	)
	return buildDocument(t,
		bsoncore.AppendDocumentElement(nil, "xs", xs),
		bsoncore.AppendDocumentElement(nil, "ys", ys),
	)
}

func TestNewDocument(t *testing.T) {
	d := New()
	root := d.Root()
	assert.True(t, root.Ok())
	assert.Equal(t, bsontype.EmbeddedDocument, root.Type())
	assert.Equal(t, "", root.FieldName())
	assert.False(t, root.HasValue())
	assert.False(t, root.HasChildren())
	assert.False(t, root.Parent().Ok())
	assert.Exactly(t, buildDocument(t), d.Bytes())
}

func TestFromBytesRejectsMalformed(t *testing.T) {
	_, err := FromBytes([]byte{0x01, 0x02, 0x03}, InPlaceDisabled)
	require.Error(t, err)
	_, err = FromBytes(nil, InPlaceDisabled)
	require.Error(t, err)
}

func TestFromBytesPristineRoundTrip(t *testing.T) {
	in := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "a", 1),
		bsoncore.AppendStringElement(nil, "b", "two"),
		bsoncore.AppendDocumentElement(nil, "c", buildDocument(t,
			bsoncore.AppendBooleanElement(nil, "d", true),
		)),
	)
	d, err := FromBytes(in, InPlaceDisabled)
	require.NoError(t, err)
	assert.Exactly(t, in, d.Bytes())

	// Full navigation materializes every record but must not perturb the
	// output.
	for e := d.Root().LeftChild(); e.Ok(); e = e.RightSibling() {
		if e.HasChildren() {
			e.LeftChild()
		}
	}
	assert.Exactly(t, in, d.Bytes())
}

func TestLazyMaterializationAllocatesOnDemand(t *testing.T) {
	d, err := FromBytes(xsYsDoc(t), InPlaceDisabled)
	require.NoError(t, err)
	require.Len(t, d.elements, 1)

	xs := d.Root().LeftChild()
	require.True(t, xs.Ok())
	assert.Equal(t, "xs", xs.FieldName())

	// Exactly the root and xs exist; xs's children and root's right
	// child are still opaque.
	require.Len(t, d.elements, 2)
	assert.Equal(t, opaqueIdx, d.elements[xs.idx].leftChild)
	assert.Equal(t, opaqueIdx, d.elements[xs.idx].rightChild)
	assert.Equal(t, opaqueIdx, d.elements[xs.idx].rightSibling)
	assert.Equal(t, opaqueIdx, d.elements[rootIdx].rightChild)
}

func TestEndOfListInstallsRightChild(t *testing.T) {
	d, err := FromBytes(xsYsDoc(t), InPlaceDisabled)
	require.NoError(t, err)

	xs := d.Root().LeftChild()
	ys := xs.RightSibling()
	require.True(t, ys.Ok())
	assert.Equal(t, "ys", ys.FieldName())

	end := ys.RightSibling()
	assert.False(t, end.Ok())
	assert.Equal(t, ys.idx, d.elements[rootIdx].rightChild)

	// The walk also backfills ys's left sibling.
	assert.Equal(t, xs.idx, d.elements[ys.idx].leftSibling)
}

func TestNameHeap(t *testing.T) {
	d := New()
	assert.Equal(t, uint32(0), d.insertName(""))
	why := d.insertName("why")
	assert.Equal(t, "why", d.nameAt(why))
	not := d.insertName("not")
	assert.Equal(t, "not", d.nameAt(not))
	assert.Equal(t, "why", d.nameAt(why))
	assert.Equal(t, "", d.nameAt(0))

	obj := d.MakeElementObject("pun")
	assert.Equal(t, "pun", obj.FieldName())
	arr := d.MakeElementArray("list")
	assert.Equal(t, "list", arr.FieldName())
	assert.Equal(t, bsontype.Array, arr.Type())
}

func TestLeafBuilderRegistryRefresh(t *testing.T) {
	d := New()
	// Each append may reallocate the leaf buffer; the registry alias for
	// source 0 must track it so earlier handles keep resolving.
	first := d.MakeElementString("s", "payload-long-enough-to-force-growth")
	for i := 0; i < 64; i++ {
		d.MakeElementInt64("n", int64(i))
	}
	assert.Equal(t, "s", first.FieldName())
	v, ok := first.Value()
	require.True(t, ok)
	assert.Equal(t, "payload-long-enough-to-force-growth", v.StringValue())
}

func TestHandleStabilityAcrossArenaGrowth(t *testing.T) {
	in := buildDocument(t,
		bsoncore.AppendInt32Element(nil, "a", 1),
		bsoncore.AppendInt32Element(nil, "b", 2),
	)
	d, err := FromBytes(in, InPlaceDisabled)
	require.NoError(t, err)

	b := d.Root().LeftChild().RightSibling()
	require.Equal(t, "b", b.FieldName())

	for i := 0; i < 100; i++ {
		require.NoError(t, d.Root().PushBack(d.MakeElementInt32("extra", int32(i))))
	}
	assert.True(t, b.Ok())
	assert.Equal(t, "b", b.FieldName())
	v, ok := b.Value()
	require.True(t, ok)
	assert.Equal(t, int32(2), v.Int32())
}

func TestDocumentString(t *testing.T) {
	in := buildDocument(t, bsoncore.AppendInt32Element(nil, "a", 1))
	d, err := FromBytes(in, InPlaceDisabled)
	require.NoError(t, err)
	assert.Equal(t, bsoncore.Document(in).String(), d.String())
}
