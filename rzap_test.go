package rzap

import (
	"bytes"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/node"
	"github.com/arloliu/rzap/section"
)

func sampleTree() node.Node {
	scope := node.NewEnvironment(node.GlobalEnv)
	scope.Set("rate", node.NewDouble(0.05))
	model := &node.Closure{
		Formals: node.NewPairlist(node.Tagged("x", node.MissingArg())),
		Body:    &node.Language{Cells: []node.Cell{{Value: node.Sym("*")}, {Value: node.Sym("x")}, {Value: node.Sym("rate")}}},
		Env:     scope,
	}

	frame := node.NewList(
		node.NewInteger(1, 2, 3, node.NAInteger),
		node.NewDouble(10.5, 11.25, 9.75, 12),
		node.NewLogical(1, 0, node.NAInteger, 1),
		&node.String{Values: []string{"a", "b", "", "d"}, NA: []bool{false, false, true, false}},
		node.NewFactor([]int32{1, 2, 2, 1}, "lo", "hi"),
	)
	node.SetAttr(frame, "names", node.NewString("id", "value", "flag", "label", "level"))
	node.SetAttr(frame, "class", node.NewString("data.frame"))

	return node.NewList(frame, model)
}

func requireSameTree(t *testing.T, want, got node.Node) {
	t.Helper()
	cfg := &pretty.Config{Diffable: true}
	if diff := cfg.Compare(want, got); diff != "" {
		t.Fatalf("decoded tree differs (-want +got):\n%s", diff)
	}
}

// TestMarshalUnmarshal verifies a mixed tree survives every compression type
func TestMarshalUnmarshal(t *testing.T) {
	tree := sampleTree()
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := Marshal(tree, WithCompression(ct))
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)
			requireSameTree(t, tree, got)
		})
	}
}

// TestMarshalCompact verifies the compact settings land in the header
func TestMarshalCompact(t *testing.T) {
	tree := sampleTree()
	data, err := MarshalCompact(tree)
	require.NoError(t, err)

	h, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionZstd, h.Flag.Compression())
	require.True(t, h.Flag.HasChecksum())
	require.True(t, h.Flag.HasListRefs())

	got, err := Unmarshal(data)
	require.NoError(t, err)
	requireSameTree(t, tree, got)

	data, err = MarshalCompact(tree, WithCompression(format.CompressionNone))
	require.NoError(t, err)
	h, err = Inspect(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, h.Flag.Compression())
}

// TestSize verifies Size matches the marshaled length
func TestSize(t *testing.T) {
	tree := sampleTree()
	for _, opts := range [][]Option{nil, {WithoutTransforms()}, {WithCompression(format.CompressionS2), WithChecksum(true)}} {
		data, err := Marshal(tree, opts...)
		require.NoError(t, err)
		size, err := Size(tree, opts...)
		require.NoError(t, err)
		require.Equal(t, len(data), size)
	}
}

// TestWrite verifies Write produces the marshaled stream
func TestWrite(t *testing.T) {
	tree := sampleTree()
	var buf bytes.Buffer
	n, err := Write(&buf, tree)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	data, err := Marshal(tree)
	require.NoError(t, err)
	require.Equal(t, data, buf.Bytes())
}

// TestVersion verifies the version written in the header
func TestVersion(t *testing.T) {
	data, err := Marshal(node.Nil)
	require.NoError(t, err)
	require.Equal(t, []byte{section.Magic, byte(Version()), 0, 0, byte(format.KindNull)}, data)
}

// TestInvalidOptions verifies option errors are returned, not panicked
func TestInvalidOptions(t *testing.T) {
	_, err := Marshal(node.Nil, WithMaxDepth(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = Unmarshal(nil, WithMaxLength(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = Size(node.Nil, WithStringThreshold(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
	_, err = Write(&bytes.Buffer{}, node.Nil, WithCompression(9))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

// TestUnmarshal_ErrorKinds verifies corrupt streams are classified as format errors
func TestUnmarshal_ErrorKinds(t *testing.T) {
	_, err := Unmarshal([]byte("not a stream"))
	require.Equal(t, errs.KindFormat, errs.KindOf(err))

	_, err = Unmarshal([]byte{section.Magic, section.Version, 0, 0, 0x1d})
	require.ErrorIs(t, err, errs.ErrUnknownKind)
	require.Equal(t, errs.KindFormat, errs.KindOf(err))

	data, err := Marshal(node.NewInteger(1, 2, 3))
	require.NoError(t, err)
	_, err = Unmarshal(data, WithMaxLength(2))
	require.Equal(t, errs.KindLimit, errs.KindOf(err))
}

func BenchmarkMarshal(b *testing.B) {
	tree := sampleTree()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Marshal(tree); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	data, err := Marshal(sampleTree())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := Unmarshal(data); err != nil {
			b.Fatal(err)
		}
	}
}
