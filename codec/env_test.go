package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/format"
	"github.com/arloliu/rzap/internal/pool"
	"github.com/arloliu/rzap/node"
)

// countEnvTags counts full and reference environments in an encoded body.
func countEnvTags(t *testing.T, n node.Node) (full, refs int) {
	t.Helper()
	var records []Record
	data := encode(t, n, WithObserver(func(r Record) { records = append(records, r) }))
	b := body(data)
	for _, r := range records {
		if r.Kind != format.KindEnv {
			continue
		}
		switch b[r.Start+1] {
		case envTagFull:
			full++
		case envTagRef:
			refs++
		}
	}

	return full, refs
}

func TestEncoder_Env_SelfCycle(t *testing.T) {
	env := node.NewEnvironment(node.GlobalEnv)
	env.Set("self", env)
	env.Set("x", node.NewInteger(1, 2))

	full, refs := countEnvTags(t, env)
	require.Equal(t, 1, full)
	require.Equal(t, 1, refs)

	got := roundTrip(t, env).(*node.Environment)
	require.Equal(t, node.EnvFull, got.Type)
	require.Same(t, node.GlobalEnv, got.Parent)
	self, ok := got.Get("self")
	require.True(t, ok)
	require.Same(t, got, self)
	requireSameTree(t, node.NewInteger(1, 2), got.Vars["x"])
}

func TestEncoder_Env_SharedIsWrittenOnce(t *testing.T) {
	shared := node.NewEnvironment(node.EmptyEnv)
	shared.Set("v", node.NewDouble(1.5))
	tree := node.NewList(
		&node.Closure{Body: node.Sym("a"), Env: shared},
		&node.Closure{Body: node.Sym("b"), Env: shared},
		shared,
	)

	full, refs := countEnvTags(t, tree)
	require.Equal(t, 1, full)
	require.Equal(t, 2, refs)

	bb := pool.GetStreamBuffer()
	defer pool.PutStreamBuffer(bb)
	w := newWriter(mustConfig(t), bb)
	defer w.close()
	require.NoError(t, w.writeNode(tree))
	require.Equal(t, 1, w.envs.Len())

	got := roundTrip(t, tree).(*node.List)
	first := got.Elems[0].(*node.Closure).Env
	require.Same(t, first, got.Elems[1].(*node.Closure).Env)
	require.Same(t, first, got.Elems[2])
	require.Same(t, node.EmptyEnv, first.Parent)
}

func TestEncoder_Env_ParentChainNumbering(t *testing.T) {
	parent := node.NewEnvironment(node.BaseEnv)
	parent.Set("p", node.NewLogical(1))
	child := node.NewEnvironment(parent)
	child.Set("c", node.NewLogical(0))
	// The parent is first written inside the child; the later references
	// must resolve to the same instances.
	tree := node.NewList(child, parent, child)

	got := roundTrip(t, tree).(*node.List)
	gotChild := got.Elems[0].(*node.Environment)
	gotParent := got.Elems[1].(*node.Environment)
	require.Same(t, gotParent, gotChild.Parent)
	require.Same(t, gotChild, got.Elems[2])
	require.Same(t, node.BaseEnv, gotParent.Parent)
	requireSameTree(t, node.NewLogical(1), gotParent.Vars["p"])
	requireSameTree(t, node.NewLogical(0), gotChild.Vars["c"])
}

func TestEncoder_Env_MutualCycle(t *testing.T) {
	a := node.NewEnvironment(nil)
	b := node.NewEnvironment(a)
	a.Set("b", b)
	b.Set("a", a)

	got := roundTrip(t, a).(*node.Environment)
	gotB := got.Vars["b"].(*node.Environment)
	require.Same(t, got, gotB.Parent)
	require.Same(t, got, gotB.Vars["a"])
	require.Nil(t, got.Parent)
}

func TestEncoder_Env_Roots(t *testing.T) {
	for tag, env := range map[byte]*node.Environment{
		envTagGlobal: node.GlobalEnv,
		envTagBase:   node.BaseEnv,
		envTagEmpty:  node.EmptyEnv,
	} {
		data := encode(t, env)
		require.Equal(t, []byte{byte(format.KindEnv), tag, 0, 0}, body(data))
		require.Same(t, env, decode(t, data))
	}
}

func TestEncoder_Env_BindingsAndAttributes(t *testing.T) {
	env := node.NewEnvironment(node.GlobalEnv)
	env.Set("missing", node.MissingArg())
	env.Set("null", node.Nil)
	node.SetAttr(env, "name", node.NewString("scope"))

	got := roundTrip(t, env).(*node.Environment)
	require.True(t, got.IsMissing("missing"))
	require.Equal(t, node.Nil, got.Vars["null"])
	requireSameTree(t, node.NewString("scope"), node.Attr(got, "name"))
}

func TestEncoder_Env_PackageAndNamespace(t *testing.T) {
	stats := node.NewPackageEnv("stats")
	ns := node.NewNamespaceEnv("stats", "4.4.0")
	tree := node.NewList(stats, ns, node.NewPackageEnv("stats"))

	got := roundTrip(t, tree).(*node.List)
	gotStats := got.Elems[0].(*node.Environment)
	require.Equal(t, node.EnvPackage, gotStats.Type)
	requireSameTree(t, node.NewString("stats"), gotStats.Name)
	require.Same(t, gotStats, got.Elems[2])

	gotNS := got.Elems[1].(*node.Environment)
	require.Equal(t, node.EnvNamespace, gotNS.Type)
	requireSameTree(t, node.NewString("stats", "4.4.0"), gotNS.Name)
}

func TestDecoder_Env_CustomResolver(t *testing.T) {
	attached := &node.Environment{Type: node.EnvPackage, Name: node.NewString("utils")}
	resolver := func(typ node.EnvType, name node.Node) (*node.Environment, error) {
		if typ == node.EnvPackage {
			return attached, nil
		}

		return nil, errors.New("no namespaces here")
	}

	data := encode(t, node.NewPackageEnv("utils"))
	got := decode(t, data, WithEnvResolver(resolver))
	require.Same(t, attached, got)

	_, err := decodeErr(encode(t, node.NewNamespaceEnv("utils")), WithEnvResolver(resolver))
	require.ErrorContains(t, err, "no namespaces here")

	nilResolver := func(node.EnvType, node.Node) (*node.Environment, error) { return nil, nil }
	_, err = decodeErr(data, WithEnvResolver(nilResolver))
	require.ErrorIs(t, err, errs.ErrNilEnvironment)
}

func TestDecoder_Env_RejectsCorruption(t *testing.T) {
	tests := []struct {
		name   string
		stream []byte
		err    error
	}{
		{"unknown_tag", streamOf(4, 9), errs.ErrInvalidEnvironment},
		{"dangling_ref", streamOf(4, 5, 0), errs.ErrInvalidReference},
		{"parent_not_env", streamOf(4, 6, 13, 0, 0, 0, 0), errs.ErrInvalidEnvironment},
		{"names_not_string", streamOf(4, 6, 0, 13, 0, 0, 0, 0, 0, 0), errs.ErrInvalidEnvironment},
		{"closure_env_not_env", streamOf(3, 0, 0, 13, 0, 0, 0, 0, 0, 0, 0, 0), errs.ErrInvalidEnvironment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeErr(tt.stream)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEncoder_Env_RejectsUnknownType(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	_, err = enc.Encode(&node.Environment{Type: node.EnvType(42)})
	require.ErrorIs(t, err, errs.ErrInvalidEnvironment)
}
