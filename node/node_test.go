package node

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/rzap/format"
)

func TestNode_Kinds(t *testing.T) {
	tests := []struct {
		n    Node
		want format.Kind
	}{
		{Nil, format.KindNull},
		{NewLogical(1), format.KindLogical},
		{NewInteger(1), format.KindInteger},
		{NewDouble(1), format.KindDouble},
		{&Complex{}, format.KindComplex},
		{NewString("a"), format.KindString},
		{&Raw{}, format.KindRaw},
		{NewList(), format.KindList},
		{&Expression{}, format.KindExpression},
		{NewPairlist(), format.KindPairlist},
		{&Language{}, format.KindLanguage},
		{Sym("x"), format.KindSymbol},
		{&Closure{}, format.KindClosure},
		{NewEnvironment(nil), format.KindEnv},
		{&Opaque{}, format.KindOpaque},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.n.Kind())
	}
}

func TestNode_AttrsSlots(t *testing.T) {
	require.Nil(t, Nil.Attrs())
	require.Nil(t, (&Opaque{}).Attrs())

	v := NewInteger(1)
	v.Attrs().Class = NewString("x")
	require.Equal(t, []string{"x"}, Classes(v))
}

func TestIsNull(t *testing.T) {
	require.True(t, IsNull(nil))
	require.True(t, IsNull(Nil))
	require.False(t, IsNull(NewList()))
}

func TestSymbol_Missing(t *testing.T) {
	require.True(t, MissingArg().IsMissing())
	require.True(t, IsMissingArg(MissingArg()))
	require.False(t, IsMissingArg(Sym("x")))
	require.False(t, IsMissingArg(NewString("")))
}

func TestString_IsNA(t *testing.T) {
	s := &String{Values: []string{"a", ""}, NA: []bool{false, true}}
	require.False(t, s.IsNA(0))
	require.True(t, s.IsNA(1))
	require.False(t, NewString("a").IsNA(0))
}

func TestAttr_SetAndGet(t *testing.T) {
	v := NewDouble(1, 2)
	require.Nil(t, Attr(v, "names"))

	SetAttr(v, "names", NewString("a", "b"))
	SetAttr(v, "dim", NewInteger(2))
	SetAttr(v, "names", NewString("c", "d"))

	list, ok := v.Attrib.(*Pairlist)
	require.True(t, ok)
	require.Len(t, list.Cells, 2)
	require.Equal(t, NewString("c", "d"), Attr(v, "names"))
	require.Nil(t, v.Class)

	SetAttr(Nil, "names", NewString("ignored"))
}

func TestFactor(t *testing.T) {
	f := NewFactor([]int32{1, 2, NAInteger, 1}, "lo", "hi")

	n, ok := FactorLevels(f)
	require.True(t, ok)
	require.Equal(t, 2, n)
	require.True(t, Inherits(f, "factor"))
	require.Equal(t, NewString("factor"), Attr(f, "class"))

	_, ok = FactorLevels(NewInteger(1, 2))
	require.False(t, ok)

	noLevels := NewInteger(1)
	noLevels.Class = NewString("factor")
	_, ok = FactorLevels(noLevels)
	require.False(t, ok)
}

func TestClasses_SkipsNA(t *testing.T) {
	v := NewInteger()
	v.Class = &String{Values: []string{"a", "", "b"}, NA: []bool{false, true, false}}
	require.Equal(t, []string{"a", "b"}, Classes(v))
}

func TestCell_TagName(t *testing.T) {
	require.Equal(t, "x", Tagged("x", Nil).TagName())
	require.Empty(t, Cell{Value: Nil}.TagName())
}

func TestEnvironment_Bindings(t *testing.T) {
	env := NewEnvironment(GlobalEnv)
	env.Set("b", NewInteger(2))
	env.Set("a", NewInteger(1))
	env.Set("m", MissingArg())

	require.Equal(t, []string{"a", "b", "m"}, env.Names())
	require.Equal(t, 3, env.Len())
	require.True(t, env.IsMissing("m"))
	require.False(t, env.IsMissing("a"))

	v, ok := env.Get("a")
	require.True(t, ok)
	require.Equal(t, NewInteger(1), v)

	_, ok = env.Get("zz")
	require.False(t, ok)

	var zero Environment
	zero.Set("x", Nil)
	require.Equal(t, []string{"x"}, zero.Names())
}

func TestEnvironment_Singleton(t *testing.T) {
	require.True(t, GlobalEnv.Singleton())
	require.True(t, BaseEnv.Singleton())
	require.True(t, EmptyEnv.Singleton())
	require.False(t, NewEnvironment(nil).Singleton())
	require.False(t, NewPackageEnv("stats").Singleton())
	require.Equal(t, EnvNamespace, NewNamespaceEnv("stats", "4.4.0").Type)
}

func TestEnvType_String(t *testing.T) {
	require.Equal(t, "full", EnvFull.String())
	require.Equal(t, "namespace", EnvNamespace.String())
	require.Equal(t, "EnvType(unknown)", EnvType(99).String())
}

func TestIdentity_StableAndUnique(t *testing.T) {
	a, b := NewEnvironment(nil), NewEnvironment(nil)
	require.NotZero(t, a.ID())
	require.Equal(t, a.ID(), a.ID())
	require.NotEqual(t, a.ID(), b.ID())

	l := NewList()
	require.NotEqual(t, a.ID(), l.ID())
}

func TestIdentity_Concurrent(t *testing.T) {
	env := NewEnvironment(nil)
	ids := make([]uint64, 8)

	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = env.ID()
		}()
	}
	wg.Wait()

	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
}
