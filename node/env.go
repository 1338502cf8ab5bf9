package node

import (
	"slices"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/arloliu/rzap/format"
)

var lastID atomic.Uint64

// identity gives a node a process-unique ID, assigned on first use. IDs are
// never reused, so two nodes share an ID only if they are the same instance.
type identity struct {
	id atomic.Uint64
}

// ID returns the node's identity.
func (i *identity) ID() uint64 {
	if id := i.id.Load(); id != 0 {
		return id
	}
	i.id.CompareAndSwap(0, lastID.Add(1))

	return i.id.Load()
}

// EnvType tells how an environment is serialized.
type EnvType uint8

const (
	EnvFull      EnvType = iota // EnvFull is serialized with its parent and bindings.
	EnvGlobal                   // EnvGlobal is the global environment.
	EnvBase                     // EnvBase is the base environment.
	EnvEmpty                    // EnvEmpty is the empty environment.
	EnvPackage                  // EnvPackage is an attached package, serialized by name.
	EnvNamespace                // EnvNamespace is a package namespace, serialized by spec.
)

var envTypeNames = map[EnvType]string{
	EnvFull:      "full",
	EnvGlobal:    "global",
	EnvBase:      "base",
	EnvEmpty:     "empty",
	EnvPackage:   "package",
	EnvNamespace: "namespace",
}

func (t EnvType) String() string {
	if name, ok := envTypeNames[t]; ok {
		return name
	}

	return "EnvType(unknown)"
}

// Environment is a mutable set of named bindings with a parent.
//
// Environments are compared by identity. They may form cycles, through their
// parents or their bindings, and are serialized once per call no matter how
// often they are reached.
type Environment struct {
	Attributes
	identity

	Type EnvType
	// Name identifies a package or namespace environment: the package name,
	// or the namespace spec, usually as a *String.
	Name Node
	// Parent is the enclosing environment, or nil. A nil parent is written
	// as Null and read back as nil.
	Parent *Environment
	// Vars holds the bindings. A MissingArg value marks a binding whose
	// value is missing.
	Vars map[string]Node
}

func (*Environment) Kind() format.Kind { return format.KindEnv }

// The well-known root environments.
var (
	GlobalEnv = &Environment{Type: EnvGlobal}
	BaseEnv   = &Environment{Type: EnvBase}
	EmptyEnv  = &Environment{Type: EnvEmpty}
)

// NewEnvironment creates an empty full environment enclosed by parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{Type: EnvFull, Parent: parent, Vars: make(map[string]Node)}
}

// NewPackageEnv creates the attached environment of a package.
func NewPackageEnv(name string) *Environment {
	return &Environment{Type: EnvPackage, Name: NewString(name)}
}

// NewNamespaceEnv creates the namespace environment described by spec,
// usually the package name and version.
func NewNamespaceEnv(spec ...string) *Environment {
	return &Environment{Type: EnvNamespace, Name: NewString(spec...)}
}

// Set binds name to value.
func (e *Environment) Set(name string, value Node) {
	if e.Vars == nil {
		e.Vars = make(map[string]Node)
	}
	e.Vars[name] = value
}

// Get returns the value bound to name in e itself, without searching
// parents.
func (e *Environment) Get(name string) (Node, bool) {
	v, ok := e.Vars[name]
	return v, ok
}

// IsMissing reports whether name is bound to the missing marker.
func (e *Environment) IsMissing(name string) bool {
	v, ok := e.Vars[name]
	return ok && IsMissingArg(v)
}

// Names returns the bound names in sorted order.
func (e *Environment) Names() []string {
	names := lo.Keys(e.Vars)
	slices.Sort(names)

	return names
}

// Len returns the number of bindings.
func (e *Environment) Len() int {
	return len(e.Vars)
}

// Singleton reports whether e is one of the root environments, which are
// never serialized by content.
func (e *Environment) Singleton() bool {
	switch e.Type {
	case EnvGlobal, EnvBase, EnvEmpty:
		return true
	default:
		return false
	}
}
