package codec

import (
	"fmt"
	"strings"

	"github.com/arloliu/rzap/errs"
	"github.com/arloliu/rzap/internal/refcache"
	"github.com/arloliu/rzap/node"
)

// Environment tags, the byte after an environment's kind byte.
const (
	envTagGlobal    byte = 0
	envTagBase      byte = 1
	envTagEmpty     byte = 2
	envTagPackage   byte = 3
	envTagNamespace byte = 4
	envTagRef       byte = 5
	envTagFull      byte = 6
)

// writeEnv writes an environment.
//
// Root environments are a single tag, package and namespace environments
// a tag and their name. Any other environment is written in full the first
// time it is reached and as a reference afterwards. It is registered before
// its parent and bindings are written, so a binding or ancestor that leads
// back to it becomes a reference.
func (w *writer) writeEnv(env *node.Environment) error {
	w.writeByte(byte(env.Kind()))

	switch env.Type {
	case node.EnvGlobal:
		w.writeByte(envTagGlobal)
		return nil
	case node.EnvBase:
		w.writeByte(envTagBase)
		return nil
	case node.EnvEmpty:
		w.writeByte(envTagEmpty)
		return nil
	case node.EnvPackage:
		w.writeByte(envTagPackage)
		return w.writeNode(env.Name)
	case node.EnvNamespace:
		w.writeByte(envTagNamespace)
		return w.writeNode(env.Name)
	case node.EnvFull:
	default:
		return fmt.Errorf("environment type %d: %w", env.Type, errs.ErrInvalidEnvironment)
	}

	key := refcache.IDKey(env.ID())
	if idx := w.envs.Lookup(key[:]); idx >= 0 {
		w.writeByte(envTagRef)
		w.writeLen(idx)

		return nil
	}
	want := w.envs.Len()
	if got := w.envs.Add(key[:]); got != want {
		return fmt.Errorf("environment cache index %d, expected %d: %w", got, want, errs.ErrCacheMismatch)
	}

	w.writeByte(envTagFull)
	if err := w.writeNode(env.Parent); err != nil {
		return err
	}
	names := env.Names()
	if err := w.writeNode(node.NewString(names...)); err != nil {
		return err
	}
	for _, name := range names {
		if err := w.writeNode(env.Vars[name]); err != nil {
			return err
		}
	}

	return nil
}

// readEnv reads an environment. fresh is false for environments that were
// not built by this read: roots, resolved ones and references.
//
// A full environment is registered before its parent is read, matching
// the order in which the writer numbered it.
func (rd *readState) readEnv() (env *node.Environment, fresh bool, err error) {
	tag, err := rd.readByte()
	if err != nil {
		return nil, false, err
	}

	switch tag {
	case envTagGlobal:
		return node.GlobalEnv, false, nil
	case envTagBase:
		return node.BaseEnv, false, nil
	case envTagEmpty:
		return node.EmptyEnv, false, nil
	case envTagPackage:
		env, err = rd.resolveEnv(node.EnvPackage)
		return env, false, err
	case envTagNamespace:
		env, err = rd.resolveEnv(node.EnvNamespace)
		return env, false, err
	case envTagRef:
		idx, err := rd.uvarint()
		if err != nil {
			return nil, false, err
		}
		if idx >= uint64(len(rd.envs)) {
			return nil, false, fmt.Errorf("environment reference %d of %d: %w", idx, len(rd.envs), errs.ErrInvalidReference)
		}

		return rd.envs[idx], false, nil
	case envTagFull:
	default:
		return nil, false, fmt.Errorf("environment tag %d: %w", tag, errs.ErrInvalidEnvironment)
	}

	env = node.NewEnvironment(nil)
	rd.envs = append(rd.envs, env)

	parent, err := rd.readNode()
	if err != nil {
		return nil, false, err
	}
	if !node.IsNull(parent) {
		p, ok := parent.(*node.Environment)
		if !ok {
			return nil, false, fmt.Errorf("environment parent is %s: %w", parent.Kind(), errs.ErrInvalidEnvironment)
		}
		env.Parent = p
	}

	namesNode, err := rd.readNode()
	if err != nil {
		return nil, false, err
	}
	names, ok := namesNode.(*node.String)
	if !ok || names.NA != nil {
		return nil, false, fmt.Errorf("environment binding names are %s: %w", namesNode.Kind(), errs.ErrInvalidEnvironment)
	}
	for _, name := range names.Values {
		v, err := rd.readNode()
		if err != nil {
			return nil, false, err
		}
		env.Vars[name] = v
	}

	return env, true, nil
}

func (rd *readState) resolveEnv(typ node.EnvType) (*node.Environment, error) {
	name, err := rd.readNode()
	if err != nil {
		return nil, err
	}
	env, err := rd.resolve(typ, orNil(name))
	if err != nil {
		return nil, fmt.Errorf("resolve %s environment: %w", typ, err)
	}
	if env == nil {
		return nil, fmt.Errorf("%s environment resolved to nil: %w", typ, errs.ErrNilEnvironment)
	}

	return env, nil
}

// newPlaceholderResolver returns the default EnvResolver: every distinct
// package name or namespace spec resolves to one placeholder environment
// carrying that name, for the lifetime of the resolver.
func newPlaceholderResolver() EnvResolver {
	seen := make(map[string]*node.Environment)

	return func(typ node.EnvType, name node.Node) (*node.Environment, error) {
		key := typ.String() + "\x00" + envNameKey(name)
		if env, ok := seen[key]; ok {
			return env, nil
		}
		env := &node.Environment{Type: typ, Name: name}
		seen[key] = env

		return env, nil
	}
}

func envNameKey(name node.Node) string {
	switch v := name.(type) {
	case *node.String:
		return strings.Join(v.Values, "\x00")
	case *node.Symbol:
		return v.Name
	case nil:
		return ""
	default:
		return fmt.Sprintf("%s:%p", v.Kind(), v)
	}
}
