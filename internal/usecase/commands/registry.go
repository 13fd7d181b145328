package commands

import (
	"errors"
	"fmt"
	"strings"
)

// Registry is the alias table built once at startup. It is never mutated
// afterwards, so any number of ingestion goroutines may read it concurrently.
type Registry struct {
	byAlias map[string]int
	byKind  map[Kind]int
	descs   []Descriptor
}

// NewRegistry registers descs in order. Alias collisions fail the build
// instead of replacing the earlier descriptor.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		byAlias: make(map[string]int),
		byKind:  make(map[Kind]int),
		descs:   make([]Descriptor, 0, len(descs)),
	}
	for _, d := range descs {
		if err := r.register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// BuiltinRegistry builds the registry for BuiltinCatalog.
func BuiltinRegistry() (*Registry, error) {
	return NewRegistry(BuiltinCatalog()...)
}

// MustBuiltinRegistry is BuiltinRegistry for program initialization.
func MustBuiltinRegistry() *Registry {
	r, err := BuiltinRegistry()
	if err != nil {
		panic(fmt.Sprintf("commands: builtin registry: %v", err))
	}
	return r
}

func (r *Registry) register(d Descriptor) error {
	name := normalizeCommandName(d.Name)
	if name == "" {
		return errors.New("commands: descriptor without name")
	}
	if d.Grammar == nil {
		return fmt.Errorf("commands: %s: nil grammar", name)
	}
	if len(d.Aliases) == 0 {
		return fmt.Errorf("commands: %s: no aliases", name)
	}
	if _, dup := r.byKind[d.Kind]; dup {
		return fmt.Errorf("commands: %s: kind %s already registered", name, d.Kind)
	}

	aliases := make([]string, 0, len(d.Aliases))
	seen := make(map[string]struct{}, len(d.Aliases))
	for _, alias := range d.Aliases {
		key := normalizeCommandName(alias)
		if key == "" {
			return fmt.Errorf("commands: %s: empty alias", name)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		if idx, taken := r.byAlias[key]; taken {
			return &AliasCollisionError{Alias: key, Existing: r.descs[idx].Name, Incoming: name}
		}
		seen[key] = struct{}{}
		aliases = append(aliases, key)
	}

	d.Name = name
	d.Aliases = aliases
	idx := len(r.descs)
	r.descs = append(r.descs, d)
	r.byKind[d.Kind] = idx
	for _, alias := range aliases {
		r.byAlias[alias] = idx
	}
	return nil
}

// Lookup resolves an alias, case-insensitively.
func (r *Registry) Lookup(alias string) (Descriptor, bool) {
	idx, ok := r.byAlias[normalizeCommandName(alias)]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[idx], true
}

func (r *Registry) Descriptor(kind Kind) (Descriptor, bool) {
	idx, ok := r.byKind[kind]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[idx], true
}

// Descriptors returns a copy of the descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.descs))
	for i, d := range r.descs {
		d.Aliases = append([]string(nil), d.Aliases...)
		out[i] = d
	}
	return out
}

func normalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
