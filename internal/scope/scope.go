// Package scope implements the chain-of-frames lookup structure shared by
// the binder (name -> symbols.Type, at compile time) and the evaluator
// (name -> eval.Value, at runtime). Both consumers walk an identical
// shape, so it is expressed once as a generic type parameterized on the
// thing being bound.
package scope

// Scope is one lexical frame: a flat map of names to bound values of type
// T, plus a pointer to the enclosing frame. A nil Parent marks the global
// frame.
type Scope[T any] struct {
	Parent *Scope[T]
	vars   map[string]T
}

// New creates a fresh frame chained to parent. Pass nil to create the
// global frame.
func New[T any](parent *Scope[T]) *Scope[T] {
	return &Scope[T]{Parent: parent, vars: make(map[string]T)}
}

// Define binds name in this frame specifically, shadowing any binding of
// the same name in an enclosing frame. Re-running Define on an
// already-bound name in the same frame overwrites it (this is how a
// second `x = ...` at the same level changes x's value rather than
// re-declaring it).
func (s *Scope[T]) Define(name string, value T) {
	s.vars[name] = value
}

// Lookup searches this frame and its ancestors for name, innermost first.
func (s *Scope[T]) Lookup(name string) (T, bool) {
	for frame := s; frame != nil; frame = frame.Parent {
		if v, ok := frame.vars[name]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Assign rebinds name in the nearest frame (this one or an ancestor) that
// already defines it, and reports whether such a frame was found. It does
// not create a new binding — callers that want "assign or declare"
// semantics should fall back to Define in this frame when Assign returns
// false.
func (s *Scope[T]) Assign(name string, value T) bool {
	for frame := s; frame != nil; frame = frame.Parent {
		if _, ok := frame.vars[name]; ok {
			frame.vars[name] = value
			return true
		}
	}
	return false
}

// DefinedHere reports whether name is bound directly in this frame,
// without consulting ancestors.
func (s *Scope[T]) DefinedHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Names returns the names bound directly in this frame. The order is
// unspecified; callers that need a stable order should sort it.
func (s *Scope[T]) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	return names
}

// VisibleNames returns every name bound in this frame or any ancestor,
// de-duplicated, in unspecified order. Used for "did you mean" lookups
// over the full chain rather than one frame at a time.
func (s *Scope[T]) VisibleNames() []string {
	seen := make(map[string]struct{})
	for frame := s; frame != nil; frame = frame.Parent {
		for name := range frame.vars {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}
