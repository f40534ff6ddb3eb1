package scope

import (
	"fmt"

	"github.com/load28/effect-react/pkg/errors"
)

// Tag is a typed service identity. Two tags are the same identity only when
// they are the same *Tag pointer; the name is diagnostic.
type Tag[T any] struct {
	name string
}

// NewTag creates a service tag. Create tags once, at package level, and share
// the pointer: identity is the pointer, not the name.
func NewTag[T any](name string) *Tag[T] {
	return &Tag[T]{name: name}
}

// Name returns the diagnostic name of the tag.
func (t *Tag[T]) Name() string { return t.name }

func (t *Tag[T]) String() string {
	return fmt.Sprintf("Tag(%s)", t.name)
}

// Register adds an instance for this tag to the registry.
func (t *Tag[T]) Register(reg *Registry, instance T) {
	reg.Register(t, instance)
}

// Resolve looks the tag up in an injector and returns the typed instance.
// A missing identity or a mismatched instance type returns an error wrapping
// *errors.MissingServiceError; it never panics.
func (t *Tag[T]) Resolve(in *Injector) (T, error) {
	var zero T
	v, err := in.Resolve(t)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s holds %T, not the declared type: %w",
			t, v, &errors.MissingServiceError{Key: t})
	}
	return typed, nil
}
