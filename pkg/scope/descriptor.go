package scope

// Descriptor declares the services a scope provides. How descriptors are
// authored and merged at the value level is a collaborator concern; the scope
// only requires that a descriptor can build its live instances into a
// Registry. Descriptors are compared by reference: a scope rebuilds when it
// is handed a different Descriptor value, so descriptors should be pointers
// held stable across host re-evaluations.
type Descriptor interface {
	// BuildServices constructs the descriptor's declared instances and
	// registers them, with optional finalizers for resources that need
	// releasing on disposal.
	BuildServices(reg *Registry) error
}

// Registry collects the instances and finalizers built by one descriptor.
type Registry struct {
	order      []any
	instances  map[any]any
	finalizers []func() error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[any]any)}
}

// Register adds an instance under the given service identity. Registering the
// same identity again replaces the instance; the last registration wins.
func (r *Registry) Register(key any, instance any) {
	if _, ok := r.instances[key]; !ok {
		r.order = append(r.order, key)
	}
	r.instances[key] = instance
}

// OnFinalize registers a cleanup function to run when the owning scope is
// disposed. Finalizers run in reverse registration order.
func (r *Registry) OnFinalize(fn func() error) {
	if fn == nil {
		return
	}
	r.finalizers = append(r.finalizers, fn)
}

// Provider builds part of a descriptor's instance set.
type Provider func(reg *Registry) error

type providerDescriptor struct {
	providers []Provider
}

// NewDescriptor combines providers into a Descriptor. The returned value is a
// pointer; hold it stable to keep the scope's instance identities stable.
func NewDescriptor(providers ...Provider) Descriptor {
	return &providerDescriptor{providers: providers}
}

func (d *providerDescriptor) BuildServices(reg *Registry) error {
	for _, provide := range d.providers {
		if err := provide(reg); err != nil {
			return err
		}
	}
	return nil
}

// Supply registers an already-constructed instance for a tag.
func Supply[T any](tag *Tag[T], instance T) Provider {
	return func(reg *Registry) error {
		tag.Register(reg, instance)
		return nil
	}
}

// Provide registers a lazily-built instance for a tag. The build function may
// register finalizers for resources the instance holds.
func Provide[T any](tag *Tag[T], build func(reg *Registry) (T, error)) Provider {
	return func(reg *Registry) error {
		instance, err := build(reg)
		if err != nil {
			return err
		}
		tag.Register(reg, instance)
		return nil
	}
}
