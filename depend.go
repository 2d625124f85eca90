package lungo

import (
	"errors"
	"fmt"
)

// Provider produces a dependency value for one request. It receives the
// request context, so it can read the request, the response writer, and any
// dependencies it declared through DependsOn, which are guaranteed to be
// resolved before the provider runs.
type Provider func(*Context) (interface{}, error)

// Dependency is the static descriptor of one provider: its name (used in
// diagnostics), the providers it depends on, and whether its value is cached
// for the remainder of the request. Descriptors are built once at
// registration time; nothing is inspected per request.
type Dependency struct {
	name     string
	provider Provider
	uses     []*Dependency
	cache    bool
}

// DependencyOption configures a Dependency at creation time.
type DependencyOption func(*Dependency)

// DependsOn declares the providers this dependency consumes. They are
// resolved, in order, before this dependency's provider is invoked.
func DependsOn(deps ...*Dependency) DependencyOption {
	return func(d *Dependency) { d.uses = append(d.uses, deps...) }
}

// NoCache disables request-scoped caching: the provider is invoked once per
// reference instead of once per request.
func NoCache() DependencyOption {
	return func(d *Dependency) { d.cache = false }
}

// NewDependency builds a dependency descriptor. Caching is enabled by
// default: within one request the provider runs at most once and every
// reference sees the same value.
func NewDependency(name string, provider Provider, opts ...DependencyOption) *Dependency {
	d := &Dependency{name: name, provider: provider, cache: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the provider name used in diagnostics.
func (d *Dependency) Name() string { return d.name }

// Uses adds edges after construction. It exists because mutually referring
// descriptors cannot both be complete at creation time; the resolver detects
// any cycle this creates at request time.
func (d *Dependency) Uses(deps ...*Dependency) {
	d.uses = append(d.uses, deps...)
}

// resolution is the per-request resolver state: which providers are mid
// resolution (for cycle detection) and the path walked so far (for the
// error message). The resolved values themselves live on the Context so
// providers and the handler can read them.
type resolution struct {
	ctx        *Context
	inProgress map[*Dependency]bool
	path       []string
}

// withDependencies wraps a handler so that every declared dependency is
// resolved before the handler runs. It sits innermost in the call chain: a
// middleware that short-circuits prevents resolution entirely.
func withDependencies(next Handler, deps []*Dependency) Handler {
	return func(c *Context) error {
		res := &resolution{ctx: c, inProgress: make(map[*Dependency]bool, len(deps))}
		for _, d := range deps {
			if _, err := res.resolve(d); err != nil {
				return err
			}
		}
		return next(c)
	}
}

func (r *resolution) resolve(d *Dependency) (interface{}, error) {
	if d.cache {
		if v, ok := r.ctx.cachedDependency(d); ok {
			return v, nil
		}
	}

	if r.inProgress[d] {
		return nil, &CircularDependencyError{
			Provider: d.name,
			Path:     append(append([]string{}, r.path...), d.name),
		}
	}
	if d.provider == nil {
		return nil, &DependencyResolutionError{
			Provider: d.name,
			Err:      fmt.Errorf("dependency has no provider"),
		}
	}

	r.inProgress[d] = true
	r.path = append(r.path, d.name)
	defer func() {
		delete(r.inProgress, d)
		r.path = r.path[:len(r.path)-1]
	}()

	for _, sub := range d.uses {
		if _, err := r.resolve(sub); err != nil {
			return nil, err
		}
	}

	value, err := d.provider(r.ctx)
	if err != nil {
		if isDependencyError(err) {
			return nil, err
		}
		return nil, &DependencyResolutionError{Provider: d.name, Err: err}
	}

	r.ctx.storeDependency(d, value, d.cache)
	return value, nil
}

// isDependencyError reports whether err already belongs to the dependency
// error taxonomy, in which case it propagates unwrapped.
func isDependencyError(err error) bool {
	var circular *CircularDependencyError
	var resolution *DependencyResolutionError
	return errors.As(err, &circular) || errors.As(err, &resolution)
}
