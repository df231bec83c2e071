package plugin

import "fmt"

// Catalog maps plugin names to factories. The invoker consults catalogs in
// sequence, so built-in plugins and user-supplied overrides live in separate
// catalogs with the same structure.
type Catalog struct {
	name      string
	factories map[string]Factory
	order     []string
}

// NewCatalog creates an empty catalog. The name only appears in diagnostics.
func NewCatalog(name string) *Catalog {
	return &Catalog{
		name:      name,
		factories: make(map[string]Factory),
	}
}

// Name returns the catalog's diagnostic label.
func (c *Catalog) Name() string {
	return c.name
}

// Register binds a plugin name to its factory. Registering a name twice in
// the same catalog is an error.
func (c *Catalog) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("catalog %s: plugin name cannot be empty", c.name)
	}
	if factory == nil {
		return fmt.Errorf("catalog %s: plugin %q has a nil factory", c.name, name)
	}
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("catalog %s: plugin %q already registered", c.name, name)
	}
	c.factories[name] = factory
	c.order = append(c.order, name)
	return nil
}

// MustRegister is Register for wiring done at startup, where a duplicate is
// a programming error.
func (c *Catalog) MustRegister(name string, factory Factory) {
	if err := c.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (c *Catalog) Lookup(name string) (Factory, bool) {
	factory, ok := c.factories[name]
	return factory, ok
}

// Names returns the registered plugin names in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of registered plugins.
func (c *Catalog) Len() int {
	return len(c.order)
}
