package plugin

import "cogsync/internal/discord/command"

// Registrar collects the commands a plugin declares during Setup.
type Registrar interface {
	Add(descs ...command.Descriptor) error
}

// Plugin is a feature module (cog) that declares slash commands when loaded.
type Plugin interface {
	Name() string
	Setup(r Registrar) error
}

type Status string

const (
	StatusLoaded Status = "LOADED"
	StatusFailed Status = "FAILED"
)

// Record is the outcome of one load attempt.
type Record struct {
	Name     string
	Status   Status
	Reason   string
	Commands int
}

func (r Record) Loaded() bool {
	return r.Status == StatusLoaded
}

// Registry maps plugin names to constructors. Names keep registration order.
type Registry struct {
	factories map[string]func() Plugin
	names     []string
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]func() Plugin),
	}
}

// Register adds a constructor, replacing any previous one with the same name.
func (r *Registry) Register(name string, factory func() Plugin) {
	if _, ok := r.factories[name]; !ok {
		r.names = append(r.names, name)
	}
	r.factories[name] = factory
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *Registry) lookup(name string) (func() Plugin, bool) {
	factory, ok := r.factories[name]
	return factory, ok
}
