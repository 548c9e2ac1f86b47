package plugin

import (
	"fmt"

	"cogsync/internal/discord/command"
)

// Ensure MockPlugin implements Plugin
var _ Plugin = (*MockPlugin)(nil)

// MockPlugin declares fixed commands, or fails the way it is told to.
type MockPlugin struct {
	PluginName string
	Descs      []command.Descriptor
	SetupErr   error
	Panic      bool

	// Registrar handed to Setup, kept to simulate a plugin holding on to it
	Registrar Registrar
}

func (m *MockPlugin) Name() string {
	return m.PluginName
}

func (m *MockPlugin) Setup(r Registrar) error {
	m.Registrar = r
	if m.Panic {
		panic("mock plugin panic")
	}
	if m.SetupErr != nil {
		return m.SetupErr
	}
	return r.Add(m.Descs...)
}

// MockCommands builds n valid descriptors named <prefix>-1 ... <prefix>-n.
func MockCommands(prefix string, n int, scope command.Scope) []command.Descriptor {
	descs := make([]command.Descriptor, n)
	for i := range descs {
		descs[i] = command.Descriptor{
			Name:        fmt.Sprintf("%s-%d", prefix, i+1),
			Description: fmt.Sprintf("Mock command %d from %s", i+1, prefix),
			Scope:       scope,
		}
	}
	return descs
}

// NewMockRegistry registers every mock plugin under its own name.
func NewMockRegistry(plugins ...*MockPlugin) *Registry {
	registry := NewRegistry()
	for _, p := range plugins {
		p := p
		registry.Register(p.PluginName, func() Plugin { return p })
	}
	return registry
}
