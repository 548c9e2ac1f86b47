package command

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

const (
	loggerName = "command-tree"

	frozenErrorFormat = "command tree is frozen: cannot %s [%s] in %s"
)

// FrozenTreeError is returned when the tree is mutated after Freeze.
type FrozenTreeError struct {
	Op    string
	Name  string
	Scope Scope
}

func (e *FrozenTreeError) Error() string {
	return fmt.Sprintf(frozenErrorFormat, e.Op, e.Name, e.Scope)
}

// Collision records a (scope, name) pair registered more than once. The later
// registration replaced the earlier one.
type Collision struct {
	Scope    Scope
	Name     string
	Previous string
	Plugin   string
}

type entry struct {
	desc   Descriptor
	plugin string
}

// Tree is the authoritative catalog of declared commands. It is mutable until
// Freeze is called and read-only afterwards. It is not safe for concurrent use.
type Tree struct {
	logger *zap.Logger

	frozen     bool
	scopes     map[Scope]map[string]entry
	collisions []Collision
}

func NewTree(logger *zap.Logger) *Tree {
	return &Tree{
		logger: logger.Named(loggerName),
		scopes: make(map[Scope]map[string]entry),
	}
}

// Register adds a descriptor on behalf of a plugin. An existing command with the
// same name in the same scope is replaced and the collision is recorded.
func (t *Tree) Register(plugin string, d Descriptor) error {
	if t.frozen {
		t.logger.Error("registration after freeze", zap.String("plugin", plugin), zap.String("cmd", d.Name))
		return &FrozenTreeError{Op: "register", Name: d.Name, Scope: d.Scope}
	}
	if err := d.Validate(); err != nil {
		return err
	}

	cmds, ok := t.scopes[d.Scope]
	if !ok {
		cmds = make(map[string]entry)
		t.scopes[d.Scope] = cmds
	}

	if prev, ok := cmds[d.Name]; ok {
		t.logger.Warn(
			"command registered twice, keeping latest",
			zap.String("cmd", d.Name),
			zap.Stringer("scope", d.Scope),
			zap.String("previous", prev.plugin),
			zap.String("plugin", plugin),
		)
		t.collisions = append(t.collisions, Collision{
			Scope:    d.Scope,
			Name:     d.Name,
			Previous: prev.plugin,
			Plugin:   plugin,
		})
	}
	cmds[d.Name] = entry{desc: d, plugin: plugin}

	return nil
}

// Clear removes every command declared for the scope.
func (t *Tree) Clear(scope Scope) error {
	if t.frozen {
		return &FrozenTreeError{Op: "clear", Name: "*", Scope: scope}
	}
	delete(t.scopes, scope)
	return nil
}

func (t *Tree) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	t.logger.Info("command tree frozen", zap.Int("size", t.Size()))
}

func (t *Tree) Frozen() bool {
	return t.frozen
}

// Commands returns the descriptors declared for exactly this scope, sorted by name.
func (t *Tree) Commands(scope Scope) []Descriptor {
	cmds := t.scopes[scope]
	descs := make([]Descriptor, 0, len(cmds))
	for _, e := range cmds {
		descs = append(descs, e.desc)
	}
	sortDescriptors(descs)
	return descs
}

// Resolve returns the catalog to push for a target scope. A guild receives the
// global commands plus its own, the guild declaration winning on a name clash.
func (t *Tree) Resolve(target Scope) []Descriptor {
	if target.IsGlobal() {
		return t.Commands(Global)
	}

	merged := make(map[string]Descriptor, len(t.scopes[Global])+len(t.scopes[target]))
	for name, e := range t.scopes[Global] {
		merged[name] = e.desc
	}
	for name, e := range t.scopes[target] {
		merged[name] = e.desc
	}

	descs := make([]Descriptor, 0, len(merged))
	for _, d := range merged {
		descs = append(descs, d)
	}
	sortDescriptors(descs)
	return descs
}

// Scopes lists every scope with at least one declared command, guilds first.
func (t *Tree) Scopes() []Scope {
	scopes := make([]Scope, 0, len(t.scopes))
	for scope, cmds := range t.scopes {
		if len(cmds) > 0 {
			scopes = append(scopes, scope)
		}
	}
	sort.Slice(scopes, func(i, j int) bool {
		return scopes[i].GuildID < scopes[j].GuildID
	})
	return OrderScopes(scopes)
}

// Owner returns the plugin that contributed the command.
func (t *Tree) Owner(scope Scope, name string) (string, bool) {
	e, ok := t.scopes[scope][name]
	return e.plugin, ok
}

func (t *Tree) Size() int {
	size := 0
	for _, cmds := range t.scopes {
		size += len(cmds)
	}
	return size
}

func (t *Tree) Collisions() []Collision {
	collisions := make([]Collision, len(t.collisions))
	copy(collisions, t.collisions)
	return collisions
}

func sortDescriptors(descs []Descriptor) {
	sort.Slice(descs, func(i, j int) bool {
		return descs[i].Name < descs[j].Name
	})
}
