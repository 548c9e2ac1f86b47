package command

import "fmt"

const (
	globalScopeName  = "GLOBAL"
	guildScopeFormat = "GUILD(%s)"
)

// Scope is where a command catalog lives. The zero value is the global scope.
type Scope struct {
	GuildID string
}

var Global = Scope{}

func Guild(id string) Scope {
	return Scope{GuildID: id}
}

func (s Scope) IsGlobal() bool {
	return s.GuildID == ""
}

func (s Scope) String() string {
	if s.IsGlobal() {
		return globalScopeName
	}
	return fmt.Sprintf(guildScopeFormat, s.GuildID)
}

// OrderScopes returns the scopes with guilds first, in their given order, and the
// global scope last. Duplicates are dropped.
func OrderScopes(scopes []Scope) []Scope {
	ordered := make([]Scope, 0, len(scopes))
	seen := make(map[Scope]struct{}, len(scopes))
	hasGlobal := false
	for _, scope := range scopes {
		if _, ok := seen[scope]; ok {
			continue
		}
		seen[scope] = struct{}{}

		if scope.IsGlobal() {
			hasGlobal = true
			continue
		}
		ordered = append(ordered, scope)
	}
	if hasGlobal {
		ordered = append(ordered, Global)
	}
	return ordered
}
