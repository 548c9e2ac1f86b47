package errors

import (
	"fmt"
	"sort"
	"strings"
)

type MissingEnvErr struct {
	EnvMap map[string]string
}

func (e MissingEnvErr) Error() string {
	// Get keys of missing environment variables
	missingKeys := make([]string, 0, len(e.EnvMap))
	for key, val := range e.EnvMap {
		if val == "" {
			missingKeys = append(missingKeys, key)
		}
	}
	sort.Strings(missingKeys)

	if len(missingKeys) > 0 {
		allKeys := strings.Join(missingKeys, ", ")
		return fmt.Sprintf("insufficient env variables: [%s]", allKeys)
	}
	return "insufficient env variables"
}

// InvalidEnvErr reports an env variable that is set but cannot be used.
type InvalidEnvErr struct {
	Key    string
	Value  string
	Reason string
}

func (e InvalidEnvErr) Error() string {
	return fmt.Sprintf("invalid env variable [%s=%q]: %s", e.Key, e.Value, e.Reason)
}
