// Package pathutils resolves user-supplied repository roots.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant = "~"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// EnvironmentLookup resolves an environment variable by name.
type EnvironmentLookup func(name string) (string, bool)

// HomeExpander converts home shortcuts and environment references in configured paths.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	environmentLookup     EnvironmentLookup
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander backed by the process environment.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProviders(os.UserHomeDir, os.LookupEnv)
}

// NewHomeExpanderWithProviders constructs a HomeExpander with custom lookups; nil selects the process default.
func NewHomeExpanderWithProviders(homeProvider HomeDirectoryProvider, environmentLookup EnvironmentLookup) *HomeExpander {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &HomeExpander{homeDirectoryProvider: homeProvider, environmentLookup: environmentLookup}
}

// Expand substitutes $NAME and ${NAME} references, then resolves a leading "~" or "~/" to the
// home directory. Unset variables expand to the empty string. "~user" forms are left untouched.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || len(candidatePath) == 0 {
		return candidatePath
	}

	expandedPath := os.Expand(candidatePath, func(name string) string {
		value, _ := expander.environmentLookup(name)
		return value
	})

	if !strings.HasPrefix(expandedPath, tildeSymbolConstant) {
		return expandedPath
	}

	remainder := strings.TrimPrefix(expandedPath, tildeSymbolConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return expandedPath
	}

	resolvedHomeDirectory := expander.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return expandedPath
	}

	return filepath.Join(resolvedHomeDirectory, remainder)
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil {
		return ""
	}
	return expander.homeDirectory
}
