package index

import (
	"strings"

	"github.com/tidwall/gjson"
)

const modulePackageSuffixSeparatorConstant = "."

// DeletionSet lists module names whose artifacts and index entries are purged.
type DeletionSet []string

// ParseDeletionSet decodes a JSON array of module names. Anything that is not a
// JSON array yields an empty set; non-string elements are ignored.
func ParseDeletionSet(rawArgument string) DeletionSet {
	trimmedArgument := strings.TrimSpace(rawArgument)
	if len(trimmedArgument) == 0 || !gjson.Valid(trimmedArgument) {
		return DeletionSet{}
	}

	parsedArgument := gjson.Parse(trimmedArgument)
	if !parsedArgument.IsArray() {
		return DeletionSet{}
	}

	modules := DeletionSet{}
	parsedArgument.ForEach(func(_ gjson.Result, element gjson.Result) bool {
		if element.Type == gjson.String {
			modules = append(modules, element.String())
		}
		return true
	})

	return modules
}

// Excludes reports whether packageName ends with ".{module}" for any module in the set.
// An empty package name is never excluded.
func (deletionSet DeletionSet) Excludes(packageName string) bool {
	for _, module := range deletionSet {
		if strings.HasSuffix(packageName, modulePackageSuffixSeparatorConstant+module) {
			return true
		}
	}
	return false
}

// Modules returns a copy of the module names.
func (deletionSet DeletionSet) Modules() []string {
	duplicatedModules := make([]string, len(deletionSet))
	copy(duplicatedModules, deletionSet)
	return duplicatedModules
}
