package index

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	indexMissingMessageConstant           = "index file not found"
	indexMissingTemplateConstant          = "%w: %s"
	indexStatErrorTemplateConstant        = "unable to inspect index %s: %w"
	indexReadErrorTemplateConstant        = "unable to read index %s: %w"
	corruptIndexTemplateConstant          = "corrupt index %s: %s"
	corruptIndexInvalidJSONMessage        = "invalid JSON"
	corruptIndexNotArrayMessage           = "top-level value is not an array"
	corruptIndexElementTemplateConstant   = "element %d is not an object"
	versionIdentifierPathTemplateConstant = "%s.%d.%s"
	minifyErrorTemplateConstant           = "unable to strip %s from entry %q: %w"
)

// ErrIndexMissing indicates the index file does not exist.
var ErrIndexMissing = errors.New(indexMissingMessageConstant)

// CorruptIndexError reports index content that cannot be interpreted as a list of entries.
type CorruptIndexError struct {
	Path   string
	Reason string
}

// Error describes the corruption.
func (corruptIndexError *CorruptIndexError) Error() string {
	return fmt.Sprintf(corruptIndexTemplateConstant, corruptIndexError.Path, corruptIndexError.Reason)
}

// Index is an ordered sequence of package entries.
type Index []Entry

// Load reads and parses the index stored at indexPath.
// A missing file yields ErrIndexMissing and unparseable content yields *CorruptIndexError.
func Load(fileSystem afero.Fs, indexPath string) (Index, error) {
	exists, existsError := afero.Exists(fileSystem, indexPath)
	if existsError != nil {
		return nil, fmt.Errorf(indexStatErrorTemplateConstant, indexPath, existsError)
	}
	if !exists {
		return nil, fmt.Errorf(indexMissingTemplateConstant, ErrIndexMissing, indexPath)
	}

	content, readError := afero.ReadFile(fileSystem, indexPath)
	if readError != nil {
		return nil, fmt.Errorf(indexReadErrorTemplateConstant, indexPath, readError)
	}

	entries, parseError := Parse(content)
	if parseError != nil {
		var corruptIndexError *CorruptIndexError
		if errors.As(parseError, &corruptIndexError) {
			corruptIndexError.Path = indexPath
		}
		return nil, parseError
	}

	return entries, nil
}

// Parse decodes a JSON array of objects into an Index. Objects that repeat a key keep
// only its last value.
func Parse(content []byte) (Index, error) {
	if !gjson.ValidBytes(content) {
		return nil, &CorruptIndexError{Reason: corruptIndexInvalidJSONMessage}
	}

	parsedContent := gjson.ParseBytes(content)
	if !parsedContent.IsArray() {
		return nil, &CorruptIndexError{Reason: corruptIndexNotArrayMessage}
	}

	entries := Index{}
	var elementError error
	elementPosition := 0
	parsedContent.ForEach(func(_ gjson.Result, element gjson.Result) bool {
		if !element.IsObject() {
			elementError = &CorruptIndexError{Reason: fmt.Sprintf(corruptIndexElementTemplateConstant, elementPosition)}
			return false
		}
		entries = append(entries, Entry{document: collapseDuplicateKeys(element)})
		elementPosition++
		return true
	})
	if elementError != nil {
		return nil, elementError
	}

	return entries, nil
}

// Merge drops remote entries claimed by the deletion set, appends every local
// entry unmodified, and sorts the result by package name. Ties keep input order.
func Merge(remote Index, local Index, deletionSet DeletionSet) Index {
	merged := make(Index, 0, len(remote)+len(local))
	for _, entry := range remote {
		if deletionSet.Excludes(entry.PackageName()) {
			continue
		}
		merged = append(merged, entry)
	}
	merged = append(merged, local...)

	sort.SliceStable(merged, func(leftPosition int, rightPosition int) bool {
		return merged[leftPosition].PackageName() < merged[rightPosition].PackageName()
	})

	return merged
}

// Minify returns a copy of entries with versionId removed from every source object.
// The receiver is left untouched.
func Minify(entries Index) (Index, error) {
	minified := make(Index, 0, len(entries))
	for _, entry := range entries {
		strippedDocument, stripError := stripVersionIdentifiers(entry.Raw())
		if stripError != nil {
			return nil, fmt.Errorf(minifyErrorTemplateConstant, versionIDFieldConstant, entry.PackageName(), stripError)
		}
		minified = append(minified, Entry{document: strippedDocument})
	}
	return minified, nil
}

func stripVersionIdentifiers(document []byte) ([]byte, error) {
	sources := gjson.GetBytes(document, sourcesFieldPathConstant)
	if !sources.IsArray() {
		return document, nil
	}

	strippedDocument := document
	for sourcePosition, source := range sources.Array() {
		if !source.IsObject() || !source.Get(versionIDFieldConstant).Exists() {
			continue
		}

		versionIdentifierPath := fmt.Sprintf(versionIdentifierPathTemplateConstant, sourcesFieldPathConstant, sourcePosition, versionIDFieldConstant)
		for gjson.GetBytes(strippedDocument, versionIdentifierPath).Exists() {
			updatedDocument, deleteError := sjson.DeleteBytes(strippedDocument, versionIdentifierPath)
			if deleteError != nil {
				return nil, deleteError
			}
			if bytes.Equal(updatedDocument, strippedDocument) {
				break
			}
			strippedDocument = updatedDocument
		}
	}

	return strippedDocument, nil
}
