package index

import (
	"github.com/tidwall/gjson"
)

const (
	packageFieldPathConstant = "pkg"
	nameFieldPathConstant    = "name"
	apkFieldPathConstant     = "apk"
	sourcesFieldPathConstant = "sources"
	versionIDFieldConstant   = "versionId"
)

// Entry is a single package record held as its raw JSON object.
type Entry struct {
	document []byte
}

// NewEntry wraps a raw JSON object. The bytes are copied.
func NewEntry(document []byte) Entry {
	duplicatedDocument := make([]byte, len(document))
	copy(duplicatedDocument, document)
	return Entry{document: duplicatedDocument}
}

// PackageName returns the pkg field or an empty string when absent.
func (entry Entry) PackageName() string {
	return entry.field(packageFieldPathConstant)
}

// DisplayName returns the name field or an empty string when absent.
func (entry Entry) DisplayName() string {
	return entry.field(nameFieldPathConstant)
}

// APKFileName returns the apk field or an empty string when absent.
func (entry Entry) APKFileName() string {
	return entry.field(apkFieldPathConstant)
}

// Raw returns a copy of the underlying JSON object.
func (entry Entry) Raw() []byte {
	duplicatedDocument := make([]byte, len(entry.document))
	copy(duplicatedDocument, entry.document)
	return duplicatedDocument
}

func (entry Entry) field(path string) string {
	result := gjson.GetBytes(entry.document, path)
	if !result.Exists() || result.Type == gjson.Null {
		return ""
	}
	return result.String()
}
