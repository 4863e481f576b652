package index

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/pretty"
)

const (
	fullIndexIndentConstant         = "  "
	arrayOpenConstant               = '['
	arrayCloseConstant              = ']'
	arraySeparatorConstant          = ','
	fullIndexEncodeTemplateConstant = "unable to indent index: %w"
)

// EncodeFull renders entries as a two-space indented JSON array without a trailing newline.
// String contents are copied verbatim, so non-ASCII text stays unescaped.
func EncodeFull(entries Index) ([]byte, error) {
	var indentedBuffer bytes.Buffer
	if indentError := json.Indent(&indentedBuffer, entries.arrayDocument(), "", fullIndexIndentConstant); indentError != nil {
		return nil, fmt.Errorf(fullIndexEncodeTemplateConstant, indentError)
	}
	return indentedBuffer.Bytes(), nil
}

// EncodeMinified renders entries as a JSON array with no insignificant whitespace.
func EncodeMinified(entries Index) []byte {
	return pretty.Ugly(entries.arrayDocument())
}

func (entries Index) arrayDocument() []byte {
	var documentBuffer bytes.Buffer
	documentBuffer.WriteByte(arrayOpenConstant)
	for entryPosition, entry := range entries {
		if entryPosition > 0 {
			documentBuffer.WriteByte(arraySeparatorConstant)
		}
		documentBuffer.Write(entry.document)
	}
	documentBuffer.WriteByte(arrayCloseConstant)
	return documentBuffer.Bytes()
}
