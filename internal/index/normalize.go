package index

import (
	"bytes"

	"github.com/tidwall/gjson"
)

const (
	objectOpenConstant        = '{'
	objectCloseConstant       = '}'
	keyValueSeparatorConstant = ':'
)

// collapseDuplicateKeys re-renders a JSON value so that every object names each key once.
// A repeated key keeps the position of its first occurrence and the value of its last,
// the way a decoder into a map sees the object. Scalars are copied verbatim.
func collapseDuplicateKeys(value gjson.Result) []byte {
	var documentBuffer bytes.Buffer
	writeCollapsed(&documentBuffer, value)
	return documentBuffer.Bytes()
}

func writeCollapsed(documentBuffer *bytes.Buffer, value gjson.Result) {
	switch {
	case value.IsObject():
		var keyOrder []string
		rawKeys := make(map[string]string)
		memberValues := make(map[string]gjson.Result)
		value.ForEach(func(key gjson.Result, member gjson.Result) bool {
			keyName := key.String()
			if _, seen := memberValues[keyName]; !seen {
				keyOrder = append(keyOrder, keyName)
				rawKeys[keyName] = key.Raw
			}
			memberValues[keyName] = member
			return true
		})

		documentBuffer.WriteByte(objectOpenConstant)
		for memberPosition, keyName := range keyOrder {
			if memberPosition > 0 {
				documentBuffer.WriteByte(arraySeparatorConstant)
			}
			documentBuffer.WriteString(rawKeys[keyName])
			documentBuffer.WriteByte(keyValueSeparatorConstant)
			writeCollapsed(documentBuffer, memberValues[keyName])
		}
		documentBuffer.WriteByte(objectCloseConstant)
	case value.IsArray():
		documentBuffer.WriteByte(arrayOpenConstant)
		for elementPosition, element := range value.Array() {
			if elementPosition > 0 {
				documentBuffer.WriteByte(arraySeparatorConstant)
			}
			writeCollapsed(documentBuffer, element)
		}
		documentBuffer.WriteByte(arrayCloseConstant)
	default:
		documentBuffer.WriteString(value.Raw)
	}
}
