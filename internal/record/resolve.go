package record

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Resolve walks a dot-delimited path ("products.product_id") through nested
// fields and returns the textual form of the value found there.
//
// Resolution never fails: an empty path, a missing key, or a non-mapping
// intermediate value all yield "". A flow definition referencing an absent
// field degrades to blank input instead of failing the record.
func Resolve(fields Fields, path string) string {
	if path == "" {
		return ""
	}

	var cur any = map[string]any(fields)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}

	return Text(cur)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Fields:
		return m, true
	default:
		return nil, false
	}
}

// Text converts a resolved value to the form typed into the target
// application. Strings are NFC-normalized so multi-byte text pastes as
// composed characters; numbers drop their JSON float formatting; nil
// resolves to the empty string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return norm.NFC.String(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return norm.NFC.String(fmt.Sprintf("%v", t))
	}
}
