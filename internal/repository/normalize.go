package repository

import "strings"

// normalizeCompleted turns whatever a store returned for the completed column
// into a real bool. Some stores keep booleans as 0/1 integers or as text.
func normalizeCompleted(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int:
		return b != 0
	case int8:
		return b != 0
	case int16:
		return b != 0
	case int32:
		return b != 0
	case int64:
		return b != 0
	case uint8:
		return b != 0
	case float64:
		return b != 0
	case string:
		return parseBoolText(b)
	case []byte:
		return parseBoolText(string(b))
	default:
		return false
	}
}

func parseBoolText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
