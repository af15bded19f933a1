package models

// RefID extracts an id from a decoded relation value. The hosted backend
// returns relations as a bare id, as the embedded related document (a map
// carrying "$id" or "id"), or as a list of either; lists yield their first
// element.
func RefID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		if id, ok := t["$id"].(string); ok {
			return id
		}
		if id, ok := t["id"].(string); ok {
			return id
		}
	case []any:
		if len(t) > 0 {
			return RefID(t[0])
		}
	}
	return ""
}
