package host

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Fields of the raw init data that carry JSON objects.
var jsonInitFields = map[string]bool{
	"user":     true,
	"receiver": true,
	"chat":     true,
}

// ParseInitData turns the raw mini-app init data query string into the
// object form the backend expects. JSON-valued fields are decoded; everything
// else, including hash and auth_date, stays a string.
func ParseInitData(raw string) (map[string]any, error) {
	out := make(map[string]any)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, fmt.Errorf("parse init data: %w", err)
	}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		val := vals[len(vals)-1]
		if jsonInitFields[key] {
			var obj map[string]any
			if err := json.Unmarshal([]byte(val), &obj); err != nil {
				return nil, fmt.Errorf("parse init data field %q: %w", key, err)
			}
			out[key] = obj
			continue
		}
		out[key] = val
	}
	return out, nil
}
