package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

// Message is the text worth showing to a user.
func (e *StatusError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

func newStatusError(method, path string, status int, body []byte) *StatusError {
	text := strings.TrimSpace(string(body))
	if len(text) > 512 {
		text = text[:512]
	}
	return &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Detail:     detailMessage(body),
		Body:       text,
	}
}

// detailMessage extracts the "detail" field of an error response. Validation
// failures carry a list of objects with a "msg" field instead of a string.
func detailMessage(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
