package memeerr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Classify builds the *Error for a failed response. It never returns nil and never
// panics; bodies it cannot interpret produce a generic error carrying the raw text,
// or the HTTP status text when the body is blank.
func Classify(status int, body []byte) *Error {
	e := &Error{
		Status: status,
		Body:   append([]byte(nil), body...),
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil && fields != nil {
		if raw, ok := fields["detail"]; ok {
			if msg, details, ok := parseDetail(raw); ok {
				e.Kind = KindForStatus(status)
				e.Message = msg
				e.Details = details
				return e
			}
		}
		if raw, ok := fields["code"]; ok && !isNull(raw) {
			var code int
			if err := json.Unmarshal(raw, &code); err == nil {
				var message string
				_ = json.Unmarshal(fields["message"], &message)
				e.Code = ErrorCode(code)
				e.Data = fields["data"]
				e.Message = fmt.Sprintf("(%d) [%s] %s", code, e.Code.Label(), message)
				if kind, ok := e.Code.Kind(); ok {
					e.Kind = kind
				} else {
					e.Kind = KindForStatus(status)
				}
				return e
			}
		}
	}

	e.Kind = KindForStatus(status)
	e.Message = string(body)
	if len(bytes.TrimSpace(body)) == 0 {
		e.Message = statusText(status)
	}
	return e
}

// parseDetail accepts either a plain string or a non-empty list of validation
// records. null, an empty list or a list holding anything but objects is rejected.
func parseDetail(raw json.RawMessage) (string, []ValidationDetail, bool) {
	if isNull(raw) {
		return "", nil, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil, true
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return "", nil, false
	}
	details := make([]ValidationDetail, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return "", nil, false
		}
		var d ValidationDetail
		if err := json.Unmarshal(item, &d); err != nil {
			return "", nil, false
		}
		details = append(details, d)
	}
	return FormatDetails(details), details, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// FormatDetails renders validation records one per line, in input order, as
// `<loc.path> [type=<type>, input=<input>]: <msg>`.
func FormatDetails(details []ValidationDetail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, fmt.Sprintf("%s [type=%s, input=%s]: %s",
			formatLoc(d.Loc), d.Type, formatInput(d.Input), d.Msg))
	}
	return strings.Join(lines, "\n")
}

func formatLoc(loc []json.RawMessage) string {
	parts := make([]string, 0, len(loc))
	for _, raw := range loc {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			parts = append(parts, s)
			continue
		}
		parts = append(parts, string(bytes.TrimSpace(raw)))
	}
	return strings.Join(parts, ".")
}

func formatInput(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
