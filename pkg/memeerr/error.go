// Package memeerr turns failed meme-generator responses into typed errors.
//
// A failed call is classified from its HTTP status and body. The service reports
// failures in three shapes depending on its revision: a FastAPI-style
// `{"detail": "..."}` string, a `{"detail": [...]}` list of validation records, or a
// `{"code": n, "message": "...", "data": {...}}` record. Anything else becomes a generic
// error that keeps the raw status and body.
//
// Callers usually check the kind with errors.Is against the package sentinels:
//
//	if errors.Is(err, memeerr.ErrNoSuchMeme) {
//	    // unknown template key
//	}
package memeerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the structured error returned for a failed meme-generator call.
type Error struct {
	Kind    Kind
	Status  int
	Code    ErrorCode
	Message string
	Details []ValidationDetail
	Data    json.RawMessage
	Body    []byte
}

// ValidationDetail is a single field validation failure reported under `detail`.
type ValidationDetail struct {
	Type  string            `json:"type"`
	Loc   []json.RawMessage `json:"loc"`
	Msg   string            `json:"msg"`
	Input json.RawMessage   `json:"input"`
	Ctx   map[string]any    `json:"ctx,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = statusText(e.Status)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, msg)
}

// Is matches any *Error carrying the same non-unknown kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e == nil {
		return false
	}
	return t.Kind != KindUnknown && e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrNoSuchMeme          = &Error{Kind: KindNoSuchMeme}
	ErrTextOverLength      = &Error{Kind: KindTextOverLength}
	ErrOpenImageFailed     = &Error{Kind: KindOpenImageFailed}
	ErrParserExit          = &Error{Kind: KindParserExit}
	ErrParamsMismatch      = &Error{Kind: KindParamsMismatch}
	ErrImageNumberMismatch = &Error{Kind: KindImageNumberMismatch}
	ErrTextNumberMismatch  = &Error{Kind: KindTextNumberMismatch}
	ErrTextOrNameNotEnough = &Error{Kind: KindTextOrNameNotEnough}
	ErrArgMismatch         = &Error{Kind: KindArgMismatch}
	ErrArgParserMismatch   = &Error{Kind: KindArgParserMismatch}
	ErrArgModelMismatch    = &Error{Kind: KindArgModelMismatch}
	ErrGeneratorError      = &Error{Kind: KindGeneratorError}
	ErrImageDecodeError    = &Error{Kind: KindImageDecodeError}
	ErrImageEncodeError    = &Error{Kind: KindImageEncodeError}
	ErrImageAssetMissing   = &Error{Kind: KindImageAssetMissing}
	ErrDeserializeError    = &Error{Kind: KindDeserializeError}
	ErrMemeFeedback        = &Error{Kind: KindMemeFeedback}
)

// KindOf returns the kind of the first *Error in err's chain, KindUnknown otherwise.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind k.
func IsKind(err error, k Kind) bool {
	var me *Error
	return errors.As(err, &me) && me.Kind == k
}

func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("http status %d", status)
}
