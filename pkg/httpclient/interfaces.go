package httpclient

import (
	"context"
	"fmt"
	"io"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Transport abstracts HTTP calls so callers can inject mocks or different transports.
type Transport interface {
	Do(ctx context.Context, req *Request) (Response, error)
}

// ResponseType declares how the caller will decode a successful body.
type ResponseType int

const (
	ResponseJSON ResponseType = iota
	ResponseText
	ResponseBytes
)

// Accept returns the Accept header value matching t.
func (t ResponseType) Accept() string {
	switch t {
	case ResponseText:
		return "text/plain"
	case ResponseBytes:
		return "*/*"
	default:
		return "application/json"
	}
}

// Request describes one call relative to the transport's base URL.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   Body
	Accept ResponseType
}

// Body is the request payload. The set of implementations is closed.
type Body interface {
	isBody()
}

// JSONBody encodes Value as application/json.
type JSONBody struct {
	Value any
}

// BlobBody sends Data verbatim.
type BlobBody struct {
	Data        []byte
	ContentType string
}

// FormBody sends a multipart/form-data payload. Fields with the same name are repeated
// in order.
type FormBody struct {
	Fields []FormField
	Files  []FormFile
}

// FormField is a plain multipart field.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a multipart file part.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

func (JSONBody) isBody() {}
func (BlobBody) isBody() {}
func (FormBody) isBody() {}

// StatusError is returned by transports when the server answers with status >= 400.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.Path, e.StatusCode, readBodySnippet(e.Body))
}
