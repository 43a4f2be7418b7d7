package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyTransport.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// RestyTransport adapts resty.Client to the httpclient.Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a transport rooted at opts.BaseURL.
func NewRestyTransport(opts Options) *RestyTransport {
	c := newRestyBaseClient(opts.Timeout)
	c.SetBaseURL(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	return &RestyTransport{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout. Retries stay
// disabled; a failed call is reported once.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetRetryCount(0)
	return c
}

// Do performs req and returns a *StatusError for any status >= 400.
func (r *RestyTransport) Do(ctx context.Context, req *Request) (Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	rr := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", req.Accept.Accept())
	if len(req.Query) > 0 {
		rr.SetQueryParams(req.Query)
	}
	if err := applyBody(rr, req.Body); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}

	resp, err := rr.Execute(method, req.Path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}
	if resp.IsError() {
		return nil, &StatusError{
			Method:     method,
			Path:       req.Path,
			StatusCode: resp.StatusCode(),
			Body:       resp.Body(),
		}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

func applyBody(rr *resty.Request, body Body) error {
	switch b := body.(type) {
	case nil:
		return nil
	case JSONBody:
		rr.SetHeader("Content-Type", "application/json")
		rr.SetBody(b.Value)
	case BlobBody:
		ct := b.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		rr.SetHeader("Content-Type", ct)
		rr.SetBody(b.Data)
	case FormBody:
		fields := make([]*resty.MultipartField, 0, len(b.Fields)+len(b.Files))
		for _, f := range b.Fields {
			fields = append(fields, &resty.MultipartField{
				Param:  f.Name,
				Reader: strings.NewReader(f.Value),
			})
		}
		for _, f := range b.Files {
			if f.Reader == nil {
				return fmt.Errorf("multipart file %q has no reader", f.Field)
			}
			name := f.FileName
			if name == "" {
				name = f.Field
			}
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			fields = append(fields, &resty.MultipartField{
				Param:       f.Field,
				FileName:    name,
				ContentType: ct,
				Reader:      f.Reader,
			})
		}
		rr.SetMultipartFields(fields...)
	default:
		return fmt.Errorf("unsupported body type %T", body)
	}
	return nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
