// Package memeapi is a typed client for the meme-generator HTTP service.
//
// Every method maps to one endpoint. Failed responses are returned as *memeerr.Error;
// network failures from the transport are returned unclassified. The client holds no
// mutable state and is safe for concurrent use.
package memeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samvad-hq/memegen-client/pkg/httpclient"
	"github.com/samvad-hq/memegen-client/pkg/memeerr"
)

// Client calls the meme-generator endpoints over an injected transport.
type Client struct {
	transport httpclient.Transport
	log       Logger

	// ImgOps groups the /tools/image_operations endpoints.
	ImgOps *ImageOperations
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and failure events.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// New builds a client over transport.
func New(transport httpclient.Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport must not be nil")
	}
	c := &Client{transport: transport, log: noopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.ImgOps = &ImageOperations{c: c}
	return c, nil
}

// NewWithBaseURL builds a client backed by a resty transport.
func NewWithBaseURL(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	return New(httpclient.NewRestyTransport(httpclient.Options{
		BaseURL: baseURL,
		Timeout: timeout,
	}), opts...)
}

// UploadImage uploads an image described by req and returns its id.
func (c *Client) UploadImage(ctx context.Context, req UploadImageRequest) (ImageID, error) {
	if req == nil {
		return ImageID{}, errors.New("upload image: request must not be nil")
	}
	return doJSON[ImageID](ctx, c, "upload image", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/image/upload",
		Body:   httpclient.JSONBody{Value: req},
	})
}

// UploadImageMultipart uploads r as the `file` part of a multipart form.
func (c *Client) UploadImageMultipart(ctx context.Context, fileName string, r io.Reader) (ImageID, error) {
	if r == nil {
		return ImageID{}, errors.New("upload image multipart: reader must not be nil")
	}
	return doJSON[ImageID](ctx, c, "upload image multipart", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/image/upload",
		Body: httpclient.FormBody{
			Files: []httpclient.FormFile{{Field: "file", FileName: fileName, Reader: r}},
		},
	})
}

// GetImage downloads the raw bytes of an image.
func (c *Client) GetImage(ctx context.Context, imageID string) ([]byte, error) {
	return c.call(ctx, "get image", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/image/" + url.PathEscape(imageID),
		Accept: httpclient.ResponseBytes,
	})
}

// GetVersion returns the service version string.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	body, err := c.call(ctx, "get version", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/meme/version",
		Accept: httpclient.ResponseText,
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetKeys lists every template key.
func (c *Client) GetKeys(ctx context.Context) ([]string, error) {
	return doJSON[[]string](ctx, c, "get keys", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/meme/keys",
	})
}

// GetInfos returns metadata for every template.
func (c *Client) GetInfos(ctx context.Context) ([]MemeInfo, error) {
	return doJSON[[]MemeInfo](ctx, c, "get infos", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/meme/infos",
	})
}

// SearchMemes returns the keys matching query, optionally searching tags too.
func (c *Client) SearchMemes(ctx context.Context, query string, includeTags bool) ([]string, error) {
	return doJSON[[]string](ctx, c, "search memes", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/meme/search",
		Query: map[string]string{
			"query":        query,
			"include_tags": strconv.FormatBool(includeTags),
		},
	})
}

// GetInfo returns the metadata of one template.
func (c *Client) GetInfo(ctx context.Context, key string) (MemeInfo, error) {
	return doJSON[MemeInfo](ctx, c, "get info", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/memes/" + url.PathEscape(key) + "/info",
	})
}

// RenderPreview renders a template with its default inputs.
func (c *Client) RenderPreview(ctx context.Context, key string) (ImageID, error) {
	return doJSON[ImageID](ctx, c, "render preview", &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/memes/" + url.PathEscape(key) + "/preview",
	})
}

// RenderMeme renders a template from uploaded images, texts and options.
func (c *Client) RenderMeme(ctx context.Context, key string, req RenderMemeRequest) (ImageID, error) {
	if req.Images == nil {
		req.Images = []RenderImage{}
	}
	if req.Texts == nil {
		req.Texts = []string{}
	}
	if req.Options == nil {
		req.Options = map[string]any{}
	}
	return doJSON[ImageID](ctx, c, "render meme", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/memes/" + url.PathEscape(key),
		Body:   httpclient.JSONBody{Value: req},
	})
}

// RenderMemeForm renders through the multipart endpoint and returns the image bytes.
func (c *Client) RenderMemeForm(ctx context.Context, key string, req RenderFormRequest) ([]byte, error) {
	form := httpclient.FormBody{}
	for i, img := range req.Images {
		if img.Data == nil {
			return nil, fmt.Errorf("render meme form: image %d has no data", i)
		}
		name := img.FileName
		if name == "" {
			name = fmt.Sprintf("image%d", i)
		}
		form.Files = append(form.Files, httpclient.FormFile{
			Field:       "images",
			FileName:    name,
			ContentType: img.ContentType,
			Reader:      img.Data,
		})
	}
	for _, text := range req.Texts {
		form.Fields = append(form.Fields, httpclient.FormField{Name: "texts", Value: text})
	}
	if len(req.Args) > 0 {
		args, err := json.Marshal(req.Args)
		if err != nil {
			return nil, fmt.Errorf("render meme form: encode args: %w", err)
		}
		form.Fields = append(form.Fields, httpclient.FormField{Name: "args", Value: string(args)})
	}

	return c.call(ctx, "render meme form", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/memes/" + url.PathEscape(key) + "/",
		Body:   form,
		Accept: httpclient.ResponseBytes,
	})
}

// RenderList renders the composite listing of templates. A nil req renders every key.
func (c *Client) RenderList(ctx context.Context, req *RenderMemeListRequest) (ImageID, error) {
	if req == nil {
		req = &RenderMemeListRequest{}
	}
	return doJSON[ImageID](ctx, c, "render list", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/tools/render_list",
		Body:   httpclient.JSONBody{Value: req},
	})
}

// RenderStatistics renders a usage chart.
func (c *Client) RenderStatistics(ctx context.Context, req RenderStatisticsRequest) (ImageID, error) {
	if req.Data == nil {
		req.Data = []StatisticsEntry{}
	}
	return doJSON[ImageID](ctx, c, "render statistics", &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/tools/render_statistics",
		Body:   httpclient.JSONBody{Value: req},
	})
}

// call issues req and classifies status failures.
func (c *Client) call(ctx context.Context, op string, req *httpclient.Request) ([]byte, error) {
	c.log.DebugObj("meme api request", "meme_request", map[string]any{
		"op":     op,
		"method": req.Method,
		"path":   req.Path,
	})

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			merr := memeerr.Classify(statusErr.StatusCode, statusErr.Body)
			c.log.WarnObj("meme api call failed", "meme_error", map[string]any{
				"op":     op,
				"path":   req.Path,
				"status": merr.Status,
				"kind":   merr.Kind.String(),
				"code":   int(merr.Code),
			})
			return nil, fmt.Errorf("%s: %w", op, merr)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return resp.Body(), nil
}

func doJSON[T any](ctx context.Context, c *Client, op string, req *httpclient.Request) (T, error) {
	var out T
	req.Accept = httpclient.ResponseJSON
	body, err := c.call(ctx, op, req)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return out, nil
}
