package memeapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/samvad-hq/memegen-client/pkg/httpclient"
)

const imageOperationsPath = "/tools/image_operations/"

// ImageOperations wraps the image transform endpoints.
type ImageOperations struct {
	c *Client
}

type imagePayload struct {
	ImageID string `json:"image_id"`
}

type imagesPayload struct {
	ImageIDs []string `json:"image_ids"`
}

// Inspect reports the size and frame information of an image.
func (o *ImageOperations) Inspect(ctx context.Context, imageID string) (InspectResponse, error) {
	return doJSON[InspectResponse](ctx, o.c, "inspect", o.request("inspect", imagePayload{ImageID: imageID}))
}

func (o *ImageOperations) FlipHorizontal(ctx context.Context, imageID string) (ImageID, error) {
	return o.single(ctx, "flip_horizontal", imagePayload{ImageID: imageID})
}

func (o *ImageOperations) FlipVertical(ctx context.Context, imageID string) (ImageID, error) {
	return o.single(ctx, "flip_vertical", imagePayload{ImageID: imageID})
}

func (o *ImageOperations) Rotate(ctx context.Context, imageID string, opts RotateOptions) (ImageID, error) {
	return o.single(ctx, "rotate", struct {
		imagePayload
		RotateOptions
	}{imagePayload{ImageID: imageID}, opts})
}

func (o *ImageOperations) Resize(ctx context.Context, imageID string, opts ResizeOptions) (ImageID, error) {
	return o.single(ctx, "resize", struct {
		imagePayload
		ResizeOptions
	}{imagePayload{ImageID: imageID}, opts})
}

func (o *ImageOperations) Crop(ctx context.Context, imageID string, opts CropOptions) (ImageID, error) {
	return o.single(ctx, "crop", struct {
		imagePayload
		CropOptions
	}{imagePayload{ImageID: imageID}, opts})
}

func (o *ImageOperations) Grayscale(ctx context.Context, imageID string) (ImageID, error) {
	return o.single(ctx, "grayscale", imagePayload{ImageID: imageID})
}

func (o *ImageOperations) Invert(ctx context.Context, imageID string) (ImageID, error) {
	return o.single(ctx, "invert", imagePayload{ImageID: imageID})
}

func (o *ImageOperations) MergeHorizontal(ctx context.Context, imageIDs []string) (ImageID, error) {
	if len(imageIDs) == 0 {
		return ImageID{}, errors.New("merge_horizontal: no image ids")
	}
	return o.single(ctx, "merge_horizontal", imagesPayload{ImageIDs: imageIDs})
}

func (o *ImageOperations) MergeVertical(ctx context.Context, imageIDs []string) (ImageID, error) {
	if len(imageIDs) == 0 {
		return ImageID{}, errors.New("merge_vertical: no image ids")
	}
	return o.single(ctx, "merge_vertical", imagesPayload{ImageIDs: imageIDs})
}

// GifSplit returns one image id per frame.
func (o *ImageOperations) GifSplit(ctx context.Context, imageID string) (ImageIDs, error) {
	return doJSON[ImageIDs](ctx, o.c, "gif_split", o.request("gif_split", imagePayload{ImageID: imageID}))
}

func (o *ImageOperations) GifMerge(ctx context.Context, imageIDs []string, opts GifMergeOptions) (ImageID, error) {
	if len(imageIDs) == 0 {
		return ImageID{}, errors.New("gif_merge: no image ids")
	}
	return o.single(ctx, "gif_merge", struct {
		imagesPayload
		GifMergeOptions
	}{imagesPayload{ImageIDs: imageIDs}, opts})
}

func (o *ImageOperations) GifReverse(ctx context.Context, imageID string) (ImageID, error) {
	return o.single(ctx, "gif_reverse", imagePayload{ImageID: imageID})
}

func (o *ImageOperations) GifChangeDuration(ctx context.Context, imageID string, opts GifChangeDurationOptions) (ImageID, error) {
	return o.single(ctx, "gif_change_duration", struct {
		imagePayload
		GifChangeDurationOptions
	}{imagePayload{ImageID: imageID}, opts})
}

func (o *ImageOperations) single(ctx context.Context, op string, payload any) (ImageID, error) {
	return doJSON[ImageID](ctx, o.c, op, o.request(op, payload))
}

func (o *ImageOperations) request(op string, payload any) *httpclient.Request {
	return &httpclient.Request{
		Method: http.MethodPost,
		Path:   imageOperationsPath + op,
		Body:   httpclient.JSONBody{Value: payload},
	}
}
