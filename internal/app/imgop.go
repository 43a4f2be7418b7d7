package app

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/samvad-hq/memegen-client/pkg/memeapi"
)

// imgopFlags collects every option any image operation accepts; each operation reads
// only the ones it needs, and only when explicitly set.
type imgopFlags struct {
	set map[string]bool

	degrees  float64
	width    int
	height   int
	left     int
	top      int
	right    int
	bottom   int
	duration float64
}

func (f *imgopFlags) intPtr(name string, v int) *int {
	if !f.set[name] {
		return nil
	}
	return &v
}

func (f *imgopFlags) floatPtr(name string, v float64) *float64 {
	if !f.set[name] {
		return nil
	}
	return &v
}

type imgopFunc func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, ids []string) ([]string, error)

type imgop struct {
	arity int // 1 = single image, -1 = one or more
	run   imgopFunc
}

func single(fn func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, id string) (memeapi.ImageID, error)) imgop {
	return imgop{arity: 1, run: func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, ids []string) ([]string, error) {
		out, err := fn(ctx, ops, f, ids[0])
		if err != nil {
			return nil, err
		}
		return []string{out.ImageID}, nil
	}}
}

func many(fn func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, ids []string) (memeapi.ImageID, error)) imgop {
	return imgop{arity: -1, run: func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, ids []string) ([]string, error) {
		out, err := fn(ctx, ops, f, ids)
		if err != nil {
			return nil, err
		}
		return []string{out.ImageID}, nil
	}}
}

var imageOperations = map[string]imgop{
	"flip_horizontal": single(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.FlipHorizontal(ctx, id)
	}),
	"flip_vertical": single(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.FlipVertical(ctx, id)
	}),
	"rotate": single(func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.Rotate(ctx, id, memeapi.RotateOptions{Degrees: f.floatPtr("degrees", f.degrees)})
	}),
	"resize": single(func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.Resize(ctx, id, memeapi.ResizeOptions{
			Width:  f.intPtr("width", f.width),
			Height: f.intPtr("height", f.height),
		})
	}),
	"crop": single(func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.Crop(ctx, id, memeapi.CropOptions{
			Left:   f.intPtr("left", f.left),
			Top:    f.intPtr("top", f.top),
			Right:  f.intPtr("right", f.right),
			Bottom: f.intPtr("bottom", f.bottom),
		})
	}),
	"grayscale": single(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.Grayscale(ctx, id)
	}),
	"invert": single(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.Invert(ctx, id)
	}),
	"merge_horizontal": many(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, ids []string) (memeapi.ImageID, error) {
		return ops.MergeHorizontal(ctx, ids)
	}),
	"merge_vertical": many(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, ids []string) (memeapi.ImageID, error) {
		return ops.MergeVertical(ctx, ids)
	}),
	"gif_split": {arity: 1, run: func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, ids []string) ([]string, error) {
		out, err := ops.GifSplit(ctx, ids[0])
		if err != nil {
			return nil, err
		}
		return out.ImageIDs, nil
	}},
	"gif_merge": many(func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, ids []string) (memeapi.ImageID, error) {
		return ops.GifMerge(ctx, ids, memeapi.GifMergeOptions{Duration: f.floatPtr("duration", f.duration)})
	}),
	"gif_reverse": single(func(ctx context.Context, ops *memeapi.ImageOperations, _ *imgopFlags, id string) (memeapi.ImageID, error) {
		return ops.GifReverse(ctx, id)
	}),
	"gif_change_duration": single(func(ctx context.Context, ops *memeapi.ImageOperations, f *imgopFlags, id string) (memeapi.ImageID, error) {
		if !f.set["duration"] {
			return memeapi.ImageID{}, fmt.Errorf("%w: gif_change_duration requires -duration", ErrUsage)
		}
		return ops.GifChangeDuration(ctx, id, memeapi.GifChangeDurationOptions{Duration: f.duration})
	}),
}

func imageOperationNames() []string {
	names := make([]string, 0, len(imageOperations)+1)
	for name := range imageOperations {
		names = append(names, name)
	}
	names = append(names, "inspect")
	sort.Strings(names)
	return names
}

func (r *Runtime) cmdImgOp(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: imgop requires an operation (%s)", ErrUsage, strings.Join(imageOperationNames(), ", "))
	}
	name := args[0]

	f := &imgopFlags{set: map[string]bool{}}
	fs := r.newFlagSet("imgop " + name)
	fs.Float64Var(&f.degrees, "degrees", 0, "rotation in degrees, counter-clockwise")
	fs.IntVar(&f.width, "width", 0, "target width in pixels")
	fs.IntVar(&f.height, "height", 0, "target height in pixels")
	fs.IntVar(&f.left, "left", 0, "crop box left")
	fs.IntVar(&f.top, "top", 0, "crop box top")
	fs.IntVar(&f.right, "right", 0, "crop box right")
	fs.IntVar(&f.bottom, "bottom", 0, "crop box bottom")
	fs.Float64Var(&f.duration, "duration", 0, "frame duration in seconds")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	ids := fs.Args()

	if name == "inspect" {
		if len(ids) != 1 {
			return fmt.Errorf("%w: inspect expects 1 image id", ErrUsage)
		}
		info, err := r.client.ImgOps.Inspect(ctx, ids[0])
		if err != nil {
			return err
		}
		return r.printJSON(info)
	}

	op, ok := imageOperations[name]
	if !ok {
		return fmt.Errorf("%w: unknown image operation %q", ErrUsage, name)
	}
	switch {
	case op.arity == 1 && len(ids) != 1:
		return fmt.Errorf("%w: %s expects 1 image id, got %d", ErrUsage, name, len(ids))
	case op.arity < 0 && len(ids) == 0:
		return fmt.Errorf("%w: %s expects at least 1 image id", ErrUsage, name)
	}

	out, err := op.run(ctx, r.client.ImgOps, f, ids)
	if err != nil {
		return err
	}
	for _, id := range out {
		if err := r.produced(ctx, "imgop."+name, "", id, ids); err != nil {
			return err
		}
	}
	return nil
}
