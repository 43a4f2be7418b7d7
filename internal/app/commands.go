package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samvad-hq/memegen-client/pkg/memeapi"
	"github.com/samvad-hq/memegen-client/pkg/memeerr"
)

var (
	// ErrUsage reports a malformed command line.
	ErrUsage = errors.New("usage")
	// ErrNotInHistory is returned when a looked-up image id has no live history record.
	ErrNotInHistory = errors.New("not in history")
)

type command struct {
	usage string
	run   func(r *Runtime, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"version":     {"version", (*Runtime).cmdVersion},
	"keys":        {"keys", (*Runtime).cmdKeys},
	"infos":       {"infos", (*Runtime).cmdInfos},
	"info":        {"info <key>", (*Runtime).cmdInfo},
	"search":      {"search [-tags] <query>", (*Runtime).cmdSearch},
	"preview":     {"preview <key>", (*Runtime).cmdPreview},
	"render":      {"render [-image id]... [-name n]... [-text t]... [-option k=v]... <key>", (*Runtime).cmdRender},
	"render-form": {"render-form -o file [-image path]... [-text t]... [-args json] <key>", (*Runtime).cmdRenderForm},
	"render-list": {"render-list [-key k]... [-template t] [-no-icon]", (*Runtime).cmdRenderList},
	"stats":       {"stats -title t -type meme_count|time_count name=count...", (*Runtime).cmdStats},
	"upload":      {"upload [-server-path] <path|url>", (*Runtime).cmdUpload},
	"image":       {"image [-o file] <id>", (*Runtime).cmdImage},
	"imgop":       {"imgop <op> [flags] <id...>", (*Runtime).cmdImgOp},
	"history":     {"history [-n N] [image-id]", (*Runtime).cmdHistory},
}

// Run executes the command named by args[0].
func (r *Runtime) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.printUsage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		r.printUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	r.log.DebugObj("running command", "command", args[0])
	return cmd.run(r, ctx, args[1:])
}

func (r *Runtime) printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(r.errOut, "usage: memectl <command> [flags]")
	for _, name := range names {
		fmt.Fprintf(r.errOut, "  %s\n", commands[name].usage)
	}
}

// FormatError renders err for the terminal. Classified service errors print their kind
// and status.
func FormatError(err error) string {
	var merr *memeerr.Error
	if errors.As(err, &merr) {
		return "error: " + merr.Error()
	}
	return "error: " + err.Error()
}

func (r *Runtime) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	return fs
}

func (r *Runtime) printJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func exactArgs(fs *flag.FlagSet, n int) error {
	if fs.NArg() != n {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", ErrUsage, fs.Name(), n, fs.NArg())
	}
	return nil
}

func (r *Runtime) cmdVersion(ctx context.Context, args []string) error {
	v, err := r.client.GetVersion(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, v)
	return nil
}

func (r *Runtime) cmdKeys(ctx context.Context, args []string) error {
	keys, err := r.client.GetKeys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(r.out, k)
	}
	return nil
}

func (r *Runtime) cmdInfos(ctx context.Context, args []string) error {
	infos, err := r.client.GetInfos(ctx)
	if err != nil {
		return err
	}
	return r.printJSON(infos)
}

func (r *Runtime) cmdInfo(ctx context.Context, args []string) error {
	fs := r.newFlagSet("info")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}
	info, err := r.client.GetInfo(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return r.printJSON(info)
}

func (r *Runtime) cmdSearch(ctx context.Context, args []string) error {
	fs := r.newFlagSet("search")
	tags := fs.Bool("tags", false, "also match template tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}
	keys, err := r.client.SearchMemes(ctx, fs.Arg(0), *tags)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(r.out, k)
	}
	return nil
}

func (r *Runtime) cmdPreview(ctx context.Context, args []string) error {
	fs := r.newFlagSet("preview")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}
	key := fs.Arg(0)
	id, err := r.client.RenderPreview(ctx, key)
	if err != nil {
		return err
	}
	return r.produced(ctx, "preview", key, id.ImageID, nil)
}

func (r *Runtime) cmdRender(ctx context.Context, args []string) error {
	fs := r.newFlagSet("render")
	var images, names, texts, options stringList
	fs.Var(&images, "image", "uploaded image id (repeatable)")
	fs.Var(&names, "name", "name drawn with the image at the same position (repeatable)")
	fs.Var(&texts, "text", "text (repeatable)")
	fs.Var(&options, "option", "option as key=value; value is parsed as JSON when possible (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}

	opts, err := parseOptions(options)
	if err != nil {
		return err
	}
	req := memeapi.RenderMemeRequest{Texts: texts, Options: opts}
	for i, id := range images {
		img := memeapi.RenderImage{ID: id}
		if i < len(names) {
			img.Name = names[i]
		}
		req.Images = append(req.Images, img)
	}

	key := fs.Arg(0)
	id, err := r.client.RenderMeme(ctx, key, req)
	if err != nil {
		return err
	}
	return r.produced(ctx, "render", key, id.ImageID, images)
}

func (r *Runtime) cmdRenderForm(ctx context.Context, args []string) error {
	fs := r.newFlagSet("render-form")
	output := fs.String("o", "", "output file")
	rawArgs := fs.String("args", "", "template arguments as a JSON object")
	var images, texts stringList
	fs.Var(&images, "image", "local image file (repeatable)")
	fs.Var(&texts, "text", "text (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}
	if *output == "" {
		return fmt.Errorf("%w: render-form requires -o", ErrUsage)
	}

	req := memeapi.RenderFormRequest{Texts: texts}
	if *rawArgs != "" {
		if err := json.Unmarshal([]byte(*rawArgs), &req.Args); err != nil {
			return fmt.Errorf("parse -args: %w", err)
		}
	}
	for _, path := range images {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		req.Images = append(req.Images, memeapi.FormImage{
			FileName:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Data:        f,
		})
	}

	data, err := r.client.RenderMemeForm(ctx, fs.Arg(0), req)
	if err != nil {
		return err
	}
	return r.writeFile(*output, data)
}

func (r *Runtime) cmdRenderList(ctx context.Context, args []string) error {
	fs := r.newFlagSet("render-list")
	var keys stringList
	fs.Var(&keys, "key", "meme key to include (repeatable)")
	template := fs.String("template", "", "text template for each entry")
	noIcon := fs.Bool("no-icon", false, "omit category icons")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req *memeapi.RenderMemeListRequest
	if len(keys) > 0 || *template != "" || *noIcon {
		req = &memeapi.RenderMemeListRequest{TextTemplate: *template}
		for _, k := range keys {
			req.MemeList = append(req.MemeList, memeapi.MemeKeyWithProperties{MemeKey: k})
		}
		if *noIcon {
			icon := false
			req.AddCategoryIcon = &icon
		}
	}

	id, err := r.client.RenderList(ctx, req)
	if err != nil {
		return err
	}
	return r.produced(ctx, "render_list", "", id.ImageID, nil)
}

func (r *Runtime) cmdStats(ctx context.Context, args []string) error {
	fs := r.newFlagSet("stats")
	title := fs.String("title", "", "chart title")
	typ := fs.String("type", string(memeapi.StatisticsMemeCount), "meme_count or time_count")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st := memeapi.StatisticsType(*typ)
	if st != memeapi.StatisticsMemeCount && st != memeapi.StatisticsTimeCount {
		return fmt.Errorf("%w: unknown statistics type %q", ErrUsage, *typ)
	}
	req := memeapi.RenderStatisticsRequest{Title: *title, StatisticsType: st}
	for _, arg := range fs.Args() {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: statistics entry %q is not name=count", ErrUsage, arg)
		}
		count, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("statistics entry %q: %w", arg, err)
		}
		req.Data = append(req.Data, memeapi.StatisticsEntry{Name: name, Count: count})
	}

	id, err := r.client.RenderStatistics(ctx, req)
	if err != nil {
		return err
	}
	return r.produced(ctx, "statistics", "", id.ImageID, nil)
}

func (r *Runtime) cmdUpload(ctx context.Context, args []string) error {
	fs := r.newFlagSet("upload")
	serverPath := fs.Bool("server-path", false, "treat the argument as a path on the service host")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}

	src := fs.Arg(0)
	var (
		id  memeapi.ImageID
		err error
	)
	switch {
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		id, err = r.client.UploadImage(ctx, memeapi.UploadURL{URL: src})
	case *serverPath:
		id, err = r.client.UploadImage(ctx, memeapi.UploadPath{Path: src})
	default:
		f, openErr := os.Open(src)
		if openErr != nil {
			return fmt.Errorf("open image: %w", openErr)
		}
		defer f.Close()
		id, err = r.client.UploadImageMultipart(ctx, filepath.Base(src), f)
	}
	if err != nil {
		return err
	}
	return r.produced(ctx, "upload", "", id.ImageID, []string{src})
}

func (r *Runtime) cmdImage(ctx context.Context, args []string) error {
	fs := r.newFlagSet("image")
	output := fs.String("o", "", "output file (defaults to <output_dir>/<id>)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := exactArgs(fs, 1); err != nil {
		return err
	}

	id := fs.Arg(0)
	data, err := r.client.GetImage(ctx, id)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = filepath.Join(r.cfg.OutputDir, id)
	}
	return r.writeFile(path, data)
}

func (r *Runtime) cmdHistory(ctx context.Context, args []string) error {
	fs := r.newFlagSet("history")
	n := fs.Int("n", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		return r.historyLookup(fs.Arg(0))
	default:
		return fmt.Errorf("%w: history expects at most 1 image id, got %d", ErrUsage, fs.NArg())
	}
	recs, err := r.store.Recent(*n)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	for _, rec := range recs {
		line := fmt.Sprintf("%s\t%s\t%s", rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), rec.Operation, rec.ImageID)
		if rec.MemeKey != "" {
			line += "\t" + rec.MemeKey
		}
		fmt.Fprintln(r.out, line)
	}
	return nil
}

// historyLookup prints the stored record for one image id.
func (r *Runtime) historyLookup(imageID string) error {
	rec, ok, err := r.store.Lookup(imageID)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: image %q", ErrNotInHistory, imageID)
	}
	return r.printJSON(rec)
}

// produced prints a new image id and remembers it.
func (r *Runtime) produced(ctx context.Context, op, key, imageID string, sources []string) error {
	fmt.Fprintln(r.out, imageID)
	r.remember(ctx, op, key, imageID, sources)
	return nil
}

func (r *Runtime) writeFile(path string, data []byte) error {
	if path == "-" {
		_, err := r.out.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintln(r.out, path)
	return nil
}

// parseOptions turns key=value pairs into render options.
func parseOptions(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	opts := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, raw, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: option %q is not key=value", ErrUsage, pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		opts[k] = v
	}
	return opts, nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
