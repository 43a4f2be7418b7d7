package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samvad-hq/memegen-client/internal/config"
	"github.com/samvad-hq/memegen-client/internal/domain"
	"github.com/samvad-hq/memegen-client/internal/logger"
	"github.com/samvad-hq/memegen-client/internal/storage"
	"github.com/samvad-hq/memegen-client/pkg/httpclient"
	"github.com/samvad-hq/memegen-client/pkg/memeapi"
	"github.com/samvad-hq/memegen-client/pkg/publishers"
)

// Runtime wires the meme API client together with the render history store and the
// event fan-out, and executes CLI commands against them.
type Runtime struct {
	cfg    *config.Config
	client *memeapi.Client
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// NewRuntime builds a runtime from config.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	transport := httpclient.NewRestyTransport(httpclient.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
	})
	client, err := memeapi.New(transport, memeapi.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("build meme api client: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		RecordTTL:       cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return newRuntime(cfg, client, store, fanout, log), nil
}

func newRuntime(cfg *config.Config, client *memeapi.Client, store storage.Store, fanout *publishers.Fanout, log logger.Logger) *Runtime {
	return &Runtime{
		cfg:    cfg,
		client: client,
		store:  store,
		fanout: fanout,
		log:    log,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// buildFanout loads publishers from path. An empty path disables publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	log.InfoObj("publishers registry loaded", "publishers", enabled)
	return publishers.NewFanout(pubs), nil
}

// Close releases the history store and publisher connections.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.fanout != nil {
		firstErr = r.fanout.Close()
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// remember stores the produced image in history and publishes a render event.
// Failures are logged and never fail the command.
func (r *Runtime) remember(ctx context.Context, op, key, imageID string, sources []string) {
	rec := domain.RenderRecord{
		ImageID:   imageID,
		Operation: op,
		MemeKey:   key,
		Sources:   sources,
		CreatedAt: r.now(),
	}

	if err := r.store.Record(rec); err != nil {
		r.log.WarnObj("failed to record render history", "history_error", map[string]any{
			"image_id": imageID,
			"error":    err.Error(),
		})
	}

	if r.fanout.Size() == 0 {
		return
	}
	n, err := r.fanout.Publish(ctx, publishers.NewEvent(r.cfg.AppName, rec))
	if err != nil {
		r.log.WarnObj("render event publish failed", "publish_error", map[string]any{
			"image_id":   imageID,
			"successful": n,
			"error":      err.Error(),
		})
	}
}
