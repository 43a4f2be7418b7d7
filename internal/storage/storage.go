package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/memegen-client/internal/domain"
)

// Package storage keeps a local history of rendered images.

// Store records render results keyed by image id.
type Store interface {
	Close() error
	Record(rec domain.RenderRecord) error
	Lookup(imageID string) (domain.RenderRecord, bool, error)
	Recent(limit int) ([]domain.RenderRecord, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	RecordTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecordTTL       = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecordTTL <= 0 {
		opts.RecordTTL = defaultRecordTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error { return nil }

func (noopStore) Record(domain.RenderRecord) error { return nil }

func (noopStore) Lookup(string) (domain.RenderRecord, bool, error) {
	return domain.RenderRecord{}, false, nil
}

func (noopStore) Recent(int) ([]domain.RenderRecord, error) { return nil, nil }
