package publishers

import (
	"time"

	"github.com/samvad-hq/memegen-client/internal/domain"
)

// Event represents the render notification published downstream.
type Event struct {
	Service   string    `json:"service"`
	Operation string    `json:"operation"`
	MemeKey   string    `json:"meme_key,omitempty"`
	ImageID   string    `json:"image_id"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEvent constructs an Event for a render produced by service.
func NewEvent(service string, rec domain.RenderRecord) Event {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return Event{
		Service:   service,
		Operation: rec.Operation,
		MemeKey:   rec.MemeKey,
		ImageID:   rec.ImageID,
		Sources:   rec.Sources,
		CreatedAt: created,
	}
}

// attributes returns the message attributes shared by queue-based sinks.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"operation": e.Operation}
	if e.MemeKey != "" {
		attrs["meme_key"] = e.MemeKey
	}
	return attrs
}
