package domain

import "time"

// RenderRecord describes an image produced by a meme-generator call.
type RenderRecord struct {
	ImageID   string    `json:"image_id"`
	Operation string    `json:"operation"`
	MemeKey   string    `json:"meme_key,omitempty"`
	Sources   []string  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
