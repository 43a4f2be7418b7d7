package memeapi

import (
	"encoding/json"
	"fmt"
	"io"
)

// ImageID identifies an image stored on the meme-generator service.
type ImageID struct {
	ImageID string `json:"image_id"`
}

// ImageIDs is returned by operations producing several images.
type ImageIDs struct {
	ImageIDs []string `json:"image_ids"`
}

// UploadImageRequest is one of UploadURL, UploadPath or UploadData.
type UploadImageRequest interface {
	json.Marshaler
	uploadType() string
}

// UploadURL asks the service to download the image itself.
type UploadURL struct {
	URL     string
	Headers map[string]string
}

// UploadPath points at a file readable by the service process.
type UploadPath struct {
	Path string
}

// UploadData carries the image inline; it is sent base64-encoded.
type UploadData struct {
	Data []byte
}

func (UploadURL) uploadType() string  { return "url" }
func (UploadPath) uploadType() string { return "path" }
func (UploadData) uploadType() string { return "data" }

func (u UploadURL) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string            `json:"type"`
		URL     string            `json:"url"`
		Headers map[string]string `json:"headers,omitempty"`
	}{Type: u.uploadType(), URL: u.URL, Headers: u.Headers})
}

func (u UploadPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Path string `json:"path"`
	}{Type: u.uploadType(), Path: u.Path})
}

func (u UploadData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Data []byte `json:"data"`
	}{Type: u.uploadType(), Data: u.Data})
}

// MemeInfo describes a meme template.
type MemeInfo struct {
	Key          string         `json:"key"`
	Params       MemeParams     `json:"params"`
	Keywords     []string       `json:"keywords"`
	Shortcuts    []MemeShortcut `json:"shortcuts"`
	Tags         []string       `json:"tags"`
	DateCreated  string         `json:"date_created"`
	DateModified string         `json:"date_modified"`
}

// MemeParams bounds the inputs a template accepts.
type MemeParams struct {
	MinImages    int          `json:"min_images"`
	MaxImages    int          `json:"max_images"`
	MinTexts     int          `json:"min_texts"`
	MaxTexts     int          `json:"max_texts"`
	DefaultTexts []string     `json:"default_texts"`
	Options      []MemeOption `json:"options"`
}

// Option value types reported in MemeOption.Type.
const (
	OptionBoolean = "boolean"
	OptionString  = "string"
	OptionInteger = "integer"
	OptionFloat   = "float"
)

// MemeOption is a template-specific render option.
type MemeOption struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Default     json.RawMessage `json:"default,omitempty"`
	Description *string         `json:"description,omitempty"`
	ParserFlags ParserFlags     `json:"parser_flags"`
	Choices     []string        `json:"choices,omitempty"`
	Minimum     *float64        `json:"minimum,omitempty"`
	Maximum     *float64        `json:"maximum,omitempty"`
}

// ParserFlags lists the command-line spellings of an option.
type ParserFlags struct {
	Short        bool     `json:"short"`
	Long         bool     `json:"long"`
	ShortAliases []string `json:"short_aliases"`
	LongAliases  []string `json:"long_aliases"`
}

// MemeShortcut is a keyword pattern that pre-fills texts and options.
type MemeShortcut struct {
	Pattern   string         `json:"pattern"`
	Humanized *string        `json:"humanized,omitempty"`
	Names     []string       `json:"names"`
	Texts     []string       `json:"texts"`
	Options   map[string]any `json:"options"`
}

// RenderImage references an uploaded image and the user name drawn with it.
type RenderImage struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RenderMemeRequest is the JSON render payload.
type RenderMemeRequest struct {
	Images  []RenderImage  `json:"images"`
	Texts   []string       `json:"texts"`
	Options map[string]any `json:"options"`
}

// FormImage is an image file sent with RenderMemeForm.
type FormImage struct {
	FileName    string
	ContentType string
	Data        io.Reader
}

// RenderFormRequest is the multipart render payload of the legacy render endpoint.
type RenderFormRequest struct {
	Images []FormImage
	Texts  []string
	Args   map[string]any
}

// Labels shown next to a key in a rendered meme list.
const (
	LabelNew = "new"
	LabelHot = "hot"
)

// MemeKeyWithProperties is one entry of a rendered meme list.
type MemeKeyWithProperties struct {
	MemeKey  string   `json:"meme_key"`
	Disabled bool     `json:"disabled,omitempty"`
	Labels   []string `json:"labels,omitempty"`
}

// RenderMemeListRequest controls the composite listing image.
type RenderMemeListRequest struct {
	MemeList        []MemeKeyWithProperties `json:"meme_list,omitempty"`
	TextTemplate    string                  `json:"text_template,omitempty"`
	AddCategoryIcon *bool                   `json:"add_category_icon,omitempty"`
}

// StatisticsType selects the statistics chart layout.
type StatisticsType string

const (
	StatisticsMemeCount StatisticsType = "meme_count"
	StatisticsTimeCount StatisticsType = "time_count"
)

// StatisticsEntry is encoded as a `[name, count]` pair.
type StatisticsEntry struct {
	Name  string
	Count int
}

func (e StatisticsEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Name, e.Count})
}

func (e *StatisticsEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("statistics entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Name); err != nil {
		return fmt.Errorf("statistics entry name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Count); err != nil {
		return fmt.Errorf("statistics entry count: %w", err)
	}
	return nil
}

// RenderStatisticsRequest is the payload of RenderStatistics.
type RenderStatisticsRequest struct {
	Title          string            `json:"title"`
	StatisticsType StatisticsType    `json:"statistics_type"`
	Data           []StatisticsEntry `json:"data"`
}

// InspectResponse describes an image.
type InspectResponse struct {
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	IsMultiFrame    bool     `json:"is_multi_frame"`
	FrameCount      *int     `json:"frame_count,omitempty"`
	AverageDuration *float64 `json:"average_duration,omitempty"`
}

// RotateOptions rotates counter-clockwise by Degrees (service default when nil).
type RotateOptions struct {
	Degrees *float64 `json:"degrees,omitempty"`
}

// ResizeOptions keeps the aspect ratio when only one side is set.
type ResizeOptions struct {
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`
}

// CropOptions selects a box in pixels.
type CropOptions struct {
	Left   *int `json:"left,omitempty"`
	Top    *int `json:"top,omitempty"`
	Right  *int `json:"right,omitempty"`
	Bottom *int `json:"bottom,omitempty"`
}

// GifMergeOptions sets the frame duration in seconds.
type GifMergeOptions struct {
	Duration *float64 `json:"duration,omitempty"`
}

// GifChangeDurationOptions sets the new frame duration in seconds.
type GifChangeDurationOptions struct {
	Duration float64 `json:"duration"`
}
