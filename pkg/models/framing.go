package models

import "time"

// ProcessResult is returned to the presentation layer after a successful request
type ProcessResult struct {
	RequestID         string    `json:"request_id"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	// Public URLs of the stored upload and the two artifacts
	UploadURL    string `json:"upload_url"`
	ResultURL    string `json:"result_image"`
	HistogramURL string `json:"histogram"`

	BorderPercent int        `json:"border_percent"`
	BorderWidth   int        `json:"border_width"`
	Source        Dimensions `json:"source"`
	Output        Dimensions `json:"output"`
	SourceFormat  string     `json:"source_format,omitempty"`

	Channels []ChannelSummary `json:"channels"`
}

// Dimensions of a raster in pixels
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ChannelSummary describes one channel's intensity distribution
type ChannelSummary struct {
	Name   string  `json:"name"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Pixels int     `json:"pixels"`
}

// ImageMetadata contains metadata about a decoded upload
type ImageMetadata struct {
	Path          string `json:"path"`
	ContentLength int64  `json:"content_length"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}
