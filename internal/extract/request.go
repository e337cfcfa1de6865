package extract

import (
	"fmt"

	"github.com/pagemark/pagemark/internal/core/document"
)

// DefaultMaxUploadBytes bounds uploaded documents client-side, mirroring
// the service's own size limit so oversized files fail before the upload.
const DefaultMaxUploadBytes = 50 << 20

// Options is the validated extraction configuration. Zero values take the
// documented defaults; out-of-range values are rejected at the boundary
// rather than forwarded.
type Options struct {
	By                      document.Granularity `yaml:"by"`
	FilterLowFrequencyWords bool                 `yaml:"filter_low_frequency_words"`
	MinWordLength           int                  `yaml:"min_word_length"`
	MinWordFrequency        float64              `yaml:"min_word_frequency"`
	RemoveNonAlphabetic     bool                 `yaml:"remove_non_alphabetic"`
}

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options {
	return Options{
		By:               document.DefaultGranularity,
		MinWordLength:    1,
		MinWordFrequency: 1,
	}
}

// applyDefaults fills zero values with the defaults.
func (o *Options) applyDefaults() {
	if o.By == "" {
		o.By = document.DefaultGranularity
	}
	if o.MinWordLength == 0 {
		o.MinWordLength = 1
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if !o.By.IsValid() {
		return fmt.Errorf("%w: unknown granularity %q", ErrInvalidRequest, o.By)
	}
	if o.MinWordLength < 1 {
		return fmt.Errorf("%w: min word length must be at least 1", ErrInvalidRequest)
	}
	if o.MinWordFrequency < 0 {
		return fmt.Errorf("%w: min word frequency cannot be negative", ErrInvalidRequest)
	}
	return nil
}

// Request describes one extraction submission: exactly one of PDFURL or
// PDFFile plus the option record.
type Request struct {
	PDFURL   string
	PDFFile  []byte
	FileName string
	Options  Options

	// MaxUploadBytes overrides the upload size bound; zero means the
	// default.
	MaxUploadBytes int
}

// Validate rejects malformed requests before any network call.
func (r *Request) Validate() error {
	hasURL := r.PDFURL != ""
	hasFile := len(r.PDFFile) > 0

	switch {
	case !hasURL && !hasFile:
		return fmt.Errorf("%w: either a document URL or an uploaded file is required", ErrInvalidRequest)
	case hasURL && hasFile:
		return fmt.Errorf("%w: supply a document URL or an uploaded file, not both", ErrInvalidRequest)
	}

	maxBytes := r.MaxUploadBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if hasFile && len(r.PDFFile) > maxBytes {
		return fmt.Errorf("%w: file exceeds the %d byte upload limit", ErrInvalidRequest, maxBytes)
	}

	r.Options.applyDefaults()
	return r.Options.Validate()
}
