// Package extract builds and issues extraction requests against the
// external extraction service and maps its responses onto the document
// model. No retries: a failed request surfaces immediately and retrying is
// a fresh user action.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pagemark/pagemark/internal/core/document"
	"github.com/pagemark/pagemark/internal/core/geometry"
)

const defaultTimeout = 60 * time.Second

// Doer abstracts the HTTP client for tests.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the extraction service.
type Client struct {
	baseURL string
	httpc   Doer
}

// NewClient creates a client for the service at baseURL. A zero timeout
// falls back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// NewClientWithDoer creates a client with a custom transport, for tests.
func NewClientWithDoer(baseURL string, doer Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpc: doer}
}

// wireRequest is the JSON body for URL-sourced extractions.
type wireRequest struct {
	PDFURL                string  `json:"pdf_url"`
	By                    string  `json:"by"`
	FilterNonEnglishWords bool    `json:"filter_non_english_words"`
	MinWordLength         int     `json:"min_word_length"`
	MinWordFrequency      float64 `json:"min_word_frequency"`
	RemoveNonAlpha        bool    `json:"remove_non_alpha"`
}

// wireResponse is the extraction service's success payload.
type wireResponse struct {
	TextChunks     []document.TextChunk    `json:"text_chunks"`
	Pages          []geometry.PageGeometry `json:"pages"`
	RunTimeSeconds float64                 `json:"run_time_seconds"`
}

// wireError is the service's error payload shape.
type wireError struct {
	Detail string `json:"detail"`
}

// Result is a completed extraction. RunTime is observability-only and never
// feeds control flow.
type Result struct {
	Chunks  []document.TextChunk
	Pages   []geometry.PageGeometry
	RunTime time.Duration
}

// Extract validates and submits the request, returning the mapped response.
// Validation failures return ErrInvalidRequest without any network call.
func (c *Client) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var httpReq *http.Request
	var err error
	if req.PDFURL != "" {
		httpReq, err = c.jsonRequest(ctx, req)
	} else {
		httpReq, err = c.multipartRequest(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("build extraction request: %w", err)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug().Err(err).Msg("extract: close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backendError(resp.StatusCode, body)
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Message:    "malformed extraction response: " + err.Error(),
		}
	}

	result := &Result{
		Chunks:  wire.TextChunks,
		Pages:   wire.Pages,
		RunTime: time.Duration(wire.RunTimeSeconds * float64(time.Second)),
	}

	log.Info().
		Int("chunks", len(result.Chunks)).
		Str("granularity", string(req.Options.By)).
		Dur("run_time", result.RunTime).
		Msg("extraction complete")

	return result, nil
}

func (c *Client) jsonRequest(ctx context.Context, req Request) (*http.Request, error) {
	payload, err := json.Marshal(wireRequest{
		PDFURL:                req.PDFURL,
		By:                    string(req.Options.By),
		FilterNonEnglishWords: req.Options.FilterLowFrequencyWords,
		MinWordLength:         req.Options.MinWordLength,
		MinWordFrequency:      req.Options.MinWordFrequency,
		RemoveNonAlpha:        req.Options.RemoveNonAlphabetic,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

func (c *Client) multipartRequest(ctx context.Context, req Request) (*http.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := req.FileName
	if name == "" {
		name = "document.pdf"
	}
	part, err := w.CreateFormFile("pdf_file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(req.PDFFile); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"by":                       string(req.Options.By),
		"filter_non_english_words": strconv.FormatBool(req.Options.FilterLowFrequencyWords),
		"min_word_length":          strconv.Itoa(req.Options.MinWordLength),
		"min_word_frequency":       strconv.FormatFloat(req.Options.MinWordFrequency, 'f', -1, 64),
		"remove_non_alpha":         strconv.FormatBool(req.Options.RemoveNonAlphabetic),
	}
	for field, value := range fields {
		if err := w.WriteField(field, value); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	return httpReq, nil
}

// backendError maps a non-2xx body to a BackendError, surfacing the
// service's message verbatim when one is present.
func backendError(status int, body []byte) *BackendError {
	var wire wireError
	if err := json.Unmarshal(body, &wire); err == nil && wire.Detail != "" {
		return &BackendError{StatusCode: status, Message: wire.Detail}
	}

	msg := strings.TrimSpace(string(body))
	return &BackendError{StatusCode: status, Message: msg}
}
