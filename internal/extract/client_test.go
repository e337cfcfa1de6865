package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemark/pagemark/internal/core/document"
)

// fakeDoer records requests and plays back a canned response.
type fakeDoer struct {
	requests []*http.Request
	bodies   [][]byte
	status   int
	response string
	err      error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		body, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, body)
	} else {
		f.bodies = append(f.bodies, nil)
	}

	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(f.response)),
	}, nil
}

const successResponse = `{
	"text_chunks": [
		{"page_number": 1, "text": "Hello", "px_left": 10, "px_bottom": 20, "width": 50, "height": 12}
	],
	"pages": [{"page_number": 1, "width": 612, "height": 792}],
	"run_time_seconds": 1.5
}`

func TestClient_Extract(t *testing.T) {
	t.Run("url source sends json body", func(t *testing.T) {
		doer := &fakeDoer{response: successResponse}
		c := NewClientWithDoer("http://extractor:8000", doer)

		result, err := c.Extract(context.Background(), Request{
			PDFURL:  "https://example.com/paper.pdf",
			Options: Options{By: document.ByBlocks},
		})
		require.NoError(t, err)

		require.Len(t, doer.requests, 1)
		req := doer.requests[0]
		assert.Equal(t, "http://extractor:8000/extract", req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

		var wire map[string]any
		require.NoError(t, json.Unmarshal(doer.bodies[0], &wire))
		assert.Equal(t, "https://example.com/paper.pdf", wire["pdf_url"])
		assert.Equal(t, "blocks", wire["by"])
		assert.Equal(t, float64(1), wire["min_word_length"])

		require.Len(t, result.Chunks, 1)
		assert.Equal(t, "Hello", result.Chunks[0].Text)
		assert.Equal(t, 1, result.Chunks[0].PageNumber)
		require.Len(t, result.Pages, 1)
		assert.InDelta(t, 1.5, result.RunTime.Seconds(), 0.001)
	})

	t.Run("file source sends multipart body", func(t *testing.T) {
		doer := &fakeDoer{response: successResponse}
		c := NewClientWithDoer("http://extractor:8000/", doer)

		_, err := c.Extract(context.Background(), Request{
			PDFFile:  []byte("%PDF-1.7 fake"),
			FileName: "paper.pdf",
			Options:  Options{By: document.ByLines},
		})
		require.NoError(t, err)

		req := doer.requests[0]
		assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data"))
		body := string(doer.bodies[0])
		assert.Contains(t, body, `name="pdf_file"; filename="paper.pdf"`)
		assert.Contains(t, body, `name="by"`)
		assert.Contains(t, body, "lines")
	})

	t.Run("neither source fails before any network call", func(t *testing.T) {
		doer := &fakeDoer{response: successResponse}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, doer.requests)
	})

	t.Run("both sources fail before any network call", func(t *testing.T) {
		doer := &fakeDoer{}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{
			PDFURL:  "https://example.com/a.pdf",
			PDFFile: []byte("bytes"),
		})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, doer.requests)
	})

	t.Run("backend error message surfaces verbatim", func(t *testing.T) {
		doer := &fakeDoer{
			status:   http.StatusBadRequest,
			response: `{"detail": "PDF has too many pages. Maximum allowed is 100."}`,
		}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{PDFURL: "https://example.com/a.pdf"})
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "PDF has too many pages. Maximum allowed is 100.", backendErr.Message)
		assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	})

	t.Run("non-json error body surfaces trimmed", func(t *testing.T) {
		doer := &fakeDoer{status: http.StatusBadGateway, response: "upstream exploded\n"}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{PDFURL: "https://example.com/a.pdf"})
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Equal(t, "upstream exploded", backendErr.Message)
	})

	t.Run("transport failure maps to NetworkError", func(t *testing.T) {
		doer := &fakeDoer{err: io.ErrUnexpectedEOF}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{PDFURL: "https://example.com/a.pdf"})
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("malformed success body is a backend error", func(t *testing.T) {
		doer := &fakeDoer{response: "not json"}
		c := NewClientWithDoer("http://extractor:8000", doer)

		_, err := c.Extract(context.Background(), Request{PDFURL: "https://example.com/a.pdf"})
		var backendErr *BackendError
		require.ErrorAs(t, err, &backendErr)
		assert.Contains(t, backendErr.Message, "malformed extraction response")
	})
}

func TestRequest_Validate(t *testing.T) {
	t.Run("oversized upload rejected", func(t *testing.T) {
		req := Request{
			PDFFile:        bytes.Repeat([]byte("x"), 100),
			MaxUploadBytes: 50,
		}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("defaults applied", func(t *testing.T) {
		req := Request{PDFURL: "https://example.com/a.pdf"}
		require.NoError(t, req.Validate())
		assert.Equal(t, document.ByBlocks, req.Options.By)
		assert.Equal(t, 1, req.Options.MinWordLength)
	})

	t.Run("unknown granularity rejected", func(t *testing.T) {
		req := Request{
			PDFURL:  "https://example.com/a.pdf",
			Options: Options{By: "paragraphs"},
		}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("negative frequency rejected", func(t *testing.T) {
		req := Request{
			PDFURL:  "https://example.com/a.pdf",
			Options: Options{By: document.BySpans, MinWordFrequency: -0.5},
		}
		assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)
	})

	t.Run("fractional frequency accepted", func(t *testing.T) {
		req := Request{
			PDFURL:  "https://example.com/a.pdf",
			Options: Options{By: document.BySpans, MinWordFrequency: 0.25},
		}
		assert.NoError(t, req.Validate())
	})
}

func TestSourceSlot(t *testing.T) {
	t.Run("replacement releases the previous source once", func(t *testing.T) {
		var slot SourceSlot

		first := NewSource("a.pdf", []byte("aaa"))
		slot.Set(first)
		assert.False(t, first.Released())

		second := NewSource("b.pdf", []byte("bbb"))
		slot.Set(second)
		assert.True(t, first.Released())
		assert.Nil(t, first.Bytes())
		assert.False(t, second.Released())
	})

	t.Run("close releases at session end", func(t *testing.T) {
		var slot SourceSlot
		src := NewSource("a.pdf", []byte("aaa"))
		slot.Set(src)

		slot.Close()
		assert.True(t, src.Released())
		assert.Nil(t, slot.Current())

		// A second close must not double-release.
		slot.Close()
	})
}
