package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagemark/pagemark/internal/core/config"
	"github.com/pagemark/pagemark/internal/extract"
)

// buildRequest assembles an extraction request from a URL or local path.
// When a local file is read, its bytes are handed to the slot so they are
// released when the request is replaced or the session ends.
func buildRequest(cfg *config.Config, pdfURL, pdfFile string, slot *extract.SourceSlot) (*extract.Request, error) {
	req := &extract.Request{
		PDFURL:         pdfURL,
		Options:        cfg.Extraction,
		MaxUploadBytes: extract.DefaultMaxUploadBytes,
	}

	if pdfFile != "" {
		data, err := os.ReadFile(pdfFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", pdfFile, err)
		}
		src := extract.NewSource(filepath.Base(pdfFile), data)
		slot.Set(src)
		req.PDFFile = src.Bytes()
		req.FileName = src.Name()
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
