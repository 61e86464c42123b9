// Package docview fetches a stored document from the backend and turns
// it into text for the triage preview pane.
package docview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/byro/cli/internal/api"
	"github.com/gen2brain/go-fitz"
)

// Source fetches stored document bytes by their server-relative path.
type Source interface {
	FetchDocument(ctx context.Context, filePath string) ([]byte, error)
}

// Previewer extracts displayable text from an uploaded document.
type Previewer struct {
	source   Source
	maxPages int
}

// NewPreviewer creates a previewer that renders at most maxPages pages.
func NewPreviewer(source Source, maxPages int) *Previewer {
	if maxPages <= 0 {
		maxPages = 10
	}
	return &Previewer{source: source, maxPages: maxPages}
}

// Preview downloads the item's stored file and returns its page text.
// Plain-text files are returned as-is; everything else goes through the
// PDF renderer.
func (p *Previewer) Preview(ctx context.Context, item *api.InboxItem) (string, error) {
	data, err := p.source.FetchDocument(ctx, item.FilePath)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}

	if strings.EqualFold(filepath.Ext(item.OriginalFilename), ".txt") {
		return string(data), nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var textParts []string
	pages := doc.NumPage()
	if pages > p.maxPages {
		pages = p.maxPages
	}
	for i := 0; i < pages; i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			textParts = append(textParts, text)
		}
	}
	if doc.NumPage() > p.maxPages {
		textParts = append(textParts, fmt.Sprintf("... (%d more pages)", doc.NumPage()-p.maxPages))
	}

	return strings.Join(textParts, "\n\n"), nil
}
