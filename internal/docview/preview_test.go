package docview

import (
	"context"
	"errors"
	"testing"

	"github.com/byro/cli/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	data []byte
	err  error
	path string
}

func (f *fakeSource) FetchDocument(ctx context.Context, filePath string) ([]byte, error) {
	f.path = filePath
	return f.data, f.err
}

func TestPreviewPlainText(t *testing.T) {
	src := &fakeSource{data: []byte("dear sir or madam")}
	p := NewPreviewer(src, 10)

	item := &api.InboxItem{
		OriginalFilename: "letter.TXT",
		FilePath:         "uploads/letter.txt",
	}
	text, err := p.Preview(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "dear sir or madam", text)
	assert.Equal(t, "uploads/letter.txt", src.path)
}

func TestPreviewFetchError(t *testing.T) {
	src := &fakeSource{err: errors.New("backend down")}
	p := NewPreviewer(src, 10)

	_, err := p.Preview(context.Background(), &api.InboxItem{
		OriginalFilename: "a.pdf",
		FilePath:         "uploads/a.pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestPreviewRejectsGarbagePDF(t *testing.T) {
	src := &fakeSource{data: []byte("not a pdf at all")}
	p := NewPreviewer(src, 10)

	_, err := p.Preview(context.Background(), &api.InboxItem{
		OriginalFilename: "a.pdf",
		FilePath:         "uploads/a.pdf",
	})
	assert.Error(t, err)
}
