package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/chirp/internal/client/models"
	"github.com/gabriel-vasile/mimetype"
)

// Source is the raw content of one attachment.
type Source struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.ReaderAt
}

// Close releases the underlying handle when Data owns one.
func (s Source) Close() error {
	if c, ok := s.Data.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Kind derives the media type announced at Init.
func (s Source) Kind() models.MediaType {
	return Kind(s.ContentType)
}

// OpenFile opens path for upload. The content type is sniffed from the
// file's leading bytes rather than taken from its extension.
func OpenFile(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return Source{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return Source{}, err
	}
	if st.IsDir() {
		f.Close()
		return Source{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectReader(io.NewSectionReader(f, 0, st.Size()))
	if err != nil {
		f.Close()
		return Source{}, fmt.Errorf("detect content type: %w", err)
	}

	return Source{
		Name:        filepath.Base(path),
		ContentType: mt.String(),
		Size:        st.Size(),
		Data:        f,
	}, nil
}

// Kind maps a content type to IMAGE or VIDEO.
func Kind(contentType string) models.MediaType {
	if strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return models.MediaTypeImage
	}
	return models.MediaTypeVideo
}
