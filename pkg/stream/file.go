package stream

import (
	"fmt"
	"io"
	"strings"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

// SnappySuffix marks edge files stored in the snappy framing format.
const SnappySuffix = ".sz"

// OpenFile memory-maps path and returns a source over its lines. Files
// ending in SnappySuffix are decompressed on the fly.
func OpenFile(path string) (*TextSource, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stream: open %s: %w", path, err)
	}

	var rd io.Reader = io.NewSectionReader(r, 0, int64(r.Len()))
	name := "file"
	if strings.HasSuffix(path, SnappySuffix) {
		rd = snappy.NewReader(rd)
		name = "file+snappy"
	}

	src := NewTextSource(rd)
	src.name = name
	src.closer = r
	return src, nil
}
