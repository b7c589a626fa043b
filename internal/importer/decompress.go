package importer

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// openExport opens an export file, transparently decompressing gzip.
func openExport(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != 0x1f || magic[1] != 0x8b {
		return readCloser{Reader: br, Closer: f}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gunzip %s: %w", path, err)
	}
	return readCloser{Reader: zr, Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
