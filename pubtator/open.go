package pubtator

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"golang.org/x/exp/mmap"
)

// xzMagic starts every xz stream.
var xzMagic = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a PubTator file for reading.
//
// "-" reads standard input. Regular files are memory-mapped; files with an ".xz" suffix or
// starting with the xz magic bytes are decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	mapped, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	content := io.NewSectionReader(mapped, 0, int64(mapped.Len()))

	magic := make([]byte, len(xzMagic))
	n, _ := mapped.ReadAt(magic, 0)
	if strings.HasSuffix(path, ".xz") || (n == len(magic) && bytes.Equal(magic, xzMagic)) {
		xr, err := xz.NewReader(content)
		if err != nil {
			_ = mapped.Close()
			return nil, errors.Wrapf(err, "failed to read xz stream %q", path)
		}
		return &multiReadCloser{Reader: xr, closers: []io.Closer{mapped}}, nil
	}
	return &multiReadCloser{Reader: content, closers: []io.Closer{mapped}}, nil
}
