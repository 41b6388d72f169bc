package records

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gomlx/go-pubtator/internal/files"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Written describes an encoded output.
type Written struct {
	Format Format
	Bytes  int64  // number of bytes written, after compression
	BLAKE3 string // hex digest of the bytes written
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// WriteFile encodes collection into path, replacing it atomically.
//
// FormatAuto picks the format from path with FormatFromPath. A path ending in ".xz" is compressed,
// and "-" writes to the standard output.
func WriteFile[R Record](path string, format Format, collection *Collection[R]) (*Written, error) {
	if format == FormatAuto {
		format = FormatFromPath(path)
	}
	hasher := blake3.New()
	counter := &countingWriter{}
	write := func(w io.Writer) error {
		w = io.MultiWriter(w, hasher, counter)
		if !strings.HasSuffix(path, ".xz") {
			return Encode(w, format, collection)
		}
		xw, err := xz.NewWriter(w)
		if err != nil {
			return errors.Wrap(err, "failed to create xz writer")
		}
		if err := Encode(xw, format, collection); err != nil {
			_ = xw.Close()
			return err
		}
		return errors.Wrap(xw.Close(), "failed to flush xz stream")
	}

	var err error
	if path == "-" {
		err = write(os.Stdout)
	} else {
		err = files.WriteAtomic(path, write)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "writing %d records to %q", collection.Len(), path)
	}
	return &Written{
		Format: format,
		Bytes:  counter.n,
		BLAKE3: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Manifest describes one conversion run. It is written next to the output file.
type Manifest struct {
	RunID     string         `json:"run_id"`
	Mode      string         `json:"mode"`
	Input     string         `json:"input"`
	Output    string         `json:"output"`
	Format    Format         `json:"format"`
	Records   int            `json:"records"`
	Bytes     int64          `json:"bytes"`
	BLAKE3    string         `json:"blake3"`
	Issues    map[string]int `json:"issues"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewManifest creates a manifest with a new random run id.
func NewManifest(mode, input, output string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Mode:      mode,
		Input:     input,
		Output:    output,
		Issues:    make(map[string]int),
		CreatedAt: time.Now().UTC(),
	}
}

// SetWritten records the outcome of WriteFile.
func (m *Manifest) SetWritten(records int, written *Written) {
	m.Records = records
	m.Format = written.Format
	m.Bytes = written.Bytes
	m.BLAKE3 = written.BLAKE3
}

// ManifestPath returns where the manifest of output is written.
func ManifestPath(output string) string {
	return output + ".manifest.json"
}

// WriteFile writes the manifest as indented JSON, replacing path atomically.
func (m *Manifest) WriteFile(path string) error {
	return files.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(m), "failed to encode manifest")
	})
}

// ReadManifest reads a manifest written by Manifest.WriteFile.
func ReadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %q", path)
	}
	m := &Manifest{}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %q", path)
	}
	return m, nil
}
