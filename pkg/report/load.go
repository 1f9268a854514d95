package report

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// Load reads a report file, decompressing lz4 archives by extension.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open report")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".lz4") {
		r = lz4.NewReader(f)
	}
	t, err := Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	t.source = filepath.Base(path)
	return t, nil
}
