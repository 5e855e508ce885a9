package shell

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DirFactory creates save-file sinks as regular files under a results
// directory.
type DirFactory struct {
	dir string
}

// NewDirFactory returns a factory writing into dir.
func NewDirFactory(dir string) *DirFactory {
	return &DirFactory{dir: dir}
}

// Create opens a file for the given name, creating the directory on first
// use.
func (f *DirFactory) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating results directory")
	}
	file, err := os.Create(filepath.Join(f.dir, name))
	if err != nil {
		return nil, errors.Wrap(err, "creating save file")
	}
	return file, nil
}
