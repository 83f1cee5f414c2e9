package ocpload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// ErrNotFound is returned by resource finders for names they do not know.
var ErrNotFound = errors.New("ocpload: resource not found")

// Ext is the file extension of compiled programs.
const Ext = ".ocp"

// ResourceFinder locates the binary representation of compiled programs.
type ResourceFinder interface {
	FindResource(name string) (io.ReadCloser, error)
}

// FSFinder finds programs as files "<name>.ocp" in a file system.
type FSFinder struct {
	fsys fs.FS
}

// NewFSFinder creates a finder for the programs in fsys.
func NewFSFinder(fsys fs.FS) *FSFinder {
	return &FSFinder{fsys: fsys}
}

// NewDirFinder creates a finder for the programs in directory dir.
func NewDirFinder(dir string) *FSFinder {
	return NewFSFinder(os.DirFS(dir))
}

// FindResource opens file "<name>.ocp".
func (f *FSFinder) FindResource(name string) (io.ReadCloser, error) {
	file, err := f.fsys.Open(name + Ext)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s%s", ErrNotFound, name, Ext)
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Finders is a search path of resource finders, tried in order.
type Finders []ResourceFinder

// FindResource returns the resource from the first finder knowing name.
// Errors other than ErrNotFound end the search.
func (ff Finders) FindResource(name string) (io.ReadCloser, error) {
	for _, f := range ff {
		r, err := f.FindResource(name)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}
