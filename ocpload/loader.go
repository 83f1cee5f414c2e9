package ocpload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
)

// LoadError is returned if a program cannot be loaded.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("ocpload: cannot load OCP %q: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader loads programs through a resource finder and caches them by name.
// It is safe for concurrent use.
type Loader struct {
	finder ResourceFinder
	mu     sync.Mutex
	cache  map[string]*ocpcode.Program
}

// New creates a loader for the programs found by finder.
func New(finder ResourceFinder) *Loader {
	return &Loader{finder: finder, cache: make(map[string]*ocpcode.Program)}
}

// Load returns the program called name, loading it on first use.
func (l *Loader) Load(name string) (*ocpcode.Program, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.cache[name]; ok {
		return p, nil
	}
	r, err := l.finder.FindResource(name)
	if err != nil {
		tracer().Infof("OCP %s not found: %v", name, err)
		return nil, &LoadError{Name: name, Err: err}
	}
	defer r.Close()
	p, err := ocpcode.ReadProgram(name, r)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	tracer().Debugf("loaded OCP %s, %d words", name, p.Size())
	l.cache[name] = p
	return p, nil
}

// Define makes p known to the loader under its name, replacing a program
// loaded before.
func (l *Loader) Define(p *ocpcode.Program) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[p.Name()] = p
}

// Forget removes a program from the cache. It will be loaded again on next use.
func (l *Loader) Forget(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, name)
}

// Loaded returns the names of the programs loaded so far, sorted.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.cache))
	for name := range l.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadProgram loads a program from a file. Files with extension ".otp" are
// compiled, all others are read as compiled programs. The program is named
// after the file, without extension.
func LoadProgram(path string, opts ...ocpcomp.Option) (*ocpcode.Program, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if filepath.Ext(path) == ".otp" {
		p, err := ocpcomp.CompileFile(path, opts...)
		if err != nil {
			return nil, &LoadError{Name: name, Err: err}
		}
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	return ParseProgram(name, data)
}

// ParseProgram decodes a compiled program from memory.
func ParseProgram(name string, data []byte) (*ocpcode.Program, error) {
	p, err := ocpcode.Decode(name, data)
	if err != nil {
		return nil, &LoadError{Name: name, Err: err}
	}
	return p, nil
}
