package ocp

import (
	"errors"
	"fmt"
	"sync"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/npillmayer/ocp/ocplist"
	"github.com/npillmayer/ocp/ocpload"
)

// Compile compiles an OCP source and names the program.
func Compile(name, source string) (*ocpcode.Program, error) {
	return ocpcomp.Compile(name, source)
}

// Transform applies a list of programs to text.
//
// If text is empty, it does nothing.
func Transform(l ocplist.List, text string, opts ...ocplist.ApplyOption) (string, error) {
	if text == "" {
		return "", nil
	}
	out, err := l.Apply([]rune(text), opts...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// TransformWith applies programs to text, one after the other.
func TransformWith(text string, progs ...*ocpcode.Program) (string, error) {
	l := ocplist.Null
	for i := len(progs) - 1; i >= 0; i-- {
		l = l.Prepend(progs[i])
	}
	return Transform(l, text)
}

// ErrNoList is returned for names not bound to an OCP list.
var ErrNoList = errors.New("ocp: no such OCP list")

// Env is a set of definitions of programs and lists, plus the stack of
// lists currently active. Definitions of lists are replaced as a whole when
// a name is defined again. An Env is safe for concurrent use.
type Env struct {
	loader *ocpload.Loader
	mu     sync.RWMutex
	lists  map[string]ocplist.List
	active []ocplist.List
}

// NewEnv creates an environment loading programs through finder.
func NewEnv(finder ocpload.ResourceFinder) *Env {
	return &Env{
		loader: ocpload.New(finder),
		lists:  make(map[string]ocplist.List),
	}
}

// DefineOCP binds name to the program loaded from resource.
func (env *Env) DefineOCP(name, resource string) (*ocpcode.Program, error) {
	p, err := env.loader.Load(resource)
	if err != nil {
		return nil, err
	}
	if name != resource {
		p = p.Renamed(name)
		env.loader.Define(p)
	}
	tracer().Debugf("\\ocp\\%s=%s", name, resource)
	return p, nil
}

// Define binds a program to its name.
func (env *Env) Define(p *ocpcode.Program) {
	env.loader.Define(p)
}

// OCP returns the program bound to name, loading it if necessary.
func (env *Env) OCP(name string) (*ocpcode.Program, error) {
	return env.loader.Load(name)
}

// DefineList binds name to the list built from a chain of list commands,
// see ocplist.ParseChain. Programs are looked up by name in env.
func (env *Env) DefineList(name, chain string) (ocplist.List, error) {
	l, err := ocplist.Parse(chain, env.loader)
	if err != nil {
		return ocplist.Null, fmt.Errorf("ocp: defining list %s: %w", name, err)
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	env.lists[name] = l
	tracer().Debugf("\\ocplist\\%s=%s", name, l)
	return l, nil
}

// List returns the list bound to name.
func (env *Env) List(name string) (ocplist.List, error) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	l, ok := env.lists[name]
	if !ok {
		return ocplist.Null, fmt.Errorf("%w: %s", ErrNoList, name)
	}
	return l, nil
}

// Push makes the list bound to name the active one.
func (env *Env) Push(name string) error {
	l, err := env.List(name)
	if err != nil {
		return err
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	env.active = append(env.active, l)
	return nil
}

// Pop deactivates the list activated last. It returns false if no list is
// active.
func (env *Env) Pop() bool {
	env.mu.Lock()
	defer env.mu.Unlock()
	if len(env.active) == 0 {
		return false
	}
	env.active = env.active[:len(env.active)-1]
	return true
}

// Clear deactivates all lists.
func (env *Env) Clear() {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.active = nil
}

// Active returns the active list, which is the empty list if none is active.
func (env *Env) Active() ocplist.List {
	env.mu.RLock()
	defer env.mu.RUnlock()
	if len(env.active) == 0 {
		return ocplist.Null
	}
	return env.active[len(env.active)-1]
}

// Transform applies the active list to text.
func (env *Env) Transform(text string, opts ...ocplist.ApplyOption) (string, error) {
	return Transform(env.Active(), text, opts...)
}
