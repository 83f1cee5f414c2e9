package ocpstore

import (
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/npillmayer/ocp/ocpload"
	"github.com/npillmayer/ocp/ocpvm"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
)

const rot13 = `
input: 1; output: 1;
tables: rot[2] = {13, -13};
expressions:
  @"61-@"6D => #(\1 + rot[0]);
  @"6E-@"7A => #(\1 + rot[1]);
`

// --- Test Suite Preparation ------------------------------------------------

type StoreTestEnviron struct {
	suite.Suite
	lib  *Library
	prog *ocpcode.Program
}

// listen for 'go test' command --> run test methods
func TestStoreFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.store")
	defer teardown()
	suite.Run(t, new(StoreTestEnviron))
}

// run once, before test suite methods
func (env *StoreTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	p, err := ocpcomp.Compile("rot13", rot13)
	env.Require().NoError(err)
	env.prog = p
}

// run before every test method
func (env *StoreTestEnviron) SetupTest() {
	lib, err := Open(filepath.Join(env.T().TempDir(), "ocp.db"))
	env.Require().NoError(err)
	env.lib = lib
}

func (env *StoreTestEnviron) TearDownTest() {
	env.NoError(env.lib.Close())
}

// run once, after test suite methods
func (env *StoreTestEnviron) TearDownSuite() {
	env.T().Log("Tearing down test suite")
}

// --- Tests -----------------------------------------------------------------

func (env *StoreTestEnviron) TestPutGet() {
	env.Require().NoError(env.lib.Put(env.prog, Info{Description: "rotate by 13", Source: rot13}))
	p, err := env.lib.Get("rot13")
	env.Require().NoError(err)
	env.Equal(env.prog.Code(), p.Code())
	env.Equal(env.prog.Table(0), p.Table(0))
	out, err := ocpvm.Translate(p, []rune("hello, ocp"))
	env.Require().NoError(err)
	env.Equal("uryyb, bpc", string(out))
}

func (env *StoreTestEnviron) TestInfo() {
	env.Require().NoError(env.lib.Put(env.prog, Info{Name: "ignored", Description: "rotate by 13"}))
	info, err := env.lib.Info("rot13")
	env.Require().NoError(err)
	env.Equal("rot13", info.Name)
	env.Equal("rotate by 13", info.Description)
	env.Equal(1, info.Input)
	env.Equal(1, info.Output)
	env.Equal(1, info.States)
	env.Equal(1, info.Tables)
	env.Equal(env.prog.Size(), info.Words)
	env.Empty(info.Source)
}

func (env *StoreTestEnviron) TestCanonicalInfo() {
	info := Describe(env.prog, Info{Description: "x"})
	a, err := marshalInfo(info)
	env.Require().NoError(err)
	b, err := marshalInfo(info)
	env.Require().NoError(err)
	env.Equal(a, b)
	back, err := unmarshalInfo(a)
	env.Require().NoError(err)
	env.Equal(info, back)
	_, err = unmarshalInfo([]byte{0xff, 0x00})
	env.Error(err)
}

func (env *StoreTestEnviron) TestReplaceAndDelete() {
	env.Require().NoError(env.lib.Put(env.prog, Info{Description: "first"}))
	env.Require().NoError(env.lib.Put(env.prog, Info{Description: "second"}))
	info, err := env.lib.Info("rot13")
	env.Require().NoError(err)
	env.Equal("second", info.Description)
	env.Require().NoError(env.lib.Put(env.prog.Renamed("other"), Info{}))
	names, err := env.lib.Names()
	env.Require().NoError(err)
	env.Equal([]string{"other", "rot13"}, names)
	env.Require().NoError(env.lib.Delete("rot13"))
	names, err = env.lib.Names()
	env.Require().NoError(err)
	env.Equal([]string{"other"}, names)
	err = env.lib.Delete("rot13")
	env.True(errors.Is(err, ErrNotFound))
}

func (env *StoreTestEnviron) TestNotFound() {
	_, err := env.lib.Get("none")
	env.True(errors.Is(err, ErrNotFound))
	env.True(errors.Is(err, ocpload.ErrNotFound))
	_, err = env.lib.Info("none")
	env.True(errors.Is(err, ErrNotFound))
	env.Error(env.lib.Put(env.prog.Renamed(""), Info{}))
}

func (env *StoreTestEnviron) TestAsResourceFinder() {
	env.Require().NoError(env.lib.Put(env.prog, Info{}))
	r, err := env.lib.FindResource("rot13")
	env.Require().NoError(err)
	data, err := io.ReadAll(r)
	env.Require().NoError(err)
	env.NoError(r.Close())
	env.Equal(ocpcode.Encode(env.prog), data)
	//
	loader := ocpload.New(ocpload.Finders{env.lib})
	p, err := loader.Load("rot13")
	env.Require().NoError(err)
	env.Equal(env.prog.Code(), p.Code())
	_, err = loader.Load("none")
	env.True(errors.Is(err, ocpload.ErrNotFound))
}

func (env *StoreTestEnviron) TestPersistence() {
	path := filepath.Join(env.T().TempDir(), "persist.db")
	lib, err := Open(path)
	env.Require().NoError(err)
	env.Require().NoError(lib.Put(env.prog, Info{}))
	env.Require().NoError(lib.Close())
	lib, err = Open(path)
	env.Require().NoError(err)
	defer lib.Close()
	names, err := lib.Names()
	env.Require().NoError(err)
	env.Equal([]string{"rot13"}, names)
}

func (env *StoreTestEnviron) TestInMemory() {
	lib, err := Open(":memory:")
	env.Require().NoError(err)
	defer lib.Close()
	env.Require().NoError(lib.Put(env.prog, Info{}))
	_, err = lib.Get("rot13")
	env.NoError(err)
}
