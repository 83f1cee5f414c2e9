package ocpcode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// ErrTableRedefined is returned when a table name is registered twice.
var ErrTableRedefined = errors.New("ocp: table already defined")

// TableRegistry maps symbolic table names to small integer ids and holds the
// constant arrays backing them. Ids are assigned in order of definition,
// starting at 0. The registry is consulted by the expression compiler to
// resolve table references, and copied into a Program when it is finalized.
type TableRegistry struct {
	ids    map[string]int
	names  []string
	tables [][]int
}

// NewTableRegistry creates an empty table registry.
func NewTableRegistry() *TableRegistry {
	return &TableRegistry{ids: make(map[string]int)}
}

// Define registers a table under name and returns its id. The values are
// copied.
func (reg *TableRegistry) Define(name string, values []int) (int, error) {
	if name == "" {
		return -1, fmt.Errorf("ocp: empty table name")
	}
	if _, exists := reg.ids[name]; exists {
		return -1, fmt.Errorf("%w: %s", ErrTableRedefined, name)
	}
	id := len(reg.tables)
	reg.ids[name] = id
	reg.names = append(reg.names, name)
	reg.tables = append(reg.tables, append([]int(nil), values...))
	tracer().Debugf("table %s defined with id %d and %d entries", name, id, len(values))
	return id, nil
}

// Lookup returns the id of the table registered under name.
func (reg *TableRegistry) Lookup(name string) (int, bool) {
	if reg == nil {
		return -1, false
	}
	id, ok := reg.ids[name]
	return id, ok
}

// Len returns the number of registered tables.
func (reg *TableRegistry) Len() int {
	if reg == nil {
		return 0
	}
	return len(reg.tables)
}

// Name returns the name of the table with the given id.
func (reg *TableRegistry) Name(id int) string {
	if reg == nil || id < 0 || id >= len(reg.names) {
		return ""
	}
	return reg.names[id]
}

// Table returns the values of the table with the given id. Clients must not
// modify the returned slice.
func (reg *TableRegistry) Table(id int) []int {
	if reg == nil || id < 0 || id >= len(reg.tables) {
		return nil
	}
	return reg.tables[id]
}

// Names returns the table names in order of their ids.
func (reg *TableRegistry) Names() []string {
	if reg == nil {
		return nil
	}
	return append([]string(nil), reg.names...)
}

// --- Configuration files ---------------------------------------------------

type tableEntry struct {
	Values []int `toml:"values"`
}

type tablesFile struct {
	Tables map[string]tableEntry `toml:"tables"`
}

// LoadTablesTOML reads table definitions from TOML input and registers them
// with reg, in the order they appear in the input. The format is
//
//	[tables.upper]
//	values = [0x41, 0x42, 0x43]
func LoadTablesTOML(r io.Reader, reg *TableRegistry) error {
	var f tablesFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return fmt.Errorf("ocp: decoding table definitions: %w", err)
	}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "tables" {
			continue
		}
		entry, ok := f.Tables[key[1]]
		if !ok {
			continue
		}
		if _, err := reg.Define(key[1], entry.Values); err != nil {
			return err
		}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		tracer().Infof("ignoring unknown keys in table definitions: %v", undecoded)
	}
	return nil
}

// LoadTablesFile reads table definitions from a TOML file.
func LoadTablesFile(path string, reg *TableRegistry) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return LoadTablesTOML(f, reg)
}
