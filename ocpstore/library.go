package ocpstore

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpload"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for programs not in a library. It wraps
// ocpload.ErrNotFound, so loaders continue their search with other finders.
var ErrNotFound = fmt.Errorf("ocpstore: %w", ocpload.ErrNotFound)

// Library is a collection of programs stored in an SQLite database.
type Library struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

var _ ocpload.ResourceFinder = (*Library)(nil)

// Open opens the library in database file path, creating it if necessary.
// Path ":memory:" opens a library living in memory only.
func Open(path string) (*Library, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ocpstore: opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // an in-memory database exists per connection
	if _, err = db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("ocpstore: setting busy timeout: %w", err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		name TEXT PRIMARY KEY,
		code BLOB NOT NULL,
		info BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ocpstore: creating table: %w", err)
	}
	tracer().Debugf("opened OCP library %s", path)
	return &Library{db: db, path: path}, nil
}

// Close closes the database.
func (lib *Library) Close() error {
	if lib.db != nil {
		return lib.db.Close()
	}
	return nil
}

// Put stores program p under its name, replacing a program of the same name.
// The fields of info derived from p are filled in from p.
func (lib *Library) Put(p *ocpcode.Program, info Info) error {
	if p.Name() == "" {
		return errors.New("ocpstore: cannot store anonymous program")
	}
	sidecar, err := marshalInfo(Describe(p, info))
	if err != nil {
		return err
	}
	lib.mu.Lock()
	defer lib.mu.Unlock()
	_, err = lib.db.Exec("INSERT OR REPLACE INTO programs (name, code, info) VALUES (?, ?, ?)",
		p.Name(), ocpcode.Encode(p), sidecar)
	if err != nil {
		return fmt.Errorf("ocpstore: storing %s: %w", p.Name(), err)
	}
	tracer().Infof("stored OCP %s in %s", p.Name(), lib.path)
	return nil
}

// Get returns the program called name.
func (lib *Library) Get(name string) (*ocpcode.Program, error) {
	code, err := lib.column("code", name)
	if err != nil {
		return nil, err
	}
	return ocpcode.Decode(name, code)
}

// Info returns the description of the program called name.
func (lib *Library) Info(name string) (Info, error) {
	data, err := lib.column("info", name)
	if err != nil {
		return Info{}, err
	}
	return unmarshalInfo(data)
}

// FindResource returns the binary representation of the program called name.
func (lib *Library) FindResource(name string) (io.ReadCloser, error) {
	code, err := lib.column("code", name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(code)), nil
}

// Delete removes the program called name.
func (lib *Library) Delete(name string) error {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	res, err := lib.db.Exec("DELETE FROM programs WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("ocpstore: deleting %s: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// Names returns the names of all programs in the library, sorted.
func (lib *Library) Names() ([]string, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	rows, err := lib.db.Query("SELECT name FROM programs ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("ocpstore: listing programs: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ocpstore: listing programs: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (lib *Library) column(col, name string) ([]byte, error) {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	var data []byte
	err := lib.db.QueryRow("SELECT "+col+" FROM programs WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("ocpstore: querying %s: %w", name, err)
	}
	return data, nil
}
