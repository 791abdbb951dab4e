package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"wisp/internal/intern"
	"wisp/internal/value"
)

// SQLiteStore persists globals to a single-table sqlite database,
// keyed by variable name. Numbers and bools round-trip as native
// sqlite columns; strings round-trip through the shared intern table
// so a handle loaded in a later process still points at the right
// table entry.
type SQLiteStore struct {
	db   *sql.DB
	strs *intern.Table
}

// OpenSQLite opens (creating if necessary) a sqlite database at path
// and ensures the globals table exists.
func OpenSQLite(path string, strs *intern.Table) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS globals (
	name TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	num  REAL,
	str  TEXT,
	bool INTEGER
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating globals table: %w", err)
	}
	return &SQLiteStore{db: db, strs: strs}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(name string) (value.Value, bool, error) {
	row := s.db.QueryRow(`SELECT kind, num, str, bool FROM globals WHERE name = ?`, name)

	var kind string
	var num sql.NullFloat64
	var str sql.NullString
	var boolInt sql.NullInt64
	if err := row.Scan(&kind, &num, &str, &boolInt); err != nil {
		if err == sql.ErrNoRows {
			return value.Value{}, false, nil
		}
		return value.Value{}, false, fmt.Errorf("loading global %q: %w", name, err)
	}

	switch kind {
	case "nil":
		return value.NilValue, true, nil
	case "bool":
		return value.NewBool(boolInt.Int64 != 0), true, nil
	case "number":
		return value.NewNumber(num.Float64), true, nil
	case "string":
		return value.NewString(s.strs.Intern(str.String)), true, nil
	default:
		return value.Value{}, false, fmt.Errorf("loading global %q: unknown stored kind %q", name, kind)
	}
}

func (s *SQLiteStore) Store(name string, v value.Value) error {
	var kind string
	var num sql.NullFloat64
	var str sql.NullString
	var boolInt sql.NullInt64

	switch v.Type {
	case value.Nil:
		kind = "nil"
	case value.Bool:
		kind = "bool"
		boolInt = sql.NullInt64{Int64: boolToInt(v.Bool), Valid: true}
	case value.Number:
		kind = "number"
		num = sql.NullFloat64{Float64: v.Number, Valid: true}
	case value.String:
		kind = "string"
		str = sql.NullString{String: s.strs.Lookup(v.Str), Valid: true}
	default:
		return fmt.Errorf("storing global %q: unsupported value type %s", name, v.Type)
	}

	_, err := s.db.Exec(`
INSERT INTO globals (name, kind, num, str, bool) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET kind = excluded.kind, num = excluded.num, str = excluded.str, bool = excluded.bool
`, name, kind, num, str, boolInt)
	if err != nil {
		return fmt.Errorf("storing global %q: %w", name, err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
