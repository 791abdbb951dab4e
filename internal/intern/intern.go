// Package intern implements the process-wide interned string table.
//
// Two interned strings are equal iff their handles are equal: the table
// hash-conses byte sequences so the VM and compiler never need to
// compare string contents byte-by-byte once a string has been interned.
//
// The table is not safe for concurrent use. The language this module
// implements runs single-threaded (spec §5); a multi-threaded port
// would need a lock or a lock-free hash here.
package intern

// Handle is an opaque reference into a Table. Two handles compare equal
// iff they name the same canonical string.
type Handle int32

// Table is a hash-consed, immutable string store. It lives for the
// lifetime of the VM process: nothing ever evicts an entry.
type Table struct {
	strings []string
	index   map[string]Handle
}

// New returns an empty intern table.
func New() *Table {
	return &Table{index: make(map[string]Handle)}
}

// Intern returns the canonical handle for s, adding s to the table if
// this is the first time it has been seen.
func (t *Table) Intern(s string) Handle {
	if h, ok := t.index[s]; ok {
		return h
	}
	h := Handle(len(t.strings))
	t.strings = append(t.strings, s)
	t.index[s] = h
	return h
}

// Lookup returns the canonical string named by h. It panics if h was
// never returned by Intern on this table — that would be a compiler or
// VM bug, not a recoverable condition.
func (t *Table) Lookup(h Handle) string {
	return t.strings[h]
}

// Len reports how many distinct strings have been interned.
func (t *Table) Len() int {
	return len(t.strings)
}
