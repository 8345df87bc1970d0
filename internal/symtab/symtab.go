// Package symtab implements the compiler's string interning and symbol
// table: a hash map from interned string to a small linked list of typed
// items, one per type tag. It sits beside the scanner the way the teacher's
// AST node pool sits beside its parser — a single per-compile arena with no
// shared mutable state across compiles.
package symtab

// Type tags a SymItem may be filed under. One interned string can carry at
// most one item per tag.
type Type int

const (
	TypeVariable Type = iota
	TypeWave
	TypeNoise
	TypeLineShape
	TypeMathFunc
	TypeLabel
)

func (t Type) String() string {
	switch t {
	case TypeVariable:
		return "variable"
	case TypeWave:
		return "wave"
	case TypeNoise:
		return "noise"
	case TypeLineShape:
		return "line-shape"
	case TypeMathFunc:
		return "math-func"
	case TypeLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Payload is one of Number, ObjectRef, or NameID — exactly one is
// meaningful, selected by the owning SymItem's Type.
type Payload struct {
	Number    float64
	ObjectRef interface{}
	NameID    uint32
}

// SymItem is one (interned key, type tag) entry.
type SymItem struct {
	Key     string
	Type    Type
	Payload Payload
	next    *SymItem // next item for the same key, different type
}

// Table interns strings and indexes SymItems by (string, type).
type Table struct {
	interned map[string]string
	items    map[string]*SymItem // keyed by interned string; list threaded by SymItem.next
}

// New creates an empty table, sized for typical script scope counts.
func New() *Table {
	return &Table{
		interned: make(map[string]string, 64),
		items:    make(map[string]*SymItem, 64),
	}
}

// Intern returns the canonical, stably-identical copy of s for the lifetime
// of the table. Two calls with equal content return the same Go string
// value (same underlying backing array), which is what lets callers treat
// interned keys as cheap comparable handles.
func (t *Table) Intern(s string) string {
	if v, ok := t.interned[s]; ok {
		return v
	}
	// Copy so later callers can't keep mutating backing arrays behind our
	// back if s came from a reused scratch buffer.
	cp := string([]byte(s))
	t.interned[cp] = cp
	return cp
}

// Lookup finds the item for (key, typ). For TypeVariable, a missing item is
// lazily created and returned; for every other type, a missing item yields
// (nil, false).
func (t *Table) Lookup(key string, typ Type) (*SymItem, bool) {
	key = t.Intern(key)
	for item := t.items[key]; item != nil; item = item.next {
		if item.Type == typ {
			return item, true
		}
	}
	if typ != TypeVariable {
		return nil, false
	}
	item := &SymItem{Key: key, Type: typ, next: t.items[key]}
	t.items[key] = item
	return item, false
}

// Insert files value under (key, typ), replacing any existing item of that
// type for the same key. Returns the new item.
func (t *Table) Insert(key string, typ Type, payload Payload) *SymItem {
	key = t.Intern(key)
	head := t.items[key]
	// Remove any existing item with the same type so Insert acts as an
	// upsert, not an append.
	var kept *SymItem
	for n := head; n != nil; {
		next := n.next
		if n.Type != typ {
			n.next = kept
			kept = n
		}
		n = next
	}
	item := &SymItem{Key: key, Type: typ, Payload: payload, next: kept}
	t.items[key] = item
	return item
}

// BulkEntry is one row of a bulk-registration triple: name, type tag, id.
// Used to register the runtime's wave/noise/line-shape/math-function name
// tables once per compile, before any scanning happens.
type BulkEntry struct {
	Name string
	Type Type
	ID   uint32
}

// BulkInsert registers many (name, type, id) triples at once, each becoming
// a NameID-payload item. Later entries for the same (name, type) win.
func (t *Table) BulkInsert(entries []BulkEntry) {
	for _, e := range entries {
		t.Insert(e.Name, e.Type, Payload{NameID: e.ID})
	}
}
