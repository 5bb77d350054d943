package bundle

import "iter"

// Module is one extracted module.
type Module struct {
	Key     string // sanitized name, used as the file name stem
	RawName string // name as it appeared in the bundle
	Source  string // regenerated, normalized source
	Line    int    // one-based line of the entry in the bundle
}

// Collision records an entry that overwrote an earlier one whose raw name
// sanitized to the same key.
type Collision struct {
	Key      string
	Replaced string // raw name of the overwritten entry
	By       string // raw name of the entry that won
}

// ModuleTable maps sanitized keys to modules. Iteration follows the order in
// which keys were first inserted; overwriting a key keeps its position.
type ModuleTable struct {
	order      []string
	modules    map[string]Module
	collisions []Collision
}

// NewModuleTable returns an empty table.
func NewModuleTable() *ModuleTable {
	return &ModuleTable{modules: make(map[string]Module)}
}

// Put inserts m under m.Key. A module already stored under the key is
// overwritten and the collision recorded; Put reports whether that happened.
func (t *ModuleTable) Put(m Module) bool {
	prev, exists := t.modules[m.Key]
	if !exists {
		t.order = append(t.order, m.Key)
	} else {
		t.collisions = append(t.collisions, Collision{Key: m.Key, Replaced: prev.RawName, By: m.RawName})
	}
	t.modules[m.Key] = m
	return exists
}

// Get returns the module stored under key.
func (t *ModuleTable) Get(key string) (Module, bool) {
	m, ok := t.modules[key]
	return m, ok
}

// Len returns the number of distinct keys.
func (t *ModuleTable) Len() int {
	return len(t.order)
}

// Keys returns the keys in iteration order.
func (t *ModuleTable) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// All iterates the table in key order.
func (t *ModuleTable) All() iter.Seq2[string, Module] {
	return func(yield func(string, Module) bool) {
		for _, k := range t.order {
			if !yield(k, t.modules[k]) {
				return
			}
		}
	}
}

// Collisions returns the overwrites recorded so far, oldest first.
func (t *ModuleTable) Collisions() []Collision {
	out := make([]Collision, len(t.collisions))
	copy(out, t.collisions)
	return out
}
