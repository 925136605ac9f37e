package knowledge

import "sync"

// MemStore is an in-memory Store.
type MemStore struct {
	mu      sync.Mutex
	entries Entries
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{entries: Entries{}}
}

func (m *MemStore) Load() (Entries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.entries), nil
}

func (m *MemStore) Save(e Entries) error {
	if err := validate(e); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = clone(e)
	return nil
}

func (m *MemStore) Update(fn func(Entries) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := clone(m.entries)
	if err := fn(e); err != nil {
		return err
	}
	if err := validate(e); err != nil {
		return err
	}
	m.entries = e
	return nil
}

func clone(e Entries) Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
