package config

import (
	"fmt"

	"eightd/internal/knowledge"
)

// OpenKnowledge opens the configured experience store. The returned close
// function is never nil.
func (c *Config) OpenKnowledge() (knowledge.Store, func() error, error) {
	noop := func() error { return nil }
	switch c.Knowledge.Backend {
	case BackendFile:
		return knowledge.NewFileStore(c.KnowledgePath()), noop, nil
	case BackendSQLite:
		s, err := knowledge.OpenSQL(c.KnowledgePath())
		if err != nil {
			return nil, noop, fmt.Errorf("open knowledge: %w", err)
		}
		return s, s.Close, nil
	case BackendMemory:
		return knowledge.NewMemStore(), noop, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Knowledge.Backend)
}
