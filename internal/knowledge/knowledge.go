// Package knowledge persists review experience: short summaries and expert
// notes keyed by report, used to prime later reviews.
package knowledge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the entry timestamp layout. Values sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// ErrEmptyKey is returned when saving an entry without a key.
var ErrEmptyKey = errors.New("experience key is empty")

// Entry is one saved review experience.
type Entry struct {
	Summary    string `json:"summary"`
	ExpertNote string `json:"expert_note"`
	Timestamp  string `json:"timestamp"`
}

// Entries maps experience keys to entries.
type Entries map[string]Entry

// Store loads and saves the whole knowledge base.
type Store interface {
	Load() (Entries, error)
	Save(Entries) error
}

// Updater is a Store that applies a read-modify-write as one step, so
// concurrent writers never drop each other's entries.
type Updater interface {
	Update(fn func(Entries) error) error
}

// Keyed is an entry with its key.
type Keyed struct {
	Key string `json:"key"`
	Entry
}

// Clock is replaceable in tests.
var Clock = time.Now

// NewKey returns a generated experience key.
func NewKey() string {
	return "Review_" + uuid.NewString()
}

func validate(e Entries) error {
	if _, ok := e[""]; ok {
		return ErrEmptyKey
	}
	return nil
}

// Put stores summary and note under key, replacing any previous entry, and
// returns the key used and the new total. An empty key is generated.
func Put(s Store, key, summary, note string) (string, int, error) {
	if strings.TrimSpace(key) == "" {
		key = NewKey()
	}
	e := Entry{
		Summary:    summary,
		ExpertNote: note,
		Timestamp:  Clock().Format(TimestampLayout),
	}
	var total int
	put := func(entries Entries) error {
		entries[key] = e
		total = len(entries)
		return nil
	}
	if err := update(s, put); err != nil {
		return "", 0, err
	}
	return key, total, nil
}

// putMu serializes Put on stores without their own Update.
var putMu sync.Mutex

func update(s Store, fn func(Entries) error) error {
	if u, ok := s.(Updater); ok {
		if err := u.Update(fn); err != nil {
			return fmt.Errorf("update experience: %w", err)
		}
		return nil
	}
	putMu.Lock()
	defer putMu.Unlock()
	entries, err := s.Load()
	if err != nil {
		return fmt.Errorf("load experience: %w", err)
	}
	if entries == nil {
		entries = Entries{}
	}
	if err := fn(entries); err != nil {
		return err
	}
	if err := s.Save(entries); err != nil {
		return fmt.Errorf("save experience: %w", err)
	}
	return nil
}

// Search returns the entries whose key or any field contains keyword,
// case-insensitively. An empty keyword returns all entries.
func Search(entries Entries, keyword string) Entries {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	out := Entries{}
	for k, e := range entries {
		if kw == "" || matches(k, e, kw) {
			out[k] = e
		}
	}
	return out
}

func matches(key string, e Entry, kw string) bool {
	for _, s := range []string{key, e.Summary, e.ExpertNote, e.Timestamp} {
		if strings.Contains(strings.ToLower(s), kw) {
			return true
		}
	}
	return false
}

// Sorted returns entries oldest first, ties broken by key.
func Sorted(entries Entries) []Keyed {
	out := make([]Keyed, 0, len(entries))
	for k, e := range entries {
		out = append(out, Keyed{Key: k, Entry: e})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Recent returns at most n of the newest entries, oldest of them first.
func Recent(entries Entries, n int) []Keyed {
	all := Sorted(entries)
	if n < 0 {
		n = 0
	}
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}
