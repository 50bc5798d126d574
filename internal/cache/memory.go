package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Memory is a bounded in-process cache. When full, the oldest entry is
// evicted. Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	max     int
	entries map[string]*list.Element
	order   *list.List // front = oldest
	now     func() time.Time
}

type memEntry struct {
	key     string
	val     []byte
	expires time.Time
}

// NewMemory returns a cache holding at most maxEntries (minimum 1).
func NewMemory(maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Memory{max: maxEntries, entries: map[string]*list.Element{}, order: list.New(), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	e := el.Value.(*memEntry)
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.remove(el)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set stores val. A ttl <= 0 never expires.
func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = m.now().Add(ttl)
	}
	if el, ok := m.entries[key]; ok {
		m.remove(el)
	}
	for m.order.Len() >= m.max {
		m.remove(m.order.Front())
	}
	m.entries[key] = m.order.PushBack(&memEntry{key: key, val: val, expires: expires})
	return nil
}

func (m *Memory) Purge(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string]*list.Element{}
	m.order.Init()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet collected.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory) Close() error { return nil }

func (m *Memory) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.entries, el.Value.(*memEntry).key)
}
