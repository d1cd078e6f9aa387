package engine

import (
	"sync"
	"time"
)

// modeEntry stores the working fetch mode for a domain with a TTL.
type modeEntry struct {
	mode      string
	expiresAt time.Time
}

// ModeMemory remembers which fetch mode worked for each domain, so auto mode
// can skip the HTTP attempt for domains known to need the browser. Entries
// expire after the configured TTL and are pruned periodically.
type ModeMemory struct {
	store sync.Map // domain (string) -> *modeEntry
	ttl   time.Duration
	done  chan struct{}
}

// NewModeMemory creates a ModeMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewModeMemory(ttl time.Duration) *ModeMemory {
	m := &ModeMemory{
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Get returns the remembered mode for a domain, or "" if unknown or expired.
func (m *ModeMemory) Get(domain string) string {
	val, ok := m.store.Load(domain)
	if !ok {
		return ""
	}
	entry := val.(*modeEntry)
	if time.Now().After(entry.expiresAt) {
		m.store.Delete(domain)
		return ""
	}
	return entry.mode
}

// Set records the fetch mode that succeeded for a domain.
func (m *ModeMemory) Set(domain, mode string) {
	m.store.Store(domain, &modeEntry{
		mode:      mode,
		expiresAt: time.Now().Add(m.ttl),
	})
}

// Delete removes the memory for a domain.
func (m *ModeMemory) Delete(domain string) {
	m.store.Delete(domain)
}

// Stop terminates the background cleanup goroutine.
func (m *ModeMemory) Stop() {
	close(m.done)
}

func (m *ModeMemory) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			now := time.Now()
			m.store.Range(func(key, value any) bool {
				entry := value.(*modeEntry)
				if now.After(entry.expiresAt) {
					m.store.Delete(key)
				}
				return true
			})
		}
	}
}
