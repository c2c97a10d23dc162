package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/sitesafe-learn/internal/model"
)

// MemoryMountStore is a process-local mount store for single-instance
// development without Redis. Expired mounts are dropped on access or by Sweep.
type MemoryMountStore struct {
	mu     sync.Mutex
	now    func() time.Time
	mounts map[uuid.UUID]*memoryMount
}

type memoryMount struct {
	checks    map[string]int
	quiz      map[string]int
	expiresAt time.Time
}

// NewMemoryMountStore creates an empty MemoryMountStore.
func NewMemoryMountStore() *MemoryMountStore {
	return &MemoryMountStore{
		now:    time.Now,
		mounts: make(map[uuid.UUID]*memoryMount),
	}
}

// Load returns a copy of the mount snapshot.
func (s *MemoryMountStore) Load(_ context.Context, mountID uuid.UUID) (*model.MountSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &model.MountSnapshot{Checks: map[string]int{}, Quiz: map[string]int{}}
	m := s.live(mountID)
	if m == nil {
		return snap, nil
	}
	for k, v := range m.checks {
		snap.Checks[k] = v
	}
	for k, v := range m.quiz {
		snap.Quiz[k] = v
	}
	return snap, nil
}

// SaveCheck records the selected option of one inline check.
func (s *MemoryMountStore) SaveCheck(_ context.Context, mountID uuid.UUID, sectionID string, option int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.touch(mountID, ttl)
	m.checks[sectionID] = option
	return nil
}

// SaveQuizAnswer records the selected option of one quiz question.
func (s *MemoryMountStore) SaveQuizAnswer(_ context.Context, mountID uuid.UUID, questionID string, option int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.touch(mountID, ttl)
	m.quiz[questionID] = option
	return nil
}

// ClearQuiz drops every quiz answer of the mount.
func (s *MemoryMountStore) ClearQuiz(_ context.Context, mountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m := s.live(mountID); m != nil {
		m.quiz = make(map[string]int)
	}
	return nil
}

// Delete discards all state of the mount.
func (s *MemoryMountStore) Delete(_ context.Context, mountID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.mounts, mountID)
	return nil
}

// Len returns the number of unexpired mounts holding state.
func (s *MemoryMountStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id := range s.mounts {
		if s.live(id) != nil {
			n++
		}
	}
	return n
}

// Sweep drops every expired mount and returns how many were removed.
func (s *MemoryMountStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id := range s.mounts {
		if s.live(id) == nil {
			n++
		}
	}
	return n
}

// live returns the mount if present and unexpired. Caller holds mu.
func (s *MemoryMountStore) live(id uuid.UUID) *memoryMount {
	m, ok := s.mounts[id]
	if !ok {
		return nil
	}
	if !s.now().Before(m.expiresAt) {
		delete(s.mounts, id)
		return nil
	}
	return m
}

// touch returns the mount, creating it if needed, and extends its expiry.
// Caller holds mu.
func (s *MemoryMountStore) touch(id uuid.UUID, ttl time.Duration) *memoryMount {
	m := s.live(id)
	if m == nil {
		m = &memoryMount{checks: make(map[string]int), quiz: make(map[string]int)}
		s.mounts[id] = m
	}
	m.expiresAt = s.now().Add(ttl)
	return m
}
