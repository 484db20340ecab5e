package state

import "sync"

type session struct {
	state State
	data  Data
}

type memoryStore struct {
	mu       sync.Mutex
	sessions map[Key]*session
	locks    sync.Map // Key -> *sync.Mutex
}

// NewMemory returns a process-local Store.
func NewMemory() Store {
	return &memoryStore{sessions: make(map[Key]*session)}
}

func (m *memoryStore) get(k Key) *session {
	s, ok := m.sessions[k]
	if !ok {
		s = &session{data: Data{}}
		m.sessions[k] = s
	}
	return s
}

func (m *memoryStore) SetState(k Key, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(k).state = st
}

func (m *memoryStore) State(k Key) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[k]; ok {
		return s.state
	}
	return StateIdle
}

func (m *memoryStore) UpdateData(k Key, fields Data) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(k)
	for name, v := range fields {
		s.data[name] = v
	}
}

func (m *memoryStore) Data(k Key) Data {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Data{}
	if s, ok := m.sessions[k]; ok {
		for name, v := range s.data {
			out[name] = v
		}
	}
	return out
}

func (m *memoryStore) Delete(k Key, fields ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[k]; ok {
		for _, name := range fields {
			delete(s.data, name)
		}
	}
}

func (m *memoryStore) Clear(k Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, k)
}

// Lock hands out one mutex per session. Mutexes are kept for the process
// lifetime; the set of sessions is bounded by the team size.
func (m *memoryStore) Lock(k Key) func() {
	v, _ := m.locks.LoadOrStore(k, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
