package state

import (
	"sync"
	"testing"
)

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	s := NewMemory()
	a := Key{ChatID: 1, UserID: 1}
	b := Key{ChatID: 2, UserID: 2}

	s.SetState(a, "join.name")
	s.UpdateData(a, Data{"name": "иван иванов"})
	if got := s.State(b); got != StateIdle {
		t.Fatalf("state of b = %q", got)
	}
	if len(s.Data(b)) != 0 {
		t.Fatalf("data leaked into b: %v", s.Data(b))
	}
	if !InProgress(s, a) || InProgress(s, b) {
		t.Fatal("InProgress mismatch")
	}
}

func TestMemoryStoreMergeDeleteClear(t *testing.T) {
	s := NewMemory()
	k := Key{ChatID: 10, UserID: 10}
	s.UpdateData(k, Data{"name": "a", "callsign": "b"})
	s.UpdateData(k, Data{"callsign": "c"})

	got := s.Data(k)
	if got["name"] != "a" || got["callsign"] != "c" {
		t.Fatalf("merge result %v", got)
	}
	got["name"] = "mutated"
	if s.Data(k)["name"] != "a" {
		t.Fatal("Data must return a copy")
	}

	s.SetState(k, "join.car")
	s.Delete(k, "callsign")
	if _, ok := s.Data(k)["callsign"]; ok {
		t.Fatal("callsign not deleted")
	}
	if s.State(k) != "join.car" {
		t.Fatal("Delete must keep state")
	}

	s.Clear(k)
	if s.State(k) != StateIdle || len(s.Data(k)) != 0 {
		t.Fatal("Clear left state behind")
	}
}

func TestMemoryStoreLockSerialises(t *testing.T) {
	s := NewMemory()
	k := Key{ChatID: 5, UserID: 5}
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(k)
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d", counter)
	}
}

func TestStateFlow(t *testing.T) {
	tests := map[State]string{
		"join.callsign": "join",
		"edit.age":      "edit",
		"event":         "event",
		StateIdle:       "",
	}
	for st, want := range tests {
		if got := st.Flow(); got != want {
			t.Errorf("%q.Flow() = %q, want %q", st, got, want)
		}
	}
}
