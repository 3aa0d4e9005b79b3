package shortterm

import (
	"testing"
	"time"

	"github.com/becomeliminal/memtier/core"
)

func turn(user string) *core.ConversationTurn {
	return &core.ConversationTurn{UserInput: user, AgentResponse: "r", Timestamp: time.Now()}
}

func TestStore_FIFOOrder(t *testing.T) {
	s := New(5)
	s.Add(turn("first"))
	s.Add(turn("second"))
	s.Add(turn("third"))

	for _, want := range []string{"first", "second", "third"} {
		got, ok := s.PopOldest()
		if !ok {
			t.Fatalf("Expected a turn, buffer empty")
		}
		if got.UserInput != want {
			t.Errorf("Expected %q, got %q", want, got.UserInput)
		}
	}
	if _, ok := s.PopOldest(); ok {
		t.Error("Expected empty buffer after draining")
	}
}

func TestStore_IsFullAtCapacity(t *testing.T) {
	s := New(2)
	if s.IsFull() {
		t.Error("Empty buffer reported full")
	}
	s.Add(turn("a"))
	if s.IsFull() {
		t.Error("Buffer below capacity reported full")
	}
	s.Add(turn("b"))
	if !s.IsFull() {
		t.Error("Buffer at capacity not reported full")
	}
}

func TestStore_DrainWhileFullEmptiesExcess(t *testing.T) {
	s := New(2)
	s.Add(turn("a"))
	s.Add(turn("b"))
	s.Add(turn("c"))

	drained := 0
	for s.IsFull() {
		if _, ok := s.PopOldest(); !ok {
			break
		}
		drained++
	}
	if drained != 2 {
		t.Errorf("Expected 2 turns drained, got %d", drained)
	}
	if s.Len() != 1 {
		t.Errorf("Expected 1 turn left below capacity, got %d", s.Len())
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	s := New(0)
	if s.capacity != DefaultCapacity {
		t.Errorf("Expected default capacity %d, got %d", DefaultCapacity, s.capacity)
	}
}
