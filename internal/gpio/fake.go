package gpio

import (
	"sync"
	"time"
)

// Transition records one output line change.
type Transition struct {
	Line string
	On   bool
	At   time.Time
}

// FakeBoard is a test double that records output transitions and fires
// synthetic button edges. Safe for concurrent use; blink channels drive
// lines from independent goroutines.
type FakeBoard struct {
	mu          sync.Mutex
	states      map[string]bool
	transitions []Transition
	onEdge      EdgeHandler

	// Closed tracks if Close was called.
	Closed bool

	// Stamp supplies transition timestamps; defaults to time.Now.
	Stamp func() time.Time
}

// NewFakeBoard creates a FakeBoard delivering button edges to onEdge
// (may be nil).
func NewFakeBoard(onEdge EdgeHandler) *FakeBoard {
	return &FakeBoard{
		states: make(map[string]bool),
		onEdge: onEdge,
		Stamp:  time.Now,
	}
}

// Line returns a recording line for the given name.
func (b *FakeBoard) Line(name string) Line {
	return fakeLine{board: b, name: name}
}

// PressButton fires a synthetic button edge observed at t.
func (b *FakeBoard) PressButton(t time.Time) {
	b.mu.Lock()
	handler := b.onEdge
	b.mu.Unlock()
	if handler != nil {
		handler(t)
	}
}

// State returns the current level of the named line.
func (b *FakeBoard) State(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[name]
}

// Transitions returns a copy of all recorded transitions.
func (b *FakeBoard) Transitions() []Transition {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Transition, len(b.transitions))
	copy(out, b.transitions)
	return out
}

// TransitionCount returns how many times the named line changed level.
func (b *FakeBoard) TransitionCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, tr := range b.transitions {
		if tr.Line == name {
			n++
		}
	}
	return n
}

// Close marks the board as closed.
func (b *FakeBoard) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return nil
}

type fakeLine struct {
	board *FakeBoard
	name  string
}

func (l fakeLine) Set(on bool) error {
	b := l.board
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.states[l.name] == on {
		return nil
	}
	b.states[l.name] = on
	b.transitions = append(b.transitions, Transition{Line: l.name, On: on, At: b.Stamp()})
	return nil
}
