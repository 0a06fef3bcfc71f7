package modal

import "sync"

// Kind identifies which modal an intent opens
type Kind string

const (
	KindAuth    Kind = "auth"
	KindBooking Kind = "booking"
)

// Intent is one open modal. ReturnTo is where to navigate when it completes.
type Intent struct {
	Kind     Kind
	ReturnTo string
	// Booking identifies the tee time a booking modal is for, or the booking an
	// auth modal should return to
	Booking *BookingRef
}

// BookingRef points at a tee time in the catalog
type BookingRef struct {
	CourseID int
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
}

// Stack is the per-browser stack of open modals
type Stack struct {
	mu      sync.Mutex
	intents []Intent
}

func (s *Stack) Push(intent Intent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
}

// Pop removes and returns the top intent
func (s *Stack) Pop() (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.intents) == 0 {
		return Intent{}, false
	}
	top := s.intents[len(s.intents)-1]
	s.intents = s.intents[:len(s.intents)-1]
	return top, true
}

// Top returns the top intent without removing it
func (s *Stack) Top() (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.intents) == 0 {
		return Intent{}, false
	}
	return s.intents[len(s.intents)-1], true
}

// Find returns the topmost intent of the given kind
func (s *Stack) Find(kind Kind) (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.intents) - 1; i >= 0; i-- {
		if s.intents[i].Kind == kind {
			return s.intents[i], true
		}
	}
	return Intent{}, false
}

// TopIs reports whether the top intent has the given kind
func (s *Stack) TopIs(kind Kind) bool {
	top, ok := s.Top()
	return ok && top.Kind == kind
}

// PopTo removes intents until one of the given kind has been popped
func (s *Stack) PopTo(kind Kind) (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.intents) - 1; i >= 0; i-- {
		if s.intents[i].Kind == kind {
			found := s.intents[i]
			s.intents = s.intents[:i]
			return found, true
		}
	}
	return Intent{}, false
}

func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = nil
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}
