package uistate

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jrsteele09/go-teetime/internal/errors"
)

// LRURepo keeps the UI state of the most recently active browsers. Idle
// entries expire after the TTL; the least recently used are evicted at capacity.
type LRURepo struct {
	mu     sync.Mutex
	states *expirable.LRU[string, *State] // sessionID -> State
}

var _ Repo = (*LRURepo)(nil)

// NewLRURepo creates a repository holding at most size browsers
func NewLRURepo(size int, ttl time.Duration) *LRURepo {
	if size <= 0 {
		size = 1
	}
	return &LRURepo{
		states: expirable.NewLRU[string, *State](size, nil, ttl),
	}
}

func (r *LRURepo) Get(sid string) (*State, bool) {
	if sid == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.states.Get(sid)
}

func (r *LRURepo) GetOrCreate(sid string, create func() *State) (*State, error) {
	if sid == "" {
		return nil, errors.Wrapf(errors.ErrSessionNotFound, "[LRURepo GetOrCreate] sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states.Get(sid)
	if !ok {
		state = create()
		if state == nil {
			return nil, errors.New("[LRURepo GetOrCreate] create returned no state")
		}
	}
	// Re-adding refreshes the TTL of an active browser
	r.states.Add(sid, state)
	return state, nil
}

func (r *LRURepo) Delete(sid string) error {
	if sid == "" {
		return errors.Wrapf(errors.ErrSessionNotFound, "[LRURepo Delete] sessionID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states.Remove(sid)
	return nil
}

func (r *LRURepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states.Len()
}
