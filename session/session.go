package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jrsteele09/go-teetime/internal/clock"
	"github.com/jrsteele09/go-teetime/internal/errors"
)

// State is what the rest of the app sees of a browser session
type State struct {
	Authenticated bool
	DisplayName   string
	ExpiresAt     time.Time // zero when unauthenticated
}

// LoginInput carries the tokens returned by the auth backend
type LoginInput struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    int64  // seconds from now
	DisplayName  string // empty keeps the stored name
}

// Listener is notified whenever a browser session's authentication changes
type Listener func(sid string, state State)

// Service owns the session lifecycle of every browser session
type Service struct {
	store KVStore
	clock clock.Clock

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithClock sets the clock (primarily for testing)
func WithClock(c clock.Clock) ServiceOption {
	return func(s *Service) {
		s.clock = c
	}
}

// NewService creates a session service over the given store
func NewService(store KVStore, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}

	s := &Service{
		store:     store,
		clock:     &clock.DefaultClock{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Init reads the persisted session. An absent or expired token clears every persisted field.
func (s *Service) Init(ctx context.Context, sid string) (State, error) {
	fields, err := s.store.Get(ctx, sid)
	if err != nil {
		return State{}, errors.Wrapf(err, "[Service.Init] reading session")
	}

	token := fields[KeyIDToken]
	expiresAt := parseExpiry(fields[KeyExpiresAt])
	if token != "" && s.clock.Now().UnixMilli() < expiresAt {
		return State{
			Authenticated: true,
			DisplayName:   fields[KeyUserName],
			ExpiresAt:     time.UnixMilli(expiresAt),
		}, nil
	}

	if len(fields) > 0 {
		if err := s.store.Delete(ctx, sid, Keys...); err != nil {
			return State{}, errors.Wrapf(err, "[Service.Init] clearing session")
		}
	}
	if token != "" {
		s.notify(sid, State{})
	}
	return State{}, nil
}

// Login persists the tokens and the absolute expiry
func (s *Service) Login(ctx context.Context, sid string, in LoginInput) (State, error) {
	if in.IDToken == "" {
		return State{}, errors.Wrapf(errors.ErrValidation, "[Service.Login] id token is required")
	}
	if in.ExpiresIn <= 0 {
		return State{}, errors.Wrapf(errors.ErrValidation, "[Service.Login] expiresIn must be positive, got %d", in.ExpiresIn)
	}

	expiresAt := s.clock.Now().UnixMilli() + in.ExpiresIn*1000
	fields := map[string]string{
		KeyIDToken:      in.IDToken,
		KeyRefreshToken: in.RefreshToken,
		KeyExpiresAt:    strconv.FormatInt(expiresAt, 10),
	}

	name := in.DisplayName
	if name != "" {
		fields[KeyUserName] = name
	} else {
		stored, err := s.store.Get(ctx, sid)
		if err != nil {
			return State{}, errors.Wrapf(err, "[Service.Login] reading session")
		}
		name = stored[KeyUserName]
	}

	if err := s.store.Set(ctx, sid, fields); err != nil {
		return State{}, errors.Wrapf(err, "[Service.Login] saving session")
	}

	state := State{
		Authenticated: true,
		DisplayName:   name,
		ExpiresAt:     time.UnixMilli(expiresAt),
	}
	s.notify(sid, state)
	return state, nil
}

// Logout clears every persisted field
func (s *Service) Logout(ctx context.Context, sid string) (State, error) {
	fields, err := s.store.Get(ctx, sid)
	if err != nil {
		return State{}, errors.Wrapf(err, "[Service.Logout] reading session")
	}
	if len(fields) == 0 {
		return State{}, nil
	}
	if err := s.store.Delete(ctx, sid, Keys...); err != nil {
		return State{}, errors.Wrapf(err, "[Service.Logout] clearing session")
	}
	if fields[KeyIDToken] != "" {
		s.notify(sid, State{})
	}
	return State{}, nil
}

// Subscribe registers a listener and returns a func that removes it
func (s *Service) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Service) notify(sid string, state State) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(sid, state)
	}
}

// parseExpiry treats an absent or corrupt value as 0
func parseExpiry(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
