package session

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/jrsteele09/go-teetime/internal/clock"
	"github.com/jrsteele09/go-teetime/internal/clock/mocks"
	"github.com/jrsteele09/go-teetime/internal/errors"
)

// ServiceTestSuite checks the session lifecycle over each store implementation
type ServiceTestSuite struct {
	suite.Suite
	newStore func() KVStore

	store   KVStore
	service *Service
	now     time.Time
	events  []State
}

func (s *ServiceTestSuite) SetupTest() {
	s.now = time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)
	s.store = s.newStore()
	s.events = nil

	service, err := NewService(s.store, WithClock(clock.Func(func() time.Time { return s.now })))
	s.Require().NoError(err)
	s.service = service
	s.service.Subscribe(func(_ string, state State) {
		s.events = append(s.events, state)
	})
}

func TestServiceWithMemoryStore(t *testing.T) {
	suite.Run(t, &ServiceTestSuite{
		newStore: func() KVStore { return NewMemoryStore() },
	})
}

func TestServiceWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	suite.Run(t, &ServiceTestSuite{
		newStore: func() KVStore {
			mr.FlushAll()
			store, err := NewRedisStore(context.Background(), &RedisConfig{RedisClient: client})
			require.NoError(t, err)
			return store
		},
	})
}

func (s *ServiceTestSuite) TestInitEmpty() {
	state, err := s.service.Init(context.Background(), "sid")
	s.Require().NoError(err)
	s.False(state.Authenticated)
	s.Empty(s.events)
}

func (s *ServiceTestSuite) TestLoginPersistsFields() {
	ctx := context.Background()
	state, err := s.service.Login(ctx, "sid", LoginInput{
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    3600,
		DisplayName:  "Ann",
	})
	s.Require().NoError(err)
	s.True(state.Authenticated)
	s.Equal("Ann", state.DisplayName)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Equal("id-token", fields[KeyIDToken])
	s.Equal("refresh-token", fields[KeyRefreshToken])
	s.Equal(strconv.FormatInt(s.now.UnixMilli()+3600*1000, 10), fields[KeyExpiresAt])
	s.Equal("Ann", fields[KeyUserName])

	// Init reads it back
	state, err = s.service.Init(ctx, "sid")
	s.Require().NoError(err)
	s.True(state.Authenticated)
	s.Equal("Ann", state.DisplayName)
	s.Equal(s.now.Add(time.Hour).UnixMilli(), state.ExpiresAt.UnixMilli())

	s.Require().Len(s.events, 1)
	s.True(s.events[0].Authenticated)
}

func (s *ServiceTestSuite) TestLoginWithoutNameKeepsStoredName() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, "sid", LoginInput{IDToken: "a", ExpiresIn: 60, DisplayName: "Ann"})
	s.Require().NoError(err)

	state, err := s.service.Login(ctx, "sid", LoginInput{IDToken: "b", ExpiresIn: 60})
	s.Require().NoError(err)
	s.Equal("Ann", state.DisplayName)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Equal("b", fields[KeyIDToken])
	s.Equal("Ann", fields[KeyUserName])
}

func (s *ServiceTestSuite) TestLoginRejectsBadInput() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, "sid", LoginInput{ExpiresIn: 60})
	s.True(errors.Is(err, errors.ErrValidation))

	_, err = s.service.Login(ctx, "sid", LoginInput{IDToken: "a", ExpiresIn: 0})
	s.True(errors.Is(err, errors.ErrValidation))

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Empty(fields)
}

func (s *ServiceTestSuite) TestExpiryBoundary() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, "sid", LoginInput{IDToken: "a", ExpiresIn: 3600, DisplayName: "Ann"})
	s.Require().NoError(err)

	// One millisecond before expiry is still valid
	s.now = s.now.Add(time.Hour - time.Millisecond)
	state, err := s.service.Init(ctx, "sid")
	s.Require().NoError(err)
	s.True(state.Authenticated)

	// now == expiresAt is expired and clears everything
	s.now = s.now.Add(time.Millisecond)
	state, err = s.service.Init(ctx, "sid")
	s.Require().NoError(err)
	s.False(state.Authenticated)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Empty(fields)

	s.Require().Len(s.events, 2)
	s.False(s.events[1].Authenticated)
}

func (s *ServiceTestSuite) TestCorruptExpiryTreatedAsExpired() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "sid", map[string]string{
		KeyIDToken:   "a",
		KeyExpiresAt: "not-a-number",
		KeyUserName:  "Ann",
	}))

	state, err := s.service.Init(ctx, "sid")
	s.Require().NoError(err)
	s.False(state.Authenticated)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Empty(fields)
}

func (s *ServiceTestSuite) TestMissingTokenClearsLeftovers() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "sid", map[string]string{KeyUserName: "Ann"}))

	state, err := s.service.Init(ctx, "sid")
	s.Require().NoError(err)
	s.False(state.Authenticated)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Empty(fields)
	s.Empty(s.events)
}

func (s *ServiceTestSuite) TestLogout() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, "sid", LoginInput{IDToken: "a", RefreshToken: "r", ExpiresIn: 60, DisplayName: "Ann"})
	s.Require().NoError(err)

	state, err := s.service.Logout(ctx, "sid")
	s.Require().NoError(err)
	s.False(state.Authenticated)

	fields, err := s.store.Get(ctx, "sid")
	s.Require().NoError(err)
	s.Empty(fields)

	// A second logout is a no-op
	_, err = s.service.Logout(ctx, "sid")
	s.Require().NoError(err)
	s.Len(s.events, 2)
}

func (s *ServiceTestSuite) TestSessionsAreIsolated() {
	ctx := context.Background()
	_, err := s.service.Login(ctx, "sid-1", LoginInput{IDToken: "a", ExpiresIn: 60, DisplayName: "Ann"})
	s.Require().NoError(err)

	state, err := s.service.Init(ctx, "sid-2")
	s.Require().NoError(err)
	s.False(state.Authenticated)

	state, err = s.service.Init(ctx, "sid-1")
	s.Require().NoError(err)
	s.True(state.Authenticated)
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestInitWithMockClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClock := mocks.NewMockClock(ctrl)

	loginAt := time.Date(2025, 4, 12, 9, 0, 0, 0, time.UTC)
	mockClock.EXPECT().Now().Return(loginAt).Times(1)
	mockClock.EXPECT().Now().Return(loginAt.Add(2 * time.Minute)).Times(1)

	service, err := NewService(NewMemoryStore(), WithClock(mockClock))
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "sid", LoginInput{IDToken: "a", ExpiresIn: 60, DisplayName: "Ann"})
	require.NoError(t, err)

	state, err := service.Init(context.Background(), "sid")
	require.NoError(t, err)
	require.False(t, state.Authenticated)
}

func TestSubscribe(t *testing.T) {
	service, err := NewService(NewMemoryStore())
	require.NoError(t, err)

	var mu sync.Mutex
	var got []string
	unsubscribe := service.Subscribe(func(sid string, state State) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, sid+":"+strconv.FormatBool(state.Authenticated))
	})

	ctx := context.Background()
	_, err = service.Login(ctx, "sid", LoginInput{IDToken: "a", ExpiresIn: 60})
	require.NoError(t, err)
	_, err = service.Logout(ctx, "sid")
	require.NoError(t, err)

	unsubscribe()
	_, err = service.Login(ctx, "sid", LoginInput{IDToken: "a", ExpiresIn: 60})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"sid:true", "sid:false"}, got)
}
