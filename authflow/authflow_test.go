package authflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-teetime/authclient"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/session"
)

type fakeAuth struct {
	calls   atomic.Int32
	signIn  func(req authclient.SignInRequest) (*authclient.TokenResponse, error)
	signUp  func(req authclient.SignUpRequest) (*authclient.TokenResponse, error)
	lastUp  authclient.SignUpRequest
	lastIn  authclient.SignInRequest
	release chan struct{}
	entered chan struct{}
}

func (f *fakeAuth) SignIn(_ context.Context, req authclient.SignInRequest) (*authclient.TokenResponse, error) {
	f.calls.Add(1)
	f.lastIn = req
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.signIn(req)
}

func (f *fakeAuth) SignUp(_ context.Context, req authclient.SignUpRequest) (*authclient.TokenResponse, error) {
	f.calls.Add(1)
	f.lastUp = req
	return f.signUp(req)
}

func tokens(idToken string) *authclient.TokenResponse {
	return &authclient.TokenResponse{IDToken: idToken, RefreshToken: "refresh", ExpiresIn: 3600}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func newFlow(t *testing.T, auth *fakeAuth) (*Flow, *session.Service, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	sessions, err := session.NewService(store)
	require.NoError(t, err)
	flow, err := New(auth, sessions)
	require.NoError(t, err)
	return flow, sessions, store
}

func requireFormError(t *testing.T, err error, message string) *FormError {
	t.Helper()
	var formErr *FormError
	require.True(t, errors.As(err, &formErr), "expected FormError, got %v", err)
	require.Equal(t, message, formErr.Message)
	return formErr
}

func TestSignInValidation(t *testing.T) {
	auth := &fakeAuth{}
	flow, _, _ := newFlow(t, auth)

	for _, form := range []SignInForm{{}, {Email: "a@b.com"}, {Password: "pw"}, {Email: "   ", Password: "pw"}} {
		_, err := flow.SignIn(context.Background(), "sid", form)
		requireFormError(t, err, MsgFillAllFields)
		require.True(t, errors.Is(err, errors.ErrValidation))
	}
	require.Zero(t, auth.calls.Load())
}

func TestSignUpValidation(t *testing.T) {
	auth := &fakeAuth{}
	flow, _, _ := newFlow(t, auth)

	_, err := flow.SignUp(context.Background(), "sid", SignUpForm{Email: "a@b.com", Password: "pw", ConfirmPassword: "pw"})
	requireFormError(t, err, MsgFillAllFields)

	_, err = flow.SignUp(context.Background(), "sid", SignUpForm{Name: "Ann", Email: "a@b.com", Password: "pw", ConfirmPassword: "other"})
	requireFormError(t, err, MsgPasswordMismatch)
	require.True(t, errors.Is(err, errors.ErrPasswordMismatch))

	require.Zero(t, auth.calls.Load())
}

func TestSignInSuccess(t *testing.T) {
	t.Run("user name from response", func(t *testing.T) {
		auth := &fakeAuth{signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
			resp := tokens("id")
			resp.User = &authclient.User{Name: "Ann", Email: "ann@example.com"}
			return resp, nil
		}}
		flow, _, store := newFlow(t, auth)

		state, err := flow.SignIn(context.Background(), "sid", SignInForm{Email: " ann@example.com ", Password: "pw"})
		require.NoError(t, err)
		require.True(t, state.Authenticated)
		require.Equal(t, "Ann", state.DisplayName)
		require.Equal(t, "ann@example.com", auth.lastIn.Email)

		fields, err := store.Get(context.Background(), "sid")
		require.NoError(t, err)
		require.Equal(t, "id", fields[session.KeyIDToken])
		require.Equal(t, "refresh", fields[session.KeyRefreshToken])
		require.Equal(t, "Ann", fields[session.KeyUserName])
	})

	t.Run("name claim from id token", func(t *testing.T) {
		idToken := signedToken(t, jwt.MapClaims{"name": "Claim Name", "email": "c@example.com"})
		auth := &fakeAuth{signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
			return tokens(idToken), nil
		}}
		flow, _, _ := newFlow(t, auth)

		state, err := flow.SignIn(context.Background(), "sid", SignInForm{Email: "c@example.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "Claim Name", state.DisplayName)
	})

	t.Run("stored name when nothing else is known", func(t *testing.T) {
		auth := &fakeAuth{signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
			return tokens("opaque-token"), nil
		}}
		flow, _, store := newFlow(t, auth)
		require.NoError(t, store.Set(context.Background(), "sid", map[string]string{session.KeyUserName: "Stored"}))

		state, err := flow.SignIn(context.Background(), "sid", SignInForm{Email: "a@b.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "Stored", state.DisplayName)
	})
}

func TestSignInRemoteFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server message", err: &authclient.RemoteError{Status: 401, Message: "Invalid credentials"}, want: "Invalid credentials"},
		{name: "no message", err: &authclient.RemoteError{Status: 500}, want: MsgSignInFailed},
		{name: "malformed response", err: fmt.Errorf("bad body: %w", errors.ErrRemote), want: MsgSignInFailed},
		{name: "transport", err: fmt.Errorf("dial: %w", errors.ErrTransport), want: MsgUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
				return nil, tt.err
			}}
			flow, _, store := newFlow(t, auth)

			_, err := flow.SignIn(context.Background(), "sid", SignInForm{Email: "a@b.com", Password: "pw"})
			requireFormError(t, err, tt.want)

			fields, err := store.Get(context.Background(), "sid")
			require.NoError(t, err)
			require.Empty(t, fields)
		})
	}
}

func TestSignUp(t *testing.T) {
	t.Run("success uses the submitted name", func(t *testing.T) {
		auth := &fakeAuth{signUp: func(authclient.SignUpRequest) (*authclient.TokenResponse, error) {
			return tokens("id"), nil
		}}
		flow, _, _ := newFlow(t, auth)

		state, err := flow.SignUp(context.Background(), "sid", SignUpForm{Name: " Ann ", Email: "a@b.com", Password: "pw", ConfirmPassword: "pw"})
		require.NoError(t, err)
		require.True(t, state.Authenticated)
		require.Equal(t, "Ann", state.DisplayName)
		require.Equal(t, "Ann", auth.lastUp.DisplayName)
	})

	t.Run("failure falls back to sign up message", func(t *testing.T) {
		auth := &fakeAuth{signUp: func(authclient.SignUpRequest) (*authclient.TokenResponse, error) {
			return nil, &authclient.RemoteError{Status: 400}
		}}
		flow, _, _ := newFlow(t, auth)

		_, err := flow.SignUp(context.Background(), "sid", SignUpForm{Name: "Ann", Email: "a@b.com", Password: "pw", ConfirmPassword: "pw"})
		requireFormError(t, err, MsgSignUpFailed)
	})

	t.Run("detail from the backend", func(t *testing.T) {
		auth := &fakeAuth{signUp: func(authclient.SignUpRequest) (*authclient.TokenResponse, error) {
			return nil, &authclient.RemoteError{Status: 400, Message: "Email already exists"}
		}}
		flow, _, _ := newFlow(t, auth)

		_, err := flow.SignUp(context.Background(), "sid", SignUpForm{Name: "Ann", Email: "a@b.com", Password: "pw", ConfirmPassword: "pw"})
		requireFormError(t, err, "Email already exists")
	})
}

func TestSignOut(t *testing.T) {
	auth := &fakeAuth{signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
		return tokens("id"), nil
	}}
	flow, sessions, _ := newFlow(t, auth)

	_, err := flow.SignIn(context.Background(), "sid", SignInForm{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	state, err := flow.SignOut(context.Background(), "sid")
	require.NoError(t, err)
	require.False(t, state.Authenticated)

	state, err = sessions.Init(context.Background(), "sid")
	require.NoError(t, err)
	require.False(t, state.Authenticated)
}

func TestDuplicateSubmitsShareOneRequest(t *testing.T) {
	auth := &fakeAuth{
		signIn: func(authclient.SignInRequest) (*authclient.TokenResponse, error) {
			return tokens("id"), nil
		},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	flow, _, _ := newFlow(t, auth)

	var wg sync.WaitGroup
	results := make([]session.State, 2)
	errs := make([]error, 2)

	submit := func(i int) {
		defer wg.Done()
		results[i], errs[i] = flow.SignIn(context.Background(), "sid", SignInForm{Email: "a@b.com", Password: "pw"})
	}

	wg.Add(1)
	go submit(0)
	<-auth.entered

	wg.Add(1)
	go submit(1)
	// Give the duplicate time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(auth.release)
	wg.Wait()

	require.Equal(t, int32(1), auth.calls.Load())
	for i := range results {
		require.NoError(t, errs[i])
		require.True(t, results[i].Authenticated)
	}
}

func TestNew(t *testing.T) {
	sessions, err := session.NewService(session.NewMemoryStore())
	require.NoError(t, err)

	_, err = New(nil, sessions)
	require.Error(t, err)
	_, err = New(&fakeAuth{}, nil)
	require.Error(t, err)
}
