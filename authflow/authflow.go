package authflow

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-teetime/authclient"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/internal/utils"
	"github.com/jrsteele09/go-teetime/metrics"
	"github.com/jrsteele09/go-teetime/session"
)

// Op names a submission kind
type Op string

const (
	OpSignIn  Op = "signin"
	OpSignUp  Op = "signup"
	OpSignOut Op = "signout"
)

// Messages shown inline on the auth forms
const (
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
	MsgSignInFailed     = "Invalid email or password"
	MsgSignUpFailed     = "An error occurred during sign up"
	MsgUnexpected       = "An unexpected error occurred. Please try again."
)

// SignInForm holds the submitted sign-in fields
type SignInForm struct {
	Email    string
	Password string
}

// SignUpForm holds the submitted sign-up fields
type SignUpForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// FormError is the single message shown on a form after a failed submit
type FormError struct {
	Op      Op
	Message string
	Err     error
}

func (e *FormError) Error() string {
	return e.Message
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// Sessions is the part of the session service the flow drives
type Sessions interface {
	Login(ctx context.Context, sid string, in session.LoginInput) (session.State, error)
	Logout(ctx context.Context, sid string) (session.State, error)
}

// Flow runs sign-in, sign-up and sign-out submissions
type Flow struct {
	auth     authclient.Authenticator
	sessions Sessions
	inflight singleflight.Group
}

// New creates a submission flow
func New(auth authclient.Authenticator, sessions Sessions) (*Flow, error) {
	if auth == nil {
		return nil, errors.New("[authflow.New] authenticator is required")
	}
	if sessions == nil {
		return nil, errors.New("[authflow.New] sessions is required")
	}
	return &Flow{auth: auth, sessions: sessions}, nil
}

// ValidateSignIn checks the form locally
func ValidateSignIn(form SignInForm) error {
	if strings.TrimSpace(form.Email) == "" || form.Password == "" {
		return &FormError{Op: OpSignIn, Message: MsgFillAllFields, Err: errors.ErrValidation}
	}
	return nil
}

// ValidateSignUp checks the form locally
func ValidateSignUp(form SignUpForm) error {
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Email) == "" ||
		form.Password == "" || form.ConfirmPassword == "" {
		return &FormError{Op: OpSignUp, Message: MsgFillAllFields, Err: errors.ErrValidation}
	}
	if form.Password != form.ConfirmPassword {
		return &FormError{Op: OpSignUp, Message: MsgPasswordMismatch, Err: errors.ErrPasswordMismatch}
	}
	return nil
}

// SignIn validates the form, calls the backend and logs the browser session in.
// Concurrent duplicate submits for the same browser session share one call.
func (f *Flow) SignIn(ctx context.Context, sid string, form SignInForm) (session.State, error) {
	if err := ValidateSignIn(form); err != nil {
		metrics.IncAuthAttempt(string(OpSignIn), metrics.ResultInvalid)
		return session.State{}, err
	}

	return f.do(ctx, sid, OpSignIn, func(ctx context.Context) (session.State, error) {
		tokens, err := f.auth.SignIn(ctx, authclient.SignInRequest{
			Email:    strings.TrimSpace(form.Email),
			Password: form.Password,
		})
		if err != nil {
			return session.State{}, remoteFormError(OpSignIn, MsgSignInFailed, err)
		}
		return f.login(ctx, sid, OpSignIn, tokens, signInName(tokens))
	})
}

// SignUp validates the form, creates the account and logs the browser session in
func (f *Flow) SignUp(ctx context.Context, sid string, form SignUpForm) (session.State, error) {
	if err := ValidateSignUp(form); err != nil {
		metrics.IncAuthAttempt(string(OpSignUp), metrics.ResultInvalid)
		return session.State{}, err
	}

	name := strings.TrimSpace(form.Name)
	return f.do(ctx, sid, OpSignUp, func(ctx context.Context) (session.State, error) {
		tokens, err := f.auth.SignUp(ctx, authclient.SignUpRequest{
			DisplayName: name,
			Email:       strings.TrimSpace(form.Email),
			Password:    form.Password,
		})
		if err != nil {
			return session.State{}, remoteFormError(OpSignUp, MsgSignUpFailed, err)
		}
		return f.login(ctx, sid, OpSignUp, tokens, name)
	})
}

// SignOut clears the browser session
func (f *Flow) SignOut(ctx context.Context, sid string) (session.State, error) {
	state, err := f.sessions.Logout(ctx, sid)
	if err != nil {
		return state, errors.Wrapf(err, "[Flow.SignOut] logout")
	}
	return state, nil
}

func (f *Flow) do(ctx context.Context, sid string, op Op, fn func(context.Context) (session.State, error)) (session.State, error) {
	// The shared call outlives any single caller, the client timeout bounds it
	callCtx := context.WithoutCancel(ctx)

	v, err, shared := f.inflight.Do(sid+":"+string(op), func() (interface{}, error) {
		state, err := fn(callCtx)
		if err != nil {
			metrics.IncAuthAttempt(string(op), metrics.ResultFailure)
		} else {
			metrics.IncAuthAttempt(string(op), metrics.ResultSuccess)
		}
		return state, err
	})
	if shared {
		log.Debug().Str("op", string(op)).Msg("duplicate auth submit joined in-flight request")
	}
	if err != nil {
		return session.State{}, err
	}
	return v.(session.State), nil
}

func (f *Flow) login(ctx context.Context, sid string, op Op, tokens *authclient.TokenResponse, name string) (session.State, error) {
	state, err := f.sessions.Login(ctx, sid, session.LoginInput{
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    int64(tokens.ExpiresIn),
		DisplayName:  name,
	})
	if err != nil {
		log.Err(err).Str("op", string(op)).Msg("failed to persist session")
		return session.State{}, &FormError{Op: op, Message: MsgUnexpected, Err: err}
	}
	return state, nil
}

// remoteFormError maps a backend failure to the message shown on the form
func remoteFormError(op Op, fallback string, err error) error {
	var remote *authclient.RemoteError
	switch {
	case errors.As(err, &remote):
		msg := remote.Message
		if msg == "" {
			msg = fallback
		}
		return &FormError{Op: op, Message: msg, Err: err}
	case errors.Is(err, errors.ErrRemote):
		return &FormError{Op: op, Message: fallback, Err: err}
	default:
		log.Err(err).Str("op", string(op)).Msg("auth request failed")
		return &FormError{Op: op, Message: MsgUnexpected, Err: err}
	}
}

// signInName prefers the profile name, then the token's name claim.
// Empty means keep whatever name is stored.
func signInName(tokens *authclient.TokenResponse) string {
	var profile string
	if tokens.User != nil {
		profile = strings.TrimSpace(tokens.User.Name)
	}
	return utils.FirstNonEmpty(profile, nameClaim(tokens.IDToken))
}

// nameClaim reads the name claim without verifying the signature; the token
// is only used for display here.
func nameClaim(idToken string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return ""
	}
	name, _ := claims["name"].(string)
	return strings.TrimSpace(name)
}
