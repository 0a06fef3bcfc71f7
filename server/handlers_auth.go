package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-teetime/authflow"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/modal"
	"github.com/jrsteele09/go-teetime/session"
)

const (
	tabSignIn = "signin"
	tabSignUp = "signup"
)

// authPage renders the auth modal: sign-in and sign-up tabs, or the welcome view when signed in
type authPage struct {
	basePage
	Tab      string
	Email    string
	Name     string
	FormErr  string
	ReturnTo string
	Booking  *modal.BookingRef
}

// AuthModalHandler opens the auth modal. A return parameter starts a fresh auth intent.
func (s *Server) AuthModalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := s.base(r, "Sign in")
		if err != nil {
			s.internalError(w, r, err)
			return
		}

		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()

		if ret := r.URL.Query().Get("return"); ret != "" {
			ui.Modals.PopTo(modal.KindAuth)
			ui.Modals.Push(modal.Intent{Kind: modal.KindAuth, ReturnTo: safeReturnPath(ret)})
		} else if !ui.Modals.TopIs(modal.KindAuth) {
			ui.Modals.Push(modal.Intent{Kind: modal.KindAuth, ReturnTo: RouteIndex})
		}
		intent, _ := ui.Modals.Top()

		s.renderPage(w, http.StatusOK, pageAuth, authPage{
			basePage: base,
			Tab:      authTab(r.URL.Query().Get("tab")),
			ReturnTo: intent.ReturnTo,
			Booking:  intent.Booking,
		})
	}
}

// SignInHandler submits the sign-in form
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		state, err := s.auth.SignIn(r.Context(), sessionID(r), authflow.SignInForm{
			Email:    email,
			Password: r.FormValue("password"),
		})
		if err != nil {
			s.renderAuthError(w, r, tabSignIn, email, "", err)
			return
		}
		s.completeAuth(w, r, state, email)
	}
}

// SignUpHandler submits the create-account form
func (s *Server) SignUpHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		email := strings.TrimSpace(r.FormValue("email"))
		state, err := s.auth.SignUp(r.Context(), sessionID(r), authflow.SignUpForm{
			Name:            name,
			Email:           email,
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
		})
		if err != nil {
			s.renderAuthError(w, r, tabSignUp, email, name, err)
			return
		}
		s.completeAuth(w, r, state, email)
	}
}

// SignOutHandler clears the session and returns to where the user was
func (s *Server) SignOutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}

		if _, err := s.auth.SignOut(r.Context(), sessionID(r)); err != nil {
			s.internalError(w, r, err)
			return
		}

		target := safeReturnPath(r.FormValue("return"))
		if ui, err := s.uiState(r); err == nil {
			if intent, ok := ui.Modals.PopTo(modal.KindAuth); ok && r.FormValue("return") == "" {
				target = intent.ReturnTo
			}
			ui.Unlock()
		}
		redirectSuccess(w, r, target)
	}
}

// completeAuth closes the auth modal and navigates back, prefilling a pending booking
func (s *Server) completeAuth(w http.ResponseWriter, r *http.Request, state session.State, email string) {
	ui, err := s.uiState(r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	defer ui.Unlock()

	target := RouteIndex
	if intent, ok := ui.Modals.PopTo(modal.KindAuth); ok {
		target = intent.ReturnTo
		if intent.Booking != nil && ui.Wizard.IsOpen() {
			ui.Wizard.Prefill(state.DisplayName, email)
		}
	}
	redirectSuccess(w, r, safeReturnPath(target))
}

func (s *Server) renderAuthError(w http.ResponseWriter, r *http.Request, tab, email, name string, err error) {
	var formErr *authflow.FormError
	if !errors.As(err, &formErr) {
		s.internalError(w, r, err)
		return
	}

	base, err := s.base(r, "Sign in")
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	page := authPage{
		basePage: base,
		Tab:      tab,
		Email:    email,
		Name:     name,
		FormErr:  formErr.Message,
		ReturnTo: RouteIndex,
	}
	if ui, err := s.uiState(r); err == nil {
		if intent, ok := ui.Modals.Find(modal.KindAuth); ok {
			page.ReturnTo = intent.ReturnTo
			page.Booking = intent.Booking
		}
		ui.Unlock()
	}
	s.renderPage(w, http.StatusUnprocessableEntity, pageAuth, page)
}

func authTab(tab string) string {
	if tab == tabSignUp {
		return tabSignUp
	}
	return tabSignIn
}
