package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-teetime/booking"
	"github.com/jrsteele09/go-teetime/catalog"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/modal"
	"github.com/jrsteele09/go-teetime/server/uistate"
)

const (
	tabGuest   = "guest"
	tabAccount = "account"

	msgBookingExpired = "Your booking has expired. Please choose a tee time again."
)

type bookingPage struct {
	basePage
	Tab          string
	Step         string
	Draft        booking.Draft
	FormErr      string
	Confirmation *booking.Confirmation
	ClosesIn     int // whole seconds until a confirmed booking closes
	ReturnTo     string
}

// BookingModalHandler opens the booking modal for a tee time, or shows the open one
func (s *Server) BookingModalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base, err := s.base(r, "Book your tee time")
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

		params := r.URL.Query()
		if params.Get("course") != "" {
			ref, info, status, msg := s.lookupTeeTime(params)
			if status != http.StatusOK {
				s.renderError(w, r, status, msg)
				return
			}
			s.openBooking(ui, ref, info, params.Get("return"))
		}

		if !ui.Wizard.IsOpen() {
			// Closed by cancel or after confirmation: leave the modal
			target := RouteIndex
			if intent, ok := ui.Modals.PopTo(modal.KindBooking); ok {
				target = intent.ReturnTo
			}
			http.Redirect(w, r, safeReturnPath(target), http.StatusSeeOther)
			return
		}

		if base.Session.Authenticated && ui.Wizard.Step() == booking.StepContactInfo {
			ui.Wizard.Prefill(base.Session.DisplayName, "")
		}

		s.renderBooking(w, http.StatusOK, base, ui, params.Get("tab"))
	}
}

// lookupTeeTime resolves the course, date and time parameters against the catalog
func (s *Server) lookupTeeTime(params url.Values) (*modal.BookingRef, booking.CourseInfo, int, string) {
	id, err := strconv.Atoi(params.Get("course"))
	if err != nil {
		return nil, booking.CourseInfo{}, http.StatusNotFound, "Course not found"
	}
	course, err := s.catalog.Course(id)
	if err != nil {
		return nil, booking.CourseInfo{}, http.StatusNotFound, "Course not found"
	}

	date, hhmm := params.Get("date"), params.Get("time")
	teeTime, ok := course.FindTeeTime(date, hhmm)
	if !ok {
		return nil, booking.CourseInfo{}, http.StatusNotFound, "Tee time not available"
	}

	ref := &modal.BookingRef{CourseID: course.ID, Date: date, Time: hhmm}
	info := booking.CourseInfo{
		CourseID:   course.ID,
		CourseName: course.Name,
		TeeTime:    teeTime.Label(),
		Date:       catalog.AvailableDay{Date: date}.Label(),
		Price:      teeTime.PriceLabel(),
	}
	return ref, info, http.StatusOK, ""
}

// openBooking (re)starts the wizard unless it is already open for the same tee time
func (s *Server) openBooking(ui *uistate.State, ref *modal.BookingRef, info booking.CourseInfo, returnTo string) {
	if current, ok := ui.Modals.Find(modal.KindBooking); ok && ui.Wizard.IsOpen() &&
		current.Booking != nil && *current.Booking == *ref {
		return
	}

	if returnTo == "" {
		returnTo = fmt.Sprintf("/course/%d?date=%s&time=%s", ref.CourseID, url.QueryEscape(ref.Date), url.QueryEscape(ref.Time))
	}
	ui.Modals.Clear()
	ui.Modals.Push(modal.Intent{Kind: modal.KindBooking, ReturnTo: safeReturnPath(returnTo), Booking: ref})
	ui.Wizard.Open(info)
}

func (s *Server) renderBooking(w http.ResponseWriter, status int, base basePage, ui *uistate.State, tab string) {
	page := bookingPage{
		basePage:     base,
		Tab:          tabGuest,
		Step:         ui.Wizard.Step().String(),
		Draft:        ui.Wizard.Draft(),
		FormErr:      ui.Wizard.FormError(),
		Confirmation: ui.Wizard.Confirmation(),
		ReturnTo:     RouteIndex,
	}
	if tab == tabAccount && !base.Session.Authenticated {
		page.Tab = tabAccount
	}
	if intent, ok := ui.Modals.Find(modal.KindBooking); ok {
		page.ReturnTo = intent.ReturnTo
	}
	if page.Confirmation != nil {
		remaining := ui.Wizard.ClosesAt().Sub(s.clock.Now()).Seconds()
		page.ClosesIn = int(math.Max(0, math.Ceil(remaining)))
	}
	s.renderPage(w, status, pageBooking, page)
}

// bookingStep runs one wizard transition for the requesting browser
func (s *Server) bookingStep(title string, step func(r *http.Request, ui *uistate.State) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.renderError(w, r, http.StatusBadRequest, "Invalid form data")
			return
		}

		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()

		err = step(r, ui)
		switch {
		case err == nil:
			redirectSuccess(w, r, RouteBooking)
		case errors.Is(err, errors.ErrValidation):
			base, baseErr := s.base(r, title)
			if baseErr != nil {
				s.internalError(w, r, baseErr)
				return
			}
			s.renderBooking(w, http.StatusUnprocessableEntity, base, ui, tabGuest)
		case errors.Is(err, errors.ErrBookingClosed), errors.Is(err, errors.ErrInvalidTransition):
			// Stale form (double submit, back button): show the current state
			redirectSuccess(w, r, RouteBooking)
		default:
			logError(r, http.StatusInternalServerError, err)
			base, baseErr := s.base(r, title)
			if baseErr != nil {
				s.internalError(w, r, baseErr)
				return
			}
			s.renderBooking(w, http.StatusInternalServerError, base, ui, tabGuest)
		}
	}
}

// BookingContactHandler submits the contact step
func (s *Server) BookingContactHandler() http.HandlerFunc {
	return s.bookingStep("Book your tee time", func(r *http.Request, ui *uistate.State) error {
		return ui.Wizard.SubmitContact(booking.ContactInfo{
			FirstName: r.FormValue("first_name"),
			LastName:  r.FormValue("last_name"),
			Email:     r.FormValue("email"),
			Phone:     r.FormValue("phone"),
		})
	})
}

// BookingPaymentHandler submits the payment step and confirms the booking
func (s *Server) BookingPaymentHandler() http.HandlerFunc {
	return s.bookingStep("Book your tee time", func(r *http.Request, ui *uistate.State) error {
		return ui.Wizard.SubmitPayment(r.Context(), booking.PaymentInfo{
			CardNumber: r.FormValue("card_number"),
			Expiry:     r.FormValue("expiry"),
			CVC:        r.FormValue("cvc"),
		})
	})
}

// BookingBackHandler returns from payment to contact details
func (s *Server) BookingBackHandler() http.HandlerFunc {
	return s.bookingStep("Book your tee time", func(_ *http.Request, ui *uistate.State) error {
		return ui.Wizard.Back()
	})
}

// BookingCancelHandler closes the booking modal and discards the draft
func (s *Server) BookingCancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ui, err := s.uiState(r)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		defer ui.Unlock()

		ui.Wizard.Cancel()
		target := RouteIndex
		if intent, ok := ui.Modals.PopTo(modal.KindBooking); ok {
			target = intent.ReturnTo
		}
		ui.Modals.Clear()
		redirectSuccess(w, r, safeReturnPath(target))
	}
}

// BookingAccountHandler books with an account: signed-in users continue with
// their details prefilled, others are sent to sign in first
func (s *Server) BookingAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := s.sessions.Init(r.Context(), sessionID(r))
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

		current, ok := ui.Modals.Find(modal.KindBooking)
		if !ok || !ui.Wizard.IsOpen() {
			redirectWithError(w, r, RouteIndex, msgBookingExpired)
			return
		}

		if state.Authenticated {
			ui.Wizard.Prefill(state.DisplayName, "")
			redirectSuccess(w, r, RouteBooking)
			return
		}

		ui.Modals.Push(modal.Intent{Kind: modal.KindAuth, ReturnTo: RouteBooking, Booking: current.Booking})
		redirectSuccess(w, r, RouteAuth+"?tab="+tabSignIn)
	}
}
