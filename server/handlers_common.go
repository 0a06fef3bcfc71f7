package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-teetime/booking"
	"github.com/jrsteele09/go-teetime/calendar"
	"github.com/jrsteele09/go-teetime/internal/utils"
	"github.com/jrsteele09/go-teetime/server/uistate"
	"github.com/jrsteele09/go-teetime/session"
)

// basePage is the data every page layout needs
type basePage struct {
	AppName string
	Title   string
	Session session.State
	Path    string // current path and query, used as the return target of modals
	Now     time.Time
	Error   string
}

type errorPage struct {
	basePage
	Status int
}

// base resolves the browser session for the page header
func (s *Server) base(r *http.Request, title string) (basePage, error) {
	state, err := s.sessions.Init(r.Context(), sessionID(r))
	if err != nil {
		return basePage{}, err
	}
	return basePage{
		AppName: s.config.GetAppName(),
		Title:   title,
		Session: state,
		Path:    r.URL.RequestURI(),
		Now:     s.clock.Now(),
		Error:   r.URL.Query().Get("error"),
	}, nil
}

// uiState returns the locked UI state of the requesting browser. Callers must Unlock it.
func (s *Server) uiState(r *http.Request) (*uistate.State, error) {
	state, err := s.uiStates.GetOrCreate(sessionID(r), s.newUIState)
	if err != nil {
		return nil, err
	}
	state.Lock()

	// A confirmed booking closes itself once its delay has passed
	state.Wizard.Refresh(s.clock.Now())
	return state, nil
}

func (s *Server) newUIState() *uistate.State {
	now := s.clock.Now()
	today := calendar.StartOfDay(now)
	return &uistate.State{
		Wizard: booking.NewWizard(s.submitter,
			booking.WithClock(s.clock),
			booking.WithConfirmDelay(s.config.GetBookingConfirmDelay()),
		),
		Calendar:  calendar.NewView(today, utils.Ptr(today), utils.Ptr(today), nil),
		CreatedAt: now,
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	page := errorPage{
		basePage: basePage{
			AppName: s.config.GetAppName(),
			Title:   http.StatusText(status),
			Path:    r.URL.RequestURI(),
			Now:     s.clock.Now(),
			Error:   message,
		},
		Status: status,
	}
	s.renderPage(w, status, pageError, page)
}

// internalError logs err and answers with the 500 page
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("internal error")
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}
