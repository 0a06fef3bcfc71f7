package uistate

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-teetime/booking"
	"github.com/jrsteele09/go-teetime/calendar"
	"github.com/jrsteele09/go-teetime/modal"
)

// State is the UI state one browser holds between requests: the open modals,
// the booking wizard and the search form's calendar. Lock it for the duration
// of a request that reads or changes it.
type State struct {
	sync.Mutex

	Wizard   *booking.Wizard
	Modals   modal.Stack
	Calendar *calendar.View

	CreatedAt time.Time
}

type Repo interface {
	// Get returns the state of a browser, if any is held
	Get(sid string) (*State, bool)
	// GetOrCreate returns the state of a browser, creating it when absent
	GetOrCreate(sid string, create func() *State) (*State, error)
	Delete(sid string) error
	Len() int
}
